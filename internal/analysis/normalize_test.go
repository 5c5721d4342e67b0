package analysis_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workwise/internal/analysis"
	"workwise/internal/domain"
)

const wellFormed = `{"verdict":"non_compliant","findings":[{"rule":"table_of_contents","status":"fail","detail":"раздел СОДЕРЖАНИЕ отсутствует"}],"recommendations":["добавить содержание"]}`

func TestNormalize_DirectJSON(t *testing.T) {
	payload, err := analysis.Normalize(wellFormed)
	require.NoError(t, err)

	assert.Equal(t, domain.VerdictNonCompliant, payload.Verdict)
	require.Len(t, payload.Findings, 1)
	assert.Equal(t, "table_of_contents", payload.Findings[0].Rule)
	assert.Equal(t, domain.FindingFail, payload.Findings[0].Status)
	assert.Equal(t, []string{"добавить содержание"}, payload.Recommendations)
}

func TestNormalize_StripsWrapping(t *testing.T) {
	// The same payload must be recovered regardless of fencing or prose.
	wrapped := map[string]string{
		"json fence":            "```json\n" + wellFormed + "\n```",
		"bare fence":            "```\n" + wellFormed + "\n```",
		"fence without newline": "```json\n" + wellFormed + "```",
		"leading prose":         "Вот результат анализа:\n\n" + wellFormed,
		"trailing prose":        wellFormed + "\n\nНадеюсь, это поможет!",
		"prose around fence":    "Результат:\n```json\n" + wellFormed + "\n```\nГотово.",
		"leading whitespace":    "\n\n  " + wellFormed + "  \n",
	}

	want, err := analysis.Normalize(wellFormed)
	require.NoError(t, err)

	for name, raw := range wrapped {
		t.Run(name, func(t *testing.T) {
			got, err := analysis.Normalize(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalize_MarkdownFenceExample(t *testing.T) {
	payload, err := analysis.Normalize("```json\n{\"verdict\":\"non_compliant\",\"findings\":[{\"rule\":\"references\",\"status\":\"fail\",\"detail\":\"x\"}]}\n```")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictNonCompliant, payload.Verdict)
	assert.Len(t, payload.Findings, 1)
}

func TestNormalize_TrailingNoiseAfterObject(t *testing.T) {
	payload, err := analysis.Normalize(wellFormed + "}}}]")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictNonCompliant, payload.Verdict)
}

func TestNormalize_Unrecoverable(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"whitespace":     "   \n  ",
		"prose only":     "Не могу проанализировать этот документ.",
		"truncated json": `{"verdict":"compliant","findings":[{"rule":`,
		"fenced garbage": "```json\nне json\n```",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			payload, err := analysis.Normalize(raw)
			assert.Nil(t, payload)

			var malformed *analysis.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, analysis.KindMalformedResponseError, analysis.FailureKind(err))
		})
	}
}

func TestNormalize_NoSemanticCorrection(t *testing.T) {
	// Syntactically valid JSON with wrong content passes through untouched.
	payload, err := analysis.Normalize(`{"verdict":"whatever","findings":[]}`)
	require.NoError(t, err)
	assert.Equal(t, domain.Verdict("whatever"), payload.Verdict)

	payload.Validate()
	assert.True(t, payload.IsPartial())
	assert.Contains(t, payload.Missing, "verdict")
	assert.Contains(t, payload.Missing, "findings")
}

func TestMalformedResponseError_TruncatesRaw(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	_, err := analysis.Normalize(string(long))

	var malformed *analysis.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.LessOrEqual(t, len(err.Error()), 600)
	assert.True(t, errors.Unwrap(malformed) != nil)
}
