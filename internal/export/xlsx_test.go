package export_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"workwise/internal/domain"
	"workwise/internal/export"
)

func sampleAnalysis(t *testing.T) *domain.Analysis {
	t.Helper()
	findings, err := json.Marshal([]domain.Finding{
		{Rule: "title_page", Status: domain.FindingPass, Detail: "титульный лист оформлен верно"},
		{Rule: "table_of_contents", Status: domain.FindingFail, Detail: "содержание отсутствует", Excerpt: "Глава 1..."},
	})
	require.NoError(t, err)
	recs, err := json.Marshal([]string{"Добавить раздел «Содержание» после титульного листа"})
	require.NoError(t, err)

	return &domain.Analysis{
		ID:              uuid.New(),
		Kind:            domain.KindStructure,
		Mode:            domain.ModeText,
		Status:          domain.AnalysisStatusDone,
		Verdict:         domain.VerdictPartiallyCompliant,
		Findings:        findings,
		Recommendations: recs,
		Model:           "qwen3-vl:4b-instruct",
	}
}

func TestFindingsXLSX(t *testing.T) {
	a := sampleAnalysis(t)

	data, err := export.FindingsXLSX(a)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	verdict, err := f.GetCellValue("Findings", "B4")
	require.NoError(t, err)
	assert.Equal(t, "partially_compliant", verdict)

	rule, err := f.GetCellValue("Findings", "A9")
	require.NoError(t, err)
	assert.Equal(t, "table_of_contents", rule)

	status, err := f.GetCellValue("Findings", "B9")
	require.NoError(t, err)
	assert.Equal(t, "fail", status)
}

func TestFindingsXLSX_NoFindings(t *testing.T) {
	a := sampleAnalysis(t)
	a.Findings = nil
	a.Recommendations = nil

	data, err := export.FindingsXLSX(a)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	header, err := f.GetCellValue("Findings", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Rule", header)
}

func TestFindingsXLSX_CorruptFindings(t *testing.T) {
	a := sampleAnalysis(t)
	a.Findings = json.RawMessage(`{not json`)

	_, err := export.FindingsXLSX(a)
	assert.Error(t, err)
}
