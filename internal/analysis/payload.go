package analysis

import (
	"workwise/internal/domain"
)

// Required payload fields checked during validation.
const (
	fieldVerdict  = "verdict"
	fieldFindings = "findings"
)

// ParsedPayload is the structured payload recovered from a model response.
// Validate resolves it into a valid or partial payload; unparseable output
// never reaches this type (Normalize fails with MalformedResponseError
// instead).
type ParsedPayload struct {
	Verdict         domain.Verdict   `json:"verdict"`
	Findings        []domain.Finding `json:"findings"`
	Recommendations []string         `json:"recommendations"`

	// Missing lists required fields absent from the model output,
	// populated by Validate.
	Missing []string `json:"-"`
}

// Validate checks the minimum required fields and records which are absent.
// A payload missing fields is degraded, not discarded: the caller downgrades
// the result to a partial verdict instead of failing.
func (p *ParsedPayload) Validate() {
	p.Missing = nil
	if p.Verdict == "" || !domain.KnownVerdicts[p.Verdict] {
		p.Missing = append(p.Missing, fieldVerdict)
	}
	if len(p.Findings) == 0 {
		p.Missing = append(p.Missing, fieldFindings)
	}
}

// IsPartial reports whether validation found required fields missing.
func (p *ParsedPayload) IsPartial() bool {
	return len(p.Missing) > 0
}
