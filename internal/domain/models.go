package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GOST represents a formatting standard documents are checked against.
type GOST struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	Code        string       `db:"code" json:"code"`
	Name        string       `db:"name" json:"name"`
	Kind        AnalysisKind `db:"kind" json:"kind"`
	Description string       `db:"description" json:"description"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Document represents an uploaded document and its extracted content.
type Document struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	OwnerID     uuid.UUID      `db:"owner_id" json:"owner_id"`
	Name        string         `db:"name" json:"name"`
	FileType    FileType       `db:"file_type" json:"file_type"`
	StorageKey  string         `db:"storage_key" json:"storage_key"`
	SizeBytes   int64          `db:"size_bytes" json:"size_bytes"`
	Text        string         `db:"text_content" json:"-"`
	PageCount   int            `db:"page_count" json:"page_count"`
	Scanned     bool           `db:"scanned" json:"scanned"`
	Status      DocumentStatus `db:"status" json:"status"`
	IntakeError string         `db:"intake_error" json:"intake_error,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Finding is a single rule-level compliance result.
type Finding struct {
	Rule    string        `json:"rule"`
	Status  FindingStatus `json:"status"`
	Detail  string        `json:"detail"`
	Excerpt string        `json:"excerpt,omitempty"`
}

// Analysis represents one analysis run of a document against a GOST standard.
type Analysis struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DocumentID      uuid.UUID       `db:"document_id" json:"document_id"`
	Kind            AnalysisKind    `db:"kind" json:"kind"`
	Mode            AnalysisMode    `db:"mode" json:"mode"`
	Status          AnalysisStatus  `db:"status" json:"status"`
	Verdict         Verdict         `db:"verdict" json:"verdict,omitempty"`
	Findings        json.RawMessage `db:"findings" json:"findings,omitempty"`
	Recommendations json.RawMessage `db:"recommendations" json:"recommendations,omitempty"`
	MissingFields   json.RawMessage `db:"missing_fields" json:"missing_fields,omitempty"`
	FailureKind     string          `db:"failure_kind" json:"failure_kind,omitempty"`
	FailureCause    string          `db:"failure_cause" json:"failure_cause,omitempty"`
	Model           string          `db:"model" json:"model,omitempty"`
	LatencyMS       int64           `db:"latency_ms" json:"latency_ms"`
	Attempts        int             `db:"attempts" json:"attempts"`
	ForceImages     bool            `db:"force_images" json:"force_images"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// DecodedFindings unmarshals the stored findings JSONB into typed findings.
func (a *Analysis) DecodedFindings() ([]Finding, error) {
	if len(a.Findings) == 0 {
		return nil, nil
	}
	var findings []Finding
	if err := json.Unmarshal(a.Findings, &findings); err != nil {
		return nil, err
	}
	return findings, nil
}
