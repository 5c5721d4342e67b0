package domain

// FileType represents the allowed source document types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"docx": FileTypeDOCX,
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FileTypeDOCX,
}

// AnalysisKind selects which GOST standard an analysis checks against.
type AnalysisKind string

const (
	// KindStructure checks document structure per GOST 7.32-2001.
	KindStructure AnalysisKind = "structure"
	// KindBibliography checks citation formatting per GOST R 7.0.5-2008.
	KindBibliography AnalysisKind = "bibliography"
)

// Valid reports whether the kind is one of the known analysis kinds.
func (k AnalysisKind) Valid() bool {
	return k == KindStructure || k == KindBibliography
}

// AnalysisMode is how the model reads the document: extracted text or page images.
type AnalysisMode string

const (
	ModeText  AnalysisMode = "text"
	ModeImage AnalysisMode = "image"
)

// DocumentStatus represents the lifecycle of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// AnalysisStatus represents the lifecycle of a single analysis run.
type AnalysisStatus string

const (
	AnalysisStatusQueued  AnalysisStatus = "queued"
	AnalysisStatusRunning AnalysisStatus = "running"
	AnalysisStatusDone    AnalysisStatus = "done"
	AnalysisStatusPartial AnalysisStatus = "partial"
	AnalysisStatusFailed  AnalysisStatus = "failed"
)

// Verdict is the overall compliance verdict the model returns.
type Verdict string

const (
	VerdictCompliant          Verdict = "compliant"
	VerdictPartiallyCompliant Verdict = "partially_compliant"
	VerdictNonCompliant       Verdict = "non_compliant"
)

// KnownVerdicts lists the verdict values the prompt instructs the model to use.
var KnownVerdicts = map[Verdict]bool{
	VerdictCompliant:          true,
	VerdictPartiallyCompliant: true,
	VerdictNonCompliant:       true,
}

// FindingStatus is the per-rule compliance status within a finding.
type FindingStatus string

const (
	FindingPass FindingStatus = "pass"
	FindingFail FindingStatus = "fail"
)
