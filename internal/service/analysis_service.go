package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"workwise/internal/analysis"
	"workwise/internal/domain"
	"workwise/internal/port"
)

// inlineRunTimeout bounds analyses run inside the request cycle, matching
// the queue worker's default run timeout.
const inlineRunTimeout = 15 * time.Minute

// DocumentAnalyzer is the orchestration contract the service drives. It is
// satisfied by *analysis.Analyzer.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc analysis.Document, kind domain.AnalysisKind) (*analysis.Result, error)
	AnalyzeWithImages(ctx context.Context, doc analysis.Document, kind domain.AnalysisKind) (*analysis.Result, error)
}

// RequestAnalysisInput is the DTO for requesting an analysis run.
type RequestAnalysisInput struct {
	OwnerID     uuid.UUID
	DocumentID  uuid.UUID
	Kind        domain.AnalysisKind
	ForceImages bool
	// Wait runs the analysis inline instead of leaving it for the queue
	// worker; the returned analysis is already terminal.
	Wait bool
}

// AnalysisServiceConfig holds analysis run settings.
type AnalysisServiceConfig struct {
	Bucket  string
	WorkDir string
	// MinTextLen mirrors the orchestrator threshold so page images are
	// staged whenever the run is likely to need image mode.
	MinTextLen int
}

// AnalysisService defines the analysis lifecycle contract.
type AnalysisService interface {
	Request(ctx context.Context, input *RequestAnalysisInput) (*domain.Analysis, error)
	GetByID(ctx context.Context, ownerID, analysisID uuid.UUID) (*domain.Analysis, error)
	ListByDocument(ctx context.Context, ownerID, docID uuid.UUID) ([]domain.Analysis, error)
	// Run executes one claimed analysis to completion and persists the
	// outcome. It never returns an error; failures are recorded on the
	// analysis row as a failure kind and cause.
	Run(ctx context.Context, a *domain.Analysis)
}

type analysisService struct {
	analysisRepo port.AnalysisRepository
	docRepo      port.DocumentRepository
	storage      port.ObjectStorage
	intake       port.DocumentIntake
	analyzer     DocumentAnalyzer
	cfg          AnalysisServiceConfig
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(
	analysisRepo port.AnalysisRepository,
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	intake port.DocumentIntake,
	analyzer DocumentAnalyzer,
	cfg AnalysisServiceConfig,
) AnalysisService {
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 100
	}
	return &analysisService{
		analysisRepo: analysisRepo,
		docRepo:      docRepo,
		storage:      storage,
		intake:       intake,
		analyzer:     analyzer,
		cfg:          cfg,
	}
}

func (s *analysisService) Request(ctx context.Context, input *RequestAnalysisInput) (*domain.Analysis, error) {
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidAnalysisKind
	}

	doc, err := s.docRepo.GetByID(ctx, input.OwnerID, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusReady {
		return nil, domain.ErrDocumentNotReady
	}

	status := domain.AnalysisStatusQueued
	if input.Wait {
		// Inline runs never enter the queue, so the worker cannot claim them.
		status = domain.AnalysisStatusRunning
	}
	a := &domain.Analysis{
		ID:          uuid.New(),
		DocumentID:  doc.ID,
		Kind:        input.Kind,
		Status:      status,
		ForceImages: input.ForceImages,
	}
	if err := s.analysisRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating analysis: %w", err)
	}

	if input.Wait {
		// The run must not inherit the request context: a client disconnect
		// mid-inference would abort the model call and cancel the terminal
		// Update, stranding the row in running. Detach, like the queue worker.
		runCtx, cancel := context.WithTimeout(context.Background(), inlineRunTimeout)
		defer cancel()
		s.Run(runCtx, a)
		return a, nil
	}

	log.Printf("analysisService.Request: queued %s analysis %s for document %s", a.Kind, a.ID, doc.ID)
	return a, nil
}

func (s *analysisService) GetByID(ctx context.Context, ownerID, analysisID uuid.UUID) (*domain.Analysis, error) {
	a, err := s.analysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	// Ownership runs through the document.
	if _, err := s.docRepo.GetByID(ctx, ownerID, a.DocumentID); err != nil {
		return nil, domain.ErrAnalysisNotFound
	}
	return a, nil
}

func (s *analysisService) ListByDocument(ctx context.Context, ownerID, docID uuid.UUID) ([]domain.Analysis, error) {
	if _, err := s.docRepo.GetByID(ctx, ownerID, docID); err != nil {
		return nil, err
	}
	return s.analysisRepo.ListByDocument(ctx, docID)
}

// Run drives one analysis through the orchestrator and writes the terminal
// state: done, partial, or failed with a failure report.
func (s *analysisService) Run(ctx context.Context, a *domain.Analysis) {
	doc, err := s.docRepo.GetForProcessing(ctx, a.DocumentID)
	if err != nil {
		s.fail(ctx, a, err)
		return
	}

	a.Attempts++

	input := analysis.Document{
		ID:       doc.ID.String(),
		Text:     doc.Text,
		FileType: doc.FileType,
		Scanned:  doc.Scanned,
	}
	if s.needsImages(a, doc) {
		images, err := s.stagePageImages(ctx, doc)
		if err != nil {
			if strings.TrimSpace(doc.Text) == "" || a.ForceImages {
				s.fail(ctx, a, fmt.Errorf("staging page images: %w", err))
				return
			}
			// Text exists, so the run can proceed in text mode.
			log.Printf("analysisService.Run: page image staging failed for %s, falling back to text: %v", doc.ID, err)
		}
		input.Images = images
	}

	var result *analysis.Result
	if a.ForceImages {
		result, err = s.analyzer.AnalyzeWithImages(ctx, input, a.Kind)
	} else {
		result, err = s.analyzer.Analyze(ctx, input, a.Kind)
	}
	if err != nil {
		s.fail(ctx, a, err)
		return
	}

	// Deterministic rule checks run alongside the model whenever there is
	// text to check; their findings lead the model's.
	if pre := analysis.Precheck(doc.Text, a.Kind); len(pre) > 0 {
		result.Findings = append(pre, result.Findings...)
	}

	s.complete(ctx, a, result)
}

// needsImages reports whether the run should stage page images before
// invoking the orchestrator. Mirrors the orchestrator's mode selection so
// rasterization only happens when image mode is plausible.
func (s *analysisService) needsImages(a *domain.Analysis, doc *domain.Document) bool {
	if a.ForceImages || doc.Scanned {
		return true
	}
	return len([]rune(strings.TrimSpace(doc.Text))) < s.cfg.MinTextLen
}

func (s *analysisService) stagePageImages(ctx context.Context, doc *domain.Document) ([]string, error) {
	pdfPath, cleanup, err := stagePDF(ctx, s.storage, s.intake, s.cfg.Bucket, s.cfg.WorkDir, doc)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	images, err := s.intake.ExtractPageImages(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	if doc.PageCount == 0 && len(images) > 0 {
		doc.PageCount = len(images)
		if err := s.docRepo.UpdateContent(ctx, doc); err != nil {
			log.Printf("analysisService.stagePageImages: failed to save page count for %s: %v", doc.ID, err)
		}
	}
	return images, nil
}

func (s *analysisService) complete(ctx context.Context, a *domain.Analysis, result *analysis.Result) {
	now := time.Now().UTC()

	a.Mode = result.Mode
	a.Verdict = result.Verdict
	a.Model = result.Model
	a.LatencyMS = result.Latency.Milliseconds()
	a.CompletedAt = &now
	a.FailureKind = ""
	a.FailureCause = ""

	a.Findings, _ = json.Marshal(result.Findings)
	a.Recommendations, _ = json.Marshal(result.Recommendations)
	if result.Partial {
		a.Status = domain.AnalysisStatusPartial
		a.MissingFields, _ = json.Marshal(result.Missing)
	} else {
		a.Status = domain.AnalysisStatusDone
		a.MissingFields = nil
	}

	if err := s.analysisRepo.Update(ctx, a); err != nil {
		log.Printf("analysisService.Run: failed to save result for %s: %v", a.ID, err)
		return
	}
	log.Printf("analysisService.Run: analysis %s %s (verdict=%s, mode=%s, latency=%dms)",
		a.ID, a.Status, a.Verdict, a.Mode, a.LatencyMS)
}

func (s *analysisService) fail(ctx context.Context, a *domain.Analysis, cause error) {
	report := analysis.NewFailureReport(cause)
	log.Printf("analysisService.Run: analysis %s failed: %s: %s", a.ID, report.Kind, report.Cause)

	now := time.Now().UTC()
	a.Status = domain.AnalysisStatusFailed
	a.FailureKind = report.Kind
	a.FailureCause = report.Cause
	a.CompletedAt = &now

	if err := s.analysisRepo.Update(ctx, a); err != nil {
		log.Printf("analysisService.fail: failed to update analysis %s: %v", a.ID, err)
	}
}
