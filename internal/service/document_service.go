package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"workwise/internal/domain"
	"workwise/internal/port"
)

const intakeTimeout = 5 * time.Minute

// UploadDocumentInput is the DTO for uploading a source document.
type UploadDocumentInput struct {
	OwnerID     uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	Data        []byte
}

// DocumentServiceConfig holds document service limits and storage coordinates.
type DocumentServiceConfig struct {
	Bucket        string
	MaxFileSizeMB int64
	WorkDir       string
	// MinTextLen mirrors the analysis threshold: documents whose extracted
	// text falls below it are flagged as scanned at intake.
	MinTextLen int
}

// DocumentService defines the document management contract.
type DocumentService interface {
	Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, ownerID, docID uuid.UUID) error
	PresignDownload(ctx context.Context, ownerID, docID uuid.UUID, expirySecs int64) (string, error)
	// ProcessDocument runs the intake pipeline for an uploaded document:
	// DOCX conversion, text extraction, scanned detection. Exposed for the
	// background goroutine and tests; callers normally go through Upload.
	ProcessDocument(ctx context.Context, doc *domain.Document)
}

type documentService struct {
	docRepo port.DocumentRepository
	storage port.ObjectStorage
	intake  port.DocumentIntake
	cfg     DocumentServiceConfig
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	intake port.DocumentIntake,
	cfg DocumentServiceConfig,
) DocumentService {
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 100
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &documentService{
		docRepo: docRepo,
		storage: storage,
		intake:  intake,
		cfg:     cfg,
	}
}

func (s *documentService) Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024; maxBytes > 0 && input.SizeBytes > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	doc := &domain.Document{
		ID:        uuid.New(),
		OwnerID:   input.OwnerID,
		Name:      input.FileName,
		FileType:  fileType,
		SizeBytes: input.SizeBytes,
		Status:    domain.DocumentStatusUploaded,
	}
	doc.StorageKey = fmt.Sprintf("documents/%s/%s.%s", input.OwnerID, doc.ID, ext)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         doc.StorageKey,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	log.Printf("documentService.Upload: stored document %s (%s, %d bytes)", doc.ID, fileType, input.SizeBytes)

	// Copy before launching the goroutine so the caller's value is
	// independent of background work.
	result := *doc
	go s.intakeInBackground(doc.ID)

	return &result, nil
}

func (s *documentService) intakeInBackground(docID uuid.UUID) {
	// Fresh context: intake must outlive the upload request.
	ctx, cancel := context.WithTimeout(context.Background(), intakeTimeout)
	defer cancel()

	doc, err := s.docRepo.GetForProcessing(ctx, docID)
	if err != nil {
		log.Printf("documentService.intakeInBackground: failed to load document %s: %v", docID, err)
		return
	}
	if err := s.docRepo.UpdateStatus(ctx, docID, domain.DocumentStatusProcessing, ""); err != nil {
		log.Printf("documentService.intakeInBackground: failed to set processing status for %s: %v", docID, err)
		return
	}
	doc.Status = domain.DocumentStatusProcessing
	s.ProcessDocument(ctx, doc)
}

// ProcessDocument downloads the stored source file, converts DOCX to PDF,
// extracts the text layer, and flags scanned documents. On success the
// document moves to ready; intake failures mark it failed with the cause.
func (s *documentService) ProcessDocument(ctx context.Context, doc *domain.Document) {
	pdfPath, cleanup, err := stagePDF(ctx, s.storage, s.intake, s.cfg.Bucket, s.cfg.WorkDir, doc)
	if err != nil {
		s.failIntake(ctx, doc.ID, err)
		return
	}
	defer cleanup()

	text, err := s.intake.ExtractText(ctx, pdfPath)
	if err != nil {
		// No text layer is survivable: the analysis pipeline degrades to
		// image mode. A hard extraction error is not.
		s.failIntake(ctx, doc.ID, fmt.Errorf("extracting text: %w", err))
		return
	}

	doc.Text = text
	doc.Scanned = len([]rune(strings.TrimSpace(text))) < s.cfg.MinTextLen
	doc.Status = domain.DocumentStatusReady
	doc.IntakeError = ""

	if err := s.docRepo.UpdateContent(ctx, doc); err != nil {
		log.Printf("documentService.ProcessDocument: failed to save content for %s: %v", doc.ID, err)
		return
	}
	log.Printf("documentService.ProcessDocument: document %s ready (scanned=%v, text=%d runes)",
		doc.ID, doc.Scanned, len([]rune(text)))
}

func (s *documentService) failIntake(ctx context.Context, docID uuid.UUID, cause error) {
	log.Printf("documentService.ProcessDocument: document %s failed: %v", docID, cause)
	if err := s.docRepo.UpdateStatus(ctx, docID, domain.DocumentStatusFailed, cause.Error()); err != nil {
		log.Printf("documentService.failIntake: failed to update status for %s: %v", docID, err)
	}
}

func (s *documentService) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, ownerID, docID)
}

func (s *documentService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *documentService) Delete(ctx context.Context, ownerID, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, ownerID, docID)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, ownerID, docID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, s.cfg.Bucket, doc.StorageKey); err != nil {
		log.Printf("documentService.Delete: failed to delete object %s: %v", doc.StorageKey, err)
	}
	return nil
}

func (s *documentService) PresignDownload(ctx context.Context, ownerID, docID uuid.UUID, expirySecs int64) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, ownerID, docID)
	if err != nil {
		return "", err
	}
	return s.storage.PresignDownload(ctx, s.cfg.Bucket, doc.StorageKey, expirySecs)
}

// stagePDF downloads a document's source file into a scratch directory and
// returns the path of a PDF version: DOCX sources are converted first. The
// cleanup func removes the scratch directory.
func stagePDF(ctx context.Context, storage port.ObjectStorage, intake port.DocumentIntake, bucket, workDir string, doc *domain.Document) (string, func(), error) {
	data, err := storage.Download(ctx, bucket, doc.StorageKey)
	if err != nil {
		return "", nil, fmt.Errorf("downloading source file: %w", err)
	}

	tmpDir, err := os.MkdirTemp(workDir, "workwise-intake-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	srcPath := filepath.Join(tmpDir, "source."+string(doc.FileType))
	if err := os.WriteFile(srcPath, data, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing source file: %w", err)
	}

	if doc.FileType == domain.FileTypeDOCX {
		pdfPath, err := intake.ConvertToPDF(ctx, srcPath, tmpDir)
		if err != nil {
			cleanup()
			return "", nil, err
		}
		return pdfPath, cleanup, nil
	}
	return srcPath, cleanup, nil
}
