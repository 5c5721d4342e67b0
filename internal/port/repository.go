package port

import (
	"context"

	"github.com/google/uuid"

	"workwise/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	// GetForProcessing loads a document without owner scoping, for the
	// intake pipeline and the analysis queue worker.
	GetForProcessing(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	UpdateContent(ctx context.Context, doc *domain.Document) error
	UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.DocumentStatus, intakeErr string) error
	Delete(ctx context.Context, ownerID, docID uuid.UUID) error
}

// AnalysisRepository defines the contract for analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, a *domain.Analysis) error
	GetByID(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Analysis, error)
	// ClaimQueued atomically marks up to limit queued analyses as running
	// and returns them, so concurrent workers never claim the same row.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Analysis, error)
	Update(ctx context.Context, a *domain.Analysis) error
}

// GOSTRepository defines the contract for GOST standard persistence.
type GOSTRepository interface {
	List(ctx context.Context) ([]domain.GOST, error)
	GetByKind(ctx context.Context, kind domain.AnalysisKind) (*domain.GOST, error)
}
