package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
)

// JobStore defines the interface for vocabulary job persistence.
type JobStore interface {
	// Create saves a new job to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// GetForUser retrieves a job by ID, scoped to its owning user.
	// Returns ErrJobNotFound if the job does not exist or belongs to
	// a different user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error)

	// MarkInProgress transitions a pending job to in_progress.
	// The transition is idempotent: a job already in_progress is left
	// unchanged and no error is returned. Terminal jobs are never promoted.
	MarkInProgress(ctx context.Context, id uuid.UUID) error

	// MarkFailed transitions a job to the failed terminal status and records
	// the underlying error message.
	// Returns ErrJobNotFound if the job does not exist.
	MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error

	// RecordItemResult atomically increments the job's processed counter and
	// either the succeeded or failed counter, depending on the outcome.
	// The increment is performed in a single UPDATE so concurrent item
	// completions never lose updates.
	RecordItemResult(ctx context.Context, id uuid.UUID, succeeded bool) error

	// ListFinishable retrieves all in_progress jobs whose processed count has
	// reached their total, i.e. candidates for finalization.
	ListFinishable(ctx context.Context) ([]*domain.Job, error)

	// Complete transitions a job to the given terminal status and sets its
	// completion time. Jobs already in a terminal status are left unchanged.
	Complete(ctx context.Context, id uuid.UUID, status domain.JobStatus, completedAt time.Time) error

	// WithTx returns a new JobStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) JobStore
}
