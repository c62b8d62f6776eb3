package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
)

// ClaimedItem is a pending job item claimed by the worker, joined with its
// parent job's status so the worker can skip items of terminal jobs without
// a second query.
type ClaimedItem struct {
	Item      domain.JobItem
	JobStatus domain.JobStatus
}

// JobItemStore defines the interface for job item persistence.
type JobItemStore interface {
	// CreateBatch saves all given items to the store. Callers that need the
	// batch to be atomic should run it inside a transaction via WithTx.
	CreateBatch(ctx context.Context, items []*domain.JobItem) error

	// ClaimPending fetches up to limit pending items ordered by creation
	// time, joined with their parent job's status. Rows are not locked or
	// leased: the deployment runs a single worker, so a claim race cannot
	// occur in practice.
	ClaimPending(ctx context.Context, limit int) ([]*ClaimedItem, error)

	// MarkProcessing sets the item's status to processing and records the
	// processing timestamp.
	// Returns ErrJobItemNotFound if the item does not exist.
	MarkProcessing(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// MarkCompleted sets the item's status to completed and records the
	// definition record produced for it. resultID may be nil when the
	// generator legitimately produced no records.
	MarkCompleted(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error

	// MarkFailed sets the item's status to failed with the given reason.
	// The reason is expected to be pre-truncated by the caller.
	MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error

	// CountFailed returns the number of failed items belonging to the job.
	CountFailed(ctx context.Context, jobID uuid.UUID) (int, error)

	// WithTx returns a new JobItemStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) JobItemStore
}
