package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/events"
	"github.com/wordwell/wordwell-api/internal/store"
)

// VocabService provides operations for submitting vocabulary batches and
// inspecting the jobs they create.
type VocabService interface {
	// SubmitBatch validates the given words, creates a pending job with one
	// item per word, and signals the worker. The returned job is in pending
	// status; processing happens asynchronously.
	SubmitBatch(ctx context.Context, userID uuid.UUID, words []string) (*domain.Job, error)

	// GetJobForUser retrieves a job by ID, scoped to the requesting user.
	// Returns ErrJobNotFound if the job does not exist or belongs to someone else.
	GetJobForUser(ctx context.Context, jobID, userID uuid.UUID) (*domain.Job, error)
}

// VocabServiceError wraps errors from the vocab service with context.
type VocabServiceError struct {
	// Operation is the operation that failed (e.g., "submit_batch")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for VocabServiceError.
func (e *VocabServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vocab service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("vocab service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *VocabServiceError) Unwrap() error {
	return e.Err
}

// txRunnerFunc runs a function inside a database transaction.
// Injectable for testing; production code uses store.RunInTransaction.
type txRunnerFunc func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// vocabServiceImpl implements the VocabService interface
type vocabServiceImpl struct {
	db            *sql.DB
	jobStore      store.JobStore
	itemStore     store.JobItemStore
	eventEmitter  events.EventEmitter
	maxBatchWords int
	logger        *slog.Logger
	runInTx       txRunnerFunc
}

// NewVocabService creates a new VocabService.
// It returns an error if any of the required dependencies are nil.
func NewVocabService(
	db *sql.DB,
	jobStore store.JobStore,
	itemStore store.JobItemStore,
	eventEmitter events.EventEmitter,
	maxBatchWords int,
	logger *slog.Logger,
) (VocabService, error) {
	if db == nil {
		return nil, &VocabServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if jobStore == nil {
		return nil, &VocabServiceError{
			Operation: "create_service",
			Message:   "jobStore cannot be nil",
		}
	}
	if itemStore == nil {
		return nil, &VocabServiceError{
			Operation: "create_service",
			Message:   "itemStore cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &VocabServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}
	if maxBatchWords <= 0 {
		return nil, &VocabServiceError{
			Operation: "create_service",
			Message:   "maxBatchWords must be positive",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &vocabServiceImpl{
		db:            db,
		jobStore:      jobStore,
		itemStore:     itemStore,
		eventEmitter:  eventEmitter,
		maxBatchWords: maxBatchWords,
		logger:        logger.With("component", "vocab_service"),
		runInTx:       store.RunInTransaction,
	}, nil
}

// SubmitBatch creates a pending job and its items, then emits a submission
// event so an idle worker picks the items up promptly.
//
// The job row is written first in its own transaction: once the items exist
// they reference it, and a submission that fails midway leaves a failed job
// rather than orphaned items.
func (s *vocabServiceImpl) SubmitBatch(
	ctx context.Context,
	userID uuid.UUID,
	words []string,
) (*domain.Job, error) {
	if err := s.validateBatch(words); err != nil {
		return nil, err
	}

	job, err := domain.NewJob(userID, len(words))
	if err != nil {
		s.logger.Error("failed to create job object",
			"error", err,
			"user_id", userID)
		return nil, &VocabServiceError{
			Operation: "submit_batch",
			Message:   "failed to create job object",
			Err:       err,
		}
	}

	items := make([]*domain.JobItem, 0, len(words))
	for _, word := range words {
		item, err := domain.NewJobItem(job.ID, word)
		if err != nil {
			return nil, &VocabServiceError{
				Operation: "submit_batch",
				Message:   fmt.Sprintf("failed to create item for word %q", word),
				Err:       err,
			}
		}
		items = append(items, item)
	}

	if err := s.jobStore.Create(ctx, job); err != nil {
		s.logger.Error("failed to save job",
			"error", err,
			"user_id", userID,
			"job_id", job.ID)
		return nil, &VocabServiceError{
			Operation: "submit_batch",
			Message:   "failed to save job",
			Err:       err,
		}
	}

	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.itemStore.WithTx(tx).CreateBatch(ctx, items)
	})
	if err != nil {
		s.logger.Error("failed to save job items",
			"error", err,
			"user_id", userID,
			"job_id", job.ID)

		// The job row is already durable; mark it failed so it is never
		// picked up with a partial item set.
		if markErr := s.jobStore.MarkFailed(ctx, job.ID, "failed to persist job items"); markErr != nil {
			s.logger.Error("failed to mark half-submitted job as failed",
				"error", markErr,
				"job_id", job.ID)
		}

		return nil, &VocabServiceError{
			Operation: "submit_batch",
			Message:   "failed to save job items",
			Err:       err,
		}
	}

	s.logger.Info("batch submitted",
		"job_id", job.ID,
		"user_id", userID,
		"word_count", len(words))

	// The submission is durable at this point; a failed wake-up only delays
	// processing until the worker's next poll.
	event := events.NewJobSubmittedEvent(job.ID, len(words))
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit job submitted event",
			"error", err,
			"job_id", job.ID,
			"event_id", event.ID)
	}

	return job, nil
}

// GetJobForUser retrieves a job by ID, scoped to the requesting user.
func (s *vocabServiceImpl) GetJobForUser(
	ctx context.Context,
	jobID, userID uuid.UUID,
) (*domain.Job, error) {
	job, err := s.jobStore.GetForUser(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("failed to retrieve job",
			"error", err,
			"job_id", jobID,
			"user_id", userID)
		return nil, &VocabServiceError{
			Operation: "get_job",
			Message:   "failed to retrieve job",
			Err:       err,
		}
	}

	return job, nil
}

// validateBatch enforces the submission rules: at least one word, no blank
// words, and no more than the configured cap.
func (s *vocabServiceImpl) validateBatch(words []string) error {
	if len(words) == 0 {
		return ErrEmptyBatch
	}
	if len(words) > s.maxBatchWords {
		return fmt.Errorf("%w: %d words, limit is %d",
			ErrBatchTooLarge, len(words), s.maxBatchWords)
	}
	for i, word := range words {
		if strings.TrimSpace(word) == "" {
			return fmt.Errorf("%w: position %d", ErrBlankWord, i)
		}
	}
	return nil
}
