package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/platform/logger"
	"github.com/wordwell/wordwell-api/internal/store"
)

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
// It saves a new job to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO vocab_jobs (
			id, user_id, total_words, processed_words, succeeded_words,
			failed_words, status, error_message, submitted_at, completed_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.UserID,
		job.TotalWords,
		job.ProcessedWords,
		job.SucceededWords,
		job.FailedWords,
		job.Status,
		nullString(job.ErrorMessage),
		job.SubmittedAt,
		job.CompletedAt,
		job.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during job creation",
				slog.String("error", err.Error()),
				slog.String("job_id", job.ID.String()),
				slog.String("user_id", job.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, job.UserID)
		}

		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return MapError(err)
	}

	log.Info("job created successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("user_id", job.UserID.String()),
		slog.Int("total_words", job.TotalWords))
	return nil
}

// GetByID implements store.JobStore.GetByID
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return s.getJob(ctx, jobSelect+` WHERE id = $1`, id)
}

// GetForUser implements store.JobStore.GetForUser
// Returns store.ErrJobNotFound if the job does not exist or belongs to a
// different user; ownership failures are indistinguishable from absence.
func (s *PostgresJobStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error) {
	return s.getJob(ctx, jobSelect+` WHERE id = $1 AND user_id = $2`, id, userID)
}

const jobSelect = `
	SELECT id, user_id, total_words, processed_words, succeeded_words,
	       failed_words, status, error_message, submitted_at, completed_at, updated_at
	FROM vocab_jobs
`

func (s *PostgresJobStore) getJob(ctx context.Context, query string, args ...any) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var job domain.Job
	var status string
	var errorMessage sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&job.ID,
		&job.UserID,
		&job.TotalWords,
		&job.ProcessedWords,
		&job.SucceededWords,
		&job.FailedWords,
		&status,
		&errorMessage,
		&job.SubmittedAt,
		&completedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	job.Status = domain.JobStatus(status)
	job.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

// MarkInProgress implements store.JobStore.MarkInProgress
// The status predicate makes the promotion idempotent: racing callers all
// leave the job in_progress, and terminal jobs are never touched.
func (s *PostgresJobStore) MarkInProgress(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE vocab_jobs
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	_, err := s.db.ExecContext(ctx, query,
		domain.JobStatusInProgress,
		time.Now().UTC(),
		id,
		domain.JobStatusPending,
	)
	if err != nil {
		log.Error("failed to mark job in progress",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return MapError(err)
	}

	return nil
}

// MarkFailed implements store.JobStore.MarkFailed
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE vocab_jobs
		SET status = $1, error_message = $2, completed_at = $3, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusFailed,
		errorMsg,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to mark job failed",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrJobNotFound
	}

	log.Warn("job marked failed",
		slog.String("job_id", id.String()),
		slog.String("error_message", errorMsg))
	return nil
}

// RecordItemResult implements store.JobStore.RecordItemResult
// Counters are incremented in a single UPDATE so concurrent item completions
// never lose updates; the counters are never read-modify-written in
// application code.
func (s *PostgresJobStore) RecordItemResult(ctx context.Context, id uuid.UUID, succeeded bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE vocab_jobs
		SET processed_words = processed_words + 1,
		    succeeded_words = succeeded_words + CASE WHEN $1 THEN 1 ELSE 0 END,
		    failed_words    = failed_words    + CASE WHEN $1 THEN 0 ELSE 1 END,
		    updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, succeeded, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to record item result",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrJobNotFound
	}

	return nil
}

// ListFinishable implements store.JobStore.ListFinishable
func (s *PostgresJobStore) ListFinishable(ctx context.Context) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := jobSelect + `
		WHERE status = $1 AND processed_words >= total_words
		ORDER BY submitted_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, domain.JobStatusInProgress)
	if err != nil {
		log.Error("failed to list finishable jobs",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.Job
	for rows.Next() {
		var job domain.Job
		var status string
		var errorMessage sql.NullString
		var completedAt sql.NullTime

		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.TotalWords,
			&job.ProcessedWords,
			&job.SucceededWords,
			&job.FailedWords,
			&status,
			&errorMessage,
			&job.SubmittedAt,
			&completedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		job.Status = domain.JobStatus(status)
		job.ErrorMessage = errorMessage.String
		if completedAt.Valid {
			job.CompletedAt = &completedAt.Time
		}
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}

// Complete implements store.JobStore.Complete
// The status predicate ensures a terminal job is never re-finalized, so
// counters and completion time are frozen once set.
func (s *PostgresJobStore) Complete(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	completedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if status != domain.JobStatusCompleted && status != domain.JobStatusCompletedWithErrors {
		return fmt.Errorf("%w: %q is not a completion status", domain.ErrInvalidJobStatus, status)
	}

	query := `
		UPDATE vocab_jobs
		SET status = $1, completed_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	_, err := s.db.ExecContext(ctx, query,
		status,
		completedAt,
		id,
		domain.JobStatusInProgress,
	)
	if err != nil {
		log.Error("failed to complete job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return MapError(err)
	}

	log.Info("job finalized",
		slog.String("job_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullString converts an empty string to a NULL-able value for storage.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
