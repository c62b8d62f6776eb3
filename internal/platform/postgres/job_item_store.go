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

// PostgresJobItemStore implements the store.JobItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobItemStore creates a new PostgreSQL implementation of the
// JobItemStore interface. If logger is nil, a default logger will be used.
func NewPostgresJobItemStore(db store.DBTX, logger *slog.Logger) *PostgresJobItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_item_store")),
	}
}

// Ensure PostgresJobItemStore implements store.JobItemStore interface
var _ store.JobItemStore = (*PostgresJobItemStore)(nil)

// CreateBatch implements store.JobItemStore.CreateBatch
// Each item is validated before any row is written. Callers that need the
// batch to be atomic should run it inside a transaction via WithTx.
func (s *PostgresJobItemStore) CreateBatch(ctx context.Context, items []*domain.JobItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Warn("job item validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO vocab_job_items (
			id, job_id, word_text, status, processed_at,
			error_message, result_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range items {
		_, err := s.db.ExecContext(
			ctx,
			query,
			item.ID,
			item.JobID,
			item.WordText,
			item.Status,
			item.ProcessedAt,
			nullString(item.ErrorMessage),
			item.ResultID,
			item.CreatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: job with ID %s not found",
					store.ErrInvalidEntity, item.JobID)
			}
			log.Error("failed to create job item",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()),
				slog.String("job_id", item.JobID.String()))
			return MapError(err)
		}
	}

	log.Debug("job items created",
		slog.Int("count", len(items)))
	return nil
}

// ClaimPending implements store.JobItemStore.ClaimPending
// Items are fetched with a plain ordered SELECT, not locked or leased;
// the deployment runs a single worker so a claim race cannot occur.
func (s *PostgresJobItemStore) ClaimPending(ctx context.Context, limit int) ([]*store.ClaimedItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT i.id, i.job_id, i.word_text, i.status, i.processed_at,
		       i.error_message, i.result_id, i.created_at, j.status
		FROM vocab_job_items i
		JOIN vocab_jobs j ON j.id = i.job_id
		WHERE i.status = $1
		ORDER BY i.created_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, domain.JobItemStatusPending, limit)
	if err != nil {
		log.Error("failed to claim pending job items",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var claimed []*store.ClaimedItem
	for rows.Next() {
		var item domain.JobItem
		var itemStatus, jobStatus string
		var processedAt sql.NullTime
		var errorMessage sql.NullString
		var resultID uuid.NullUUID

		if err := rows.Scan(
			&item.ID,
			&item.JobID,
			&item.WordText,
			&itemStatus,
			&processedAt,
			&errorMessage,
			&resultID,
			&item.CreatedAt,
			&jobStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job item row: %w", err)
		}

		item.Status = domain.JobItemStatus(itemStatus)
		item.ErrorMessage = errorMessage.String
		if processedAt.Valid {
			item.ProcessedAt = &processedAt.Time
		}
		if resultID.Valid {
			id := resultID.UUID
			item.ResultID = &id
		}

		claimed = append(claimed, &store.ClaimedItem{
			Item:      item,
			JobStatus: domain.JobStatus(jobStatus),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job item rows: %w", err)
	}

	return claimed, nil
}

// MarkProcessing implements store.JobItemStore.MarkProcessing
func (s *PostgresJobItemStore) MarkProcessing(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	return s.update(ctx, id, `
		UPDATE vocab_job_items
		SET status = $1, processed_at = $2
		WHERE id = $3
	`, domain.JobItemStatusProcessing, processedAt, id)
}

// MarkCompleted implements store.JobItemStore.MarkCompleted
// resultID may be nil when the generator legitimately produced no records.
func (s *PostgresJobItemStore) MarkCompleted(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error {
	return s.update(ctx, id, `
		UPDATE vocab_job_items
		SET status = $1, result_id = $2
		WHERE id = $3
	`, domain.JobItemStatusCompleted, resultID, id)
}

// MarkFailed implements store.JobItemStore.MarkFailed
func (s *PostgresJobItemStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return s.update(ctx, id, `
		UPDATE vocab_job_items
		SET status = $1, error_message = $2
		WHERE id = $3
	`, domain.JobItemStatusFailed, errorMsg, id)
}

func (s *PostgresJobItemStore) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update job item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrJobItemNotFound
	}

	return nil
}

// CountFailed implements store.JobItemStore.CountFailed
func (s *PostgresJobItemStore) CountFailed(ctx context.Context, jobID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM vocab_job_items
		WHERE job_id = $1 AND status = $2
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, jobID, domain.JobItemStatusFailed).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to count failed job items",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.JobItemStore.WithTx
func (s *PostgresJobItemStore) WithTx(tx *sql.Tx) store.JobItemStore {
	return &PostgresJobItemStore{
		db:     tx,
		logger: s.logger,
	}
}
