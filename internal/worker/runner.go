package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/generation"
	"github.com/wordwell/wordwell-api/internal/store"
)

// skippedItemReason is recorded on items whose parent job reached a terminal
// status before the item was processed.
const skippedItemReason = "parent job is no longer processable"

// Config holds the policy knobs for the worker loop.
type Config struct {
	// ClaimBatchSize is the number of pending items fetched per tick.
	ClaimBatchSize int

	// ItemDelay is the pause between two items within one tick.
	ItemDelay time.Duration

	// IdleDelay is the pause between two ticks. It applies whether or not
	// the previous tick found work, bounding the polling frequency.
	IdleDelay time.Duration

	// ErrorMessageLimit truncates stored per-item failure reasons.
	ErrorMessageLimit int
}

// DefaultConfig returns a Config with the service's standard pacing.
func DefaultConfig() Config {
	return Config{
		ClaimBatchSize:    5,
		ItemDelay:         2 * time.Second,
		IdleDelay:         10 * time.Second,
		ErrorMessageLimit: 500,
	}
}

// Runner drives background processing of vocabulary job items.
type Runner struct {
	jobStore  store.JobStore
	itemStore store.JobItemStore
	defStore  store.DefinitionStore
	generator generation.Generator

	config Config
	logger *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	// wake is poked when a new job is submitted so an idle loop does not
	// wait out its full IdleDelay.
	wake chan struct{}
}

// NewRunner creates a new Runner. If logger is nil, a default logger is used.
func NewRunner(
	jobStore store.JobStore,
	itemStore store.JobItemStore,
	defStore store.DefinitionStore,
	generator generation.Generator,
	config Config,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	if config.ClaimBatchSize <= 0 {
		config.ClaimBatchSize = DefaultConfig().ClaimBatchSize
	}
	if config.ItemDelay <= 0 {
		config.ItemDelay = DefaultConfig().ItemDelay
	}
	if config.IdleDelay <= 0 {
		config.IdleDelay = DefaultConfig().IdleDelay
	}
	if config.ErrorMessageLimit <= 0 {
		config.ErrorMessageLimit = DefaultConfig().ErrorMessageLimit
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		jobStore:   jobStore,
		itemStore:  itemStore,
		defStore:   defStore,
		generator:  generator,
		config:     config,
		logger:     logger.With(slog.String("component", "worker")),
		ctx:        ctx,
		cancelFunc: cancel,
		wake:       make(chan struct{}, 1),
	}
}

// Start launches the worker loop in a background goroutine.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.loop()
	r.logger.Info("worker started",
		slog.Int("claim_batch_size", r.config.ClaimBatchSize),
		slog.Duration("item_delay", r.config.ItemDelay),
		slog.Duration("idle_delay", r.config.IdleDelay))
}

// Stop gracefully shuts down the worker. The item being processed when Stop
// is called is finished and persisted before the loop exits; remaining
// pending items are picked up on the next start.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("worker stopped")
}

// Poke wakes an idle worker loop. It never blocks; a wake-up that is
// already pending is enough.
func (r *Runner) Poke() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()

	for {
		r.tick(r.ctx)
		r.finalizeJobs(r.ctx)

		if r.ctx.Err() != nil {
			return
		}

		// The next tick is scheduled a full idle delay out even when this
		// one found work. Together with the per-item pause this bounds the
		// call rate against the generator quota; a fresh submission can
		// still cut the wait short through wake.
		timer := time.NewTimer(r.config.IdleDelay)
		select {
		case <-r.ctx.Done():
			timer.Stop()
			return
		case <-r.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// tick claims a batch of pending items and processes them sequentially,
// pausing between items. It returns the number of items claimed.
func (r *Runner) tick(ctx context.Context) int {
	claimed, err := r.itemStore.ClaimPending(ctx, r.config.ClaimBatchSize)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("failed to claim pending items",
				slog.String("error", err.Error()))
		}
		return 0
	}

	for i, c := range claimed {
		if i > 0 {
			timer := time.NewTimer(r.config.ItemDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return len(claimed)
			case <-timer.C:
			}
		}

		r.processItem(ctx, c)

		if ctx.Err() != nil {
			return len(claimed)
		}
	}

	return len(claimed)
}

// processItem drives one claimed item to a terminal status. Store and
// generator calls use a detached context so an item that is mid-flight
// when Stop is called still lands in a consistent state.
func (r *Runner) processItem(ctx context.Context, c *store.ClaimedItem) {
	opCtx := context.WithoutCancel(ctx)
	item := c.Item
	log := r.logger.With(
		slog.String("item_id", item.ID.String()),
		slog.String("job_id", item.JobID.String()),
		slog.String("word", item.WordText))

	// Items of a terminal job are skipped, not processed. Their parent's
	// counters are frozen, so the failure is recorded on the item only.
	if isTerminalJobStatus(c.JobStatus) {
		if err := r.itemStore.MarkFailed(opCtx, item.ID, skippedItemReason); err != nil {
			log.Error("failed to mark skipped item",
				slog.String("error", err.Error()))
		}
		log.Warn("skipped item of terminal job",
			slog.String("job_status", string(c.JobStatus)))
		return
	}

	if c.JobStatus == domain.JobStatusPending {
		if err := r.jobStore.MarkInProgress(opCtx, item.JobID); err != nil {
			log.Error("failed to promote job to in_progress",
				slog.String("error", err.Error()))
			return
		}
	}

	if err := r.itemStore.MarkProcessing(opCtx, item.ID, time.Now().UTC()); err != nil {
		log.Error("failed to mark item processing",
			slog.String("error", err.Error()))
		return
	}

	senses, err := r.generator.GenerateWordAnalysis(opCtx, item.WordText)
	if err != nil {
		r.failItem(opCtx, item, err)
		return
	}

	resultID, err := r.persistSenses(opCtx, item.WordText, senses)
	if err != nil {
		r.failItem(opCtx, item, err)
		return
	}

	if err := r.itemStore.MarkCompleted(opCtx, item.ID, resultID); err != nil {
		log.Error("failed to mark item completed",
			slog.String("error", err.Error()))
		return
	}
	if err := r.jobStore.RecordItemResult(opCtx, item.JobID, true); err != nil {
		log.Error("failed to record item success on job",
			slog.String("error", err.Error()))
	}

	log.Info("item processed",
		slog.Int("sense_count", len(senses)))
}

// persistSenses stores one definition record per generated sense and returns
// the ID of the first newly stored record. Records whose triple already
// exists are skipped; a word whose senses are all duplicates, or that
// legitimately has none, completes with a nil result.
func (r *Runner) persistSenses(
	ctx context.Context,
	word string,
	senses []generation.WordSense,
) (*uuid.UUID, error) {
	var firstID *uuid.UUID

	for _, sense := range senses {
		def, err := domain.NewDefinition(
			word,
			sense.PartOfSpeech,
			sense.Difficulty,
			sense.Definition,
			sense.ExampleSentence,
			sense.QuizOptions,
			sense.CorrectOption,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid generated sense: %w", err)
		}

		if err := r.defStore.Create(ctx, def); err != nil {
			if errors.Is(err, store.ErrDefinitionExists) {
				continue
			}
			return nil, fmt.Errorf("failed to store definition: %w", err)
		}

		if firstID == nil {
			id := def.ID
			firstID = &id
		}
	}

	return firstID, nil
}

// failItem records a generation failure on the item and its parent job.
func (r *Runner) failItem(ctx context.Context, item domain.JobItem, cause error) {
	log := r.logger.With(
		slog.String("item_id", item.ID.String()),
		slog.String("job_id", item.JobID.String()),
		slog.String("word", item.WordText))

	msg := truncate(cause.Error(), r.config.ErrorMessageLimit)

	if err := r.itemStore.MarkFailed(ctx, item.ID, msg); err != nil {
		log.Error("failed to mark item failed",
			slog.String("error", err.Error()))
		return
	}
	if err := r.jobStore.RecordItemResult(ctx, item.JobID, false); err != nil {
		log.Error("failed to record item failure on job",
			slog.String("error", err.Error()))
	}

	log.Warn("item failed",
		slog.String("error", cause.Error()))
}

// finalizeJobs sweeps in_progress jobs whose items have all been processed
// and moves each to its terminal status.
func (r *Runner) finalizeJobs(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	jobs, err := r.jobStore.ListFinishable(ctx)
	if err != nil {
		r.logger.Error("failed to list finishable jobs",
			slog.String("error", err.Error()))
		return
	}

	for _, job := range jobs {
		failed, err := r.itemStore.CountFailed(ctx, job.ID)
		if err != nil {
			r.logger.Error("failed to count failed items",
				slog.String("error", err.Error()),
				slog.String("job_id", job.ID.String()))
			continue
		}

		status := domain.JobStatusCompleted
		if failed > 0 {
			status = domain.JobStatusCompletedWithErrors
		}

		if err := r.jobStore.Complete(ctx, job.ID, status, time.Now().UTC()); err != nil {
			r.logger.Error("failed to finalize job",
				slog.String("error", err.Error()),
				slog.String("job_id", job.ID.String()))
			continue
		}

		r.logger.Info("job finalized",
			slog.String("job_id", job.ID.String()),
			slog.String("status", string(status)),
			slog.Int("failed_items", failed))
	}
}

func isTerminalJobStatus(status domain.JobStatus) bool {
	switch status {
	case domain.JobStatusCompleted, domain.JobStatusCompletedWithErrors, domain.JobStatusFailed:
		return true
	default:
		return false
	}
}

// truncate shortens msg to at most limit bytes, marking the cut.
func truncate(msg string, limit int) string {
	if limit <= 0 || len(msg) <= limit {
		return msg
	}
	if limit <= 3 {
		return msg[:limit]
	}
	return msg[:limit-3] + "..."
}
