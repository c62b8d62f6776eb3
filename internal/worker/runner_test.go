package worker

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/generation"
	"github.com/wordwell/wordwell-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeJobStore is an in-memory store.JobStore for worker tests.
type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job

	completeErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*domain.Job)}
}

func (f *fakeJobStore) Create(ctx context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return job, nil
}

func (f *fakeJobStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error) {
	job, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, store.ErrJobNotFound
	}
	return job, nil
}

func (f *fakeJobStore) MarkInProgress(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	if job.Status == domain.JobStatusPending {
		job.Status = domain.JobStatusInProgress
	}
	return nil
}

func (f *fakeJobStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errorMsg
	return nil
}

func (f *fakeJobStore) RecordItemResult(ctx context.Context, id uuid.UUID, succeeded bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	job.ProcessedWords++
	if succeeded {
		job.SucceededWords++
	} else {
		job.FailedWords++
	}
	return nil
}

func (f *fakeJobStore) ListFinishable(ctx context.Context) ([]*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Job
	for _, job := range f.jobs {
		if job.Status == domain.JobStatusInProgress && job.ProcessedWords >= job.TotalWords {
			out = append(out, job)
		}
	}
	return out, nil
}

func (f *fakeJobStore) Complete(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	completedAt time.Time,
) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	if job.Status != domain.JobStatusInProgress {
		return nil
	}
	job.Status = status
	job.CompletedAt = &completedAt
	return nil
}

func (f *fakeJobStore) WithTx(tx *sql.Tx) store.JobStore { return f }

// fakeJobItemStore is an in-memory store.JobItemStore for worker tests.
type fakeJobItemStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.JobItem
	jobs  *fakeJobStore
}

func newFakeJobItemStore(jobs *fakeJobStore) *fakeJobItemStore {
	return &fakeJobItemStore{
		items: make(map[uuid.UUID]*domain.JobItem),
		jobs:  jobs,
	}
}

func (f *fakeJobItemStore) CreateBatch(ctx context.Context, items []*domain.JobItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.items[item.ID] = item
	}
	return nil
}

func (f *fakeJobItemStore) ClaimPending(ctx context.Context, limit int) ([]*store.ClaimedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.ClaimedItem
	for _, item := range f.items {
		if item.Status != domain.JobItemStatusPending {
			continue
		}
		job, ok := f.jobs.jobs[item.JobID]
		if !ok {
			continue
		}
		out = append(out, &store.ClaimedItem{Item: *item, JobStatus: job.Status})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeJobItemStore) MarkProcessing(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return store.ErrJobItemNotFound
	}
	item.Status = domain.JobItemStatusProcessing
	item.ProcessedAt = &processedAt
	return nil
}

func (f *fakeJobItemStore) MarkCompleted(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return store.ErrJobItemNotFound
	}
	item.Status = domain.JobItemStatusCompleted
	item.ResultID = resultID
	return nil
}

func (f *fakeJobItemStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return store.ErrJobItemNotFound
	}
	item.Status = domain.JobItemStatusFailed
	item.ErrorMessage = errorMsg
	return nil
}

func (f *fakeJobItemStore) CountFailed(ctx context.Context, jobID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, item := range f.items {
		if item.JobID == jobID && item.Status == domain.JobItemStatusFailed {
			count++
		}
	}
	return count, nil
}

func (f *fakeJobItemStore) WithTx(tx *sql.Tx) store.JobItemStore { return f }

// fakeDefinitionStore is an in-memory store.DefinitionStore for worker tests.
type fakeDefinitionStore struct {
	mu        sync.Mutex
	defs      map[uuid.UUID]*domain.Definition
	createErr error
}

func newFakeDefinitionStore() *fakeDefinitionStore {
	return &fakeDefinitionStore{defs: make(map[uuid.UUID]*domain.Definition)}
}

func (f *fakeDefinitionStore) Create(ctx context.Context, def *domain.Definition) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.defs {
		if existing.Word == def.Word &&
			existing.PartOfSpeech == def.PartOfSpeech &&
			existing.DefinitionText == def.DefinitionText {
			return store.ErrDefinitionExists
		}
	}
	f.defs[def.ID] = def
	return nil
}

func (f *fakeDefinitionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[id]
	if !ok {
		return nil, store.ErrDefinitionNotFound
	}
	return def, nil
}

func (f *fakeDefinitionStore) ExistsForWord(ctx context.Context, word string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, def := range f.defs {
		if def.Word == word {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDefinitionStore) WithTx(tx *sql.Tx) store.DefinitionStore { return f }

// fakeGenerator returns canned senses per word and records when each call
// arrived.
type fakeGenerator struct {
	mu        sync.Mutex
	senses    map[string][]generation.WordSense
	err       error
	calls     []string
	callTimes []time.Time
}

func (f *fakeGenerator) GenerateWordAnalysis(ctx context.Context, word string) ([]generation.WordSense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, word)
	f.callTimes = append(f.callTimes, time.Now())
	if f.err != nil {
		return nil, f.err
	}
	return f.senses[word], nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGenerator) recordedTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.callTimes))
	copy(out, f.callTimes)
	return out
}

type fixture struct {
	jobs   *fakeJobStore
	items  *fakeJobItemStore
	defs   *fakeDefinitionStore
	gen    *fakeGenerator
	runner *Runner
}

func newFixture(t *testing.T, gen *fakeGenerator) *fixture {
	t.Helper()
	jobs := newFakeJobStore()
	items := newFakeJobItemStore(jobs)
	defs := newFakeDefinitionStore()
	runner := NewRunner(jobs, items, defs, gen, Config{
		ClaimBatchSize:    5,
		ItemDelay:         time.Millisecond,
		IdleDelay:         10 * time.Millisecond,
		ErrorMessageLimit: 500,
	}, testLogger())
	return &fixture{jobs: jobs, items: items, defs: defs, gen: gen, runner: runner}
}

func submitJob(t *testing.T, fx *fixture, words ...string) (*domain.Job, []*domain.JobItem) {
	t.Helper()
	job, err := domain.NewJob(uuid.New(), len(words))
	require.NoError(t, err)
	require.NoError(t, fx.jobs.Create(context.Background(), job))

	var items []*domain.JobItem
	for _, word := range words {
		item, err := domain.NewJobItem(job.ID, word)
		require.NoError(t, err)
		items = append(items, item)
	}
	require.NoError(t, fx.items.CreateBatch(context.Background(), items))
	return job, items
}

func TestProcessItemSuccess(t *testing.T) {
	gen := &fakeGenerator{senses: map[string][]generation.WordSense{
		"lucid": {
			{PartOfSpeech: "adjective", Definition: "expressed clearly"},
			{PartOfSpeech: "adjective", Definition: "thinking clearly"},
		},
	}}
	fx := newFixture(t, gen)
	job, items := submitJob(t, fx, "lucid")

	processed := fx.runner.tick(context.Background())
	assert.Equal(t, 1, processed)

	item := fx.items.items[items[0].ID]
	assert.Equal(t, domain.JobItemStatusCompleted, item.Status)
	require.NotNil(t, item.ResultID)

	// Both senses stored, result points at the first one.
	assert.Len(t, fx.defs.defs, 2)
	stored, err := fx.defs.GetByID(context.Background(), *item.ResultID)
	require.NoError(t, err)
	assert.Equal(t, "lucid", stored.Word)

	updated := fx.jobs.jobs[job.ID]
	assert.Equal(t, domain.JobStatusInProgress, updated.Status)
	assert.Equal(t, 1, updated.ProcessedWords)
	assert.Equal(t, 1, updated.SucceededWords)
	assert.Equal(t, 0, updated.FailedWords)
}

func TestProcessItemEmptyResultCompletes(t *testing.T) {
	gen := &fakeGenerator{senses: map[string][]generation.WordSense{}}
	fx := newFixture(t, gen)
	job, items := submitJob(t, fx, "zzzzzz")

	fx.runner.tick(context.Background())

	item := fx.items.items[items[0].ID]
	assert.Equal(t, domain.JobItemStatusCompleted, item.Status)
	assert.Nil(t, item.ResultID)
	assert.Empty(t, fx.defs.defs)
	assert.Equal(t, 1, fx.jobs.jobs[job.ID].SucceededWords)
}

func TestProcessItemGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	fx := newFixture(t, gen)
	job, items := submitJob(t, fx, "lucid")

	fx.runner.tick(context.Background())

	item := fx.items.items[items[0].ID]
	assert.Equal(t, domain.JobItemStatusFailed, item.Status)
	assert.Contains(t, item.ErrorMessage, "model unavailable")

	updated := fx.jobs.jobs[job.ID]
	assert.Equal(t, 1, updated.ProcessedWords)
	assert.Equal(t, 1, updated.FailedWords)
}

func TestProcessItemErrorMessageTruncated(t *testing.T) {
	long := strings.Repeat("x", 2000)
	gen := &fakeGenerator{err: errors.New(long)}
	fx := newFixture(t, gen)
	_, items := submitJob(t, fx, "lucid")

	fx.runner.tick(context.Background())

	item := fx.items.items[items[0].ID]
	assert.Len(t, item.ErrorMessage, 500)
	assert.True(t, strings.HasSuffix(item.ErrorMessage, "..."))
}

func TestProcessItemSkipsTerminalJob(t *testing.T) {
	gen := &fakeGenerator{}
	fx := newFixture(t, gen)
	job, items := submitJob(t, fx, "lucid")
	require.NoError(t, fx.jobs.MarkFailed(context.Background(), job.ID, "submission rolled back"))

	fx.runner.tick(context.Background())

	item := fx.items.items[items[0].ID]
	assert.Equal(t, domain.JobItemStatusFailed, item.Status)
	assert.Equal(t, skippedItemReason, item.ErrorMessage)

	// The generator is never consulted and the terminal job's counters
	// stay frozen.
	assert.Empty(t, gen.calls)
	assert.Equal(t, 0, fx.jobs.jobs[job.ID].ProcessedWords)
}

func TestPersistSensesSkipsDuplicates(t *testing.T) {
	gen := &fakeGenerator{}
	fx := newFixture(t, gen)

	existing, err := domain.NewDefinition(
		"lucid", "adjective", "intermediate", "expressed clearly", "", nil, 0)
	require.NoError(t, err)
	require.NoError(t, fx.defs.Create(context.Background(), existing))

	resultID, err := fx.runner.persistSenses(context.Background(), "lucid", []generation.WordSense{
		{PartOfSpeech: "adjective", Definition: "expressed clearly"},
	})
	require.NoError(t, err)
	assert.Nil(t, resultID)
	assert.Len(t, fx.defs.defs, 1)
}

func TestFinalizeJobs(t *testing.T) {
	gen := &fakeGenerator{senses: map[string][]generation.WordSense{
		"alpha": {{PartOfSpeech: "noun", Definition: "the first letter"}},
	}}
	gen.err = nil
	fx := newFixture(t, gen)

	t.Run("all items succeeded", func(t *testing.T) {
		job, _ := submitJob(t, fx, "alpha")
		fx.runner.tick(context.Background())
		fx.runner.finalizeJobs(context.Background())

		finalized := fx.jobs.jobs[job.ID]
		assert.Equal(t, domain.JobStatusCompleted, finalized.Status)
		require.NotNil(t, finalized.CompletedAt)
	})

	t.Run("some items failed", func(t *testing.T) {
		job, _ := submitJob(t, fx, "beta")
		gen.err = errors.New("model unavailable")
		fx.runner.tick(context.Background())
		gen.err = nil
		fx.runner.finalizeJobs(context.Background())

		finalized := fx.jobs.jobs[job.ID]
		assert.Equal(t, domain.JobStatusCompletedWithErrors, finalized.Status)
	})

	t.Run("unfinished jobs are left alone", func(t *testing.T) {
		job, _ := submitJob(t, fx, "gamma", "delta")
		require.NoError(t, fx.jobs.MarkInProgress(context.Background(), job.ID))
		require.NoError(t, fx.jobs.RecordItemResult(context.Background(), job.ID, true))
		fx.runner.finalizeJobs(context.Background())

		assert.Equal(t, domain.JobStatusInProgress, fx.jobs.jobs[job.ID].Status)
	})
}

func TestEmptyTickMakesNoGeneratorCalls(t *testing.T) {
	gen := &fakeGenerator{}
	fx := newFixture(t, gen)

	processed := fx.runner.tick(context.Background())

	assert.Zero(t, processed)
	assert.Empty(t, gen.calls)
}

func TestNewRunnerDefaultsZeroConfig(t *testing.T) {
	gen := &fakeGenerator{}
	runner := NewRunner(newFakeJobStore(), newFakeJobItemStore(newFakeJobStore()),
		newFakeDefinitionStore(), gen, Config{}, testLogger())

	assert.Equal(t, DefaultConfig(), runner.config)
}

func TestGeneratorCallsPacedAcrossTicks(t *testing.T) {
	gen := &fakeGenerator{senses: map[string][]generation.WordSense{}}
	fx := newFixture(t, gen)

	itemDelay := 40 * time.Millisecond
	fx.runner.config.ItemDelay = itemDelay
	fx.runner.config.IdleDelay = 60 * time.Millisecond
	fx.runner.config.ClaimBatchSize = 2

	submitJob(t, fx, "alpha", "beta", "gamma", "delta")

	fx.runner.Start()
	require.Eventually(t, func() bool {
		return gen.callCount() == 4
	}, 2*time.Second, 5*time.Millisecond)
	fx.runner.Stop()

	// Every consecutive pair of calls is separated by at least the item
	// delay, including the pair straddling the tick boundary.
	times := gen.recordedTimes()
	require.Len(t, times, 4)
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		assert.GreaterOrEqual(t, gap, itemDelay,
			"gap between call %d and %d", i-1, i)
	}
}

func TestRunnerStartStop(t *testing.T) {
	gen := &fakeGenerator{senses: map[string][]generation.WordSense{
		"lucid": {{PartOfSpeech: "adjective", Definition: "expressed clearly"}},
	}}
	fx := newFixture(t, gen)
	job, _ := submitJob(t, fx, "lucid")

	fx.runner.Start()
	fx.runner.Poke()

	require.Eventually(t, func() bool {
		fx.jobs.mu.Lock()
		defer fx.jobs.mu.Unlock()
		return fx.jobs.jobs[job.ID].Status == domain.JobStatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	fx.runner.Stop()
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 500))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "unbounded", truncate("unbounded", 0))
}
