package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/events"
	"github.com/wordwell/wordwell-api/internal/generation"
	"github.com/wordwell/wordwell-api/internal/store"
)

// MockJobStore is a mock implementation of store.JobStore
type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) Create(ctx context.Context, job *domain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*domain.Job)
	return job, args.Error(1)
}

func (m *MockJobStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, id, userID)
	job, _ := args.Get(0).(*domain.Job)
	return job, args.Error(1)
}

func (m *MockJobStore) MarkInProgress(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJobStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockJobStore) RecordItemResult(ctx context.Context, id uuid.UUID, succeeded bool) error {
	args := m.Called(ctx, id, succeeded)
	return args.Error(0)
}

func (m *MockJobStore) ListFinishable(ctx context.Context) ([]*domain.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]*domain.Job)
	return jobs, args.Error(1)
}

func (m *MockJobStore) Complete(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	completedAt time.Time,
) error {
	args := m.Called(ctx, id, status, completedAt)
	return args.Error(0)
}

func (m *MockJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return m
}

// MockJobItemStore is a mock implementation of store.JobItemStore
type MockJobItemStore struct {
	mock.Mock
}

func (m *MockJobItemStore) CreateBatch(ctx context.Context, items []*domain.JobItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockJobItemStore) ClaimPending(ctx context.Context, limit int) ([]*store.ClaimedItem, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]*store.ClaimedItem)
	return items, args.Error(1)
}

func (m *MockJobItemStore) MarkProcessing(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	args := m.Called(ctx, id, processedAt)
	return args.Error(0)
}

func (m *MockJobItemStore) MarkCompleted(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error {
	args := m.Called(ctx, id, resultID)
	return args.Error(0)
}

func (m *MockJobItemStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockJobItemStore) CountFailed(ctx context.Context, jobID uuid.UUID) (int, error) {
	args := m.Called(ctx, jobID)
	return args.Int(0), args.Error(1)
}

func (m *MockJobItemStore) WithTx(tx *sql.Tx) store.JobItemStore {
	return m
}

// MockDefinitionStore is a mock implementation of store.DefinitionStore
type MockDefinitionStore struct {
	mock.Mock
}

func (m *MockDefinitionStore) Create(ctx context.Context, def *domain.Definition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockDefinitionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Definition, error) {
	args := m.Called(ctx, id)
	def, _ := args.Get(0).(*domain.Definition)
	return def, args.Error(1)
}

func (m *MockDefinitionStore) ExistsForWord(ctx context.Context, word string) (bool, error) {
	args := m.Called(ctx, word)
	return args.Bool(0), args.Error(1)
}

func (m *MockDefinitionStore) WithTx(tx *sql.Tx) store.DefinitionStore {
	return m
}

// MockEventEmitter is a mock implementation of events.EventEmitter
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.JobSubmittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockGenerator is a mock implementation of generation.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateWordAnalysis(
	ctx context.Context,
	word string,
) ([]generation.WordSense, error) {
	args := m.Called(ctx, word)
	senses, _ := args.Get(0).([]generation.WordSense)
	return senses, args.Error(1)
}
