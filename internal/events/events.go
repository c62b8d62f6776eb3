package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobSubmittedEvent signals that a new vocabulary job and its items have been
// persisted and are ready for processing. It carries just enough information
// for the worker to decide to wake up, without a direct dependency on the
// service package.
type JobSubmittedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// JobID identifies the submitted job
	JobID uuid.UUID `json:"job_id"`

	// WordCount is the number of items the job was created with
	WordCount int `json:"word_count"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewJobSubmittedEvent creates a new JobSubmittedEvent for the given job.
func NewJobSubmittedEvent(jobID uuid.UUID, wordCount int) *JobSubmittedEvent {
	return &JobSubmittedEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		WordCount: wordCount,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobSubmittedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobSubmittedEvent) error
}
