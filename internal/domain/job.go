package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a vocabulary job.
type JobStatus string

// Possible job status values
const (
	JobStatusPending             JobStatus = "pending"
	JobStatusInProgress          JobStatus = "in_progress"
	JobStatusCompleted           JobStatus = "completed"
	JobStatusCompletedWithErrors JobStatus = "completed_with_errors"
	JobStatusFailed              JobStatus = "failed"
)

// Common validation errors for Job
var (
	ErrEmptyJobID        = errors.New("job ID cannot be empty")
	ErrEmptyJobUserID    = errors.New("job user ID cannot be empty")
	ErrInvalidJobTotal   = errors.New("job total words must be positive")
	ErrInvalidJobStatus  = errors.New("invalid job status")
	ErrInvalidJobCounter = errors.New("job counters cannot exceed total words")
)

// Job represents one accepted batch submission of vocabulary words.
// It tracks aggregate progress across its items; the per-word state
// lives in JobItem.
type Job struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	TotalWords     int        `json:"total_words"`
	ProcessedWords int        `json:"processed_words"`
	SucceededWords int        `json:"succeeded_words"`
	FailedWords    int        `json:"failed_words"`
	Status         JobStatus  `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewJob creates a new Job for the given user with the given word count.
// It generates a new UUID for the job ID, sets the status to pending with
// zeroed counters, and sets the submission/update timestamps.
// Returns an error if validation fails.
func NewJob(userID uuid.UUID, totalWords int) (*Job, error) {
	job := &Job{
		ID:          uuid.New(),
		UserID:      userID,
		TotalWords:  totalWords,
		Status:      JobStatusPending,
		SubmittedAt: time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.UserID == uuid.Nil {
		return ErrEmptyJobUserID
	}

	if j.TotalWords <= 0 {
		return ErrInvalidJobTotal
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if j.ProcessedWords > j.TotalWords {
		return ErrInvalidJobCounter
	}

	if j.SucceededWords+j.FailedWords != j.ProcessedWords {
		return ErrInvalidJobCounter
	}

	return nil
}

// IsTerminal reports whether the job has reached a final status.
// Items of a terminal job must not be processed.
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusCompletedWithErrors, JobStatusFailed:
		return true
	default:
		return false
	}
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted,
		JobStatusCompletedWithErrors, JobStatusFailed:
		return true
	default:
		return false
	}
}
