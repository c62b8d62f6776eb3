package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobItemStatus represents the processing state of a single word within a job.
type JobItemStatus string

// Possible job item status values
const (
	JobItemStatusPending    JobItemStatus = "pending"
	JobItemStatusProcessing JobItemStatus = "processing"
	JobItemStatusCompleted  JobItemStatus = "completed"
	JobItemStatusFailed     JobItemStatus = "failed"
)

// Common validation errors for JobItem
var (
	ErrEmptyJobItemID       = errors.New("job item ID cannot be empty")
	ErrEmptyJobItemJobID    = errors.New("job item job ID cannot be empty")
	ErrEmptyJobItemWord     = errors.New("job item word cannot be empty")
	ErrInvalidJobItemStatus = errors.New("invalid job item status")
)

// JobItem represents one word within a Job, individually tracked from
// pending through processing to a terminal completed or failed status.
type JobItem struct {
	ID           uuid.UUID     `json:"id"`
	JobID        uuid.UUID     `json:"job_id"`
	WordText     string        `json:"word_text"`
	Status       JobItemStatus `json:"status"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	// ResultID points at the first definition record produced for this word.
	// Additional records for the same word are stored but not tracked here.
	ResultID  *uuid.UUID `json:"result_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewJobItem creates a new JobItem for the given job and word.
// The word is trimmed before validation. Returns an error if validation fails.
func NewJobItem(jobID uuid.UUID, word string) (*JobItem, error) {
	item := &JobItem{
		ID:        uuid.New(),
		JobID:     jobID,
		WordText:  strings.TrimSpace(word),
		Status:    JobItemStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the JobItem has valid data.
// Returns an error if any field fails validation.
func (i *JobItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyJobItemID
	}

	if i.JobID == uuid.Nil {
		return ErrEmptyJobItemJobID
	}

	if strings.TrimSpace(i.WordText) == "" {
		return ErrEmptyJobItemWord
	}

	if !isValidJobItemStatus(i.Status) {
		return ErrInvalidJobItemStatus
	}

	return nil
}

// IsTerminal reports whether the item has reached a final status.
func (i *JobItem) IsTerminal() bool {
	return i.Status == JobItemStatusCompleted || i.Status == JobItemStatusFailed
}

// isValidJobItemStatus checks if the given status is a valid JobItemStatus.
func isValidJobItemStatus(status JobItemStatus) bool {
	switch status {
	case JobItemStatusPending, JobItemStatusProcessing,
		JobItemStatusCompleted, JobItemStatusFailed:
		return true
	default:
		return false
	}
}
