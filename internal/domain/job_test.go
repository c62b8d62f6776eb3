package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	job, err := NewJob(userID, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if job.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if job.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, job.UserID)
	}

	if job.TotalWords != 3 {
		t.Errorf("Expected total words 3, got %d", job.TotalWords)
	}

	if job.Status != JobStatusPending {
		t.Errorf("Expected status %s, got %s", JobStatusPending, job.Status)
	}

	if job.ProcessedWords != 0 || job.SucceededWords != 0 || job.FailedWords != 0 {
		t.Error("Expected zeroed counters on a new job")
	}

	if job.SubmittedAt.IsZero() {
		t.Error("Expected non-zero SubmittedAt time")
	}

	// Test invalid userID
	if _, err := NewJob(uuid.Nil, 3); err != ErrEmptyJobUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyJobUserID, err)
	}

	// Test invalid total
	if _, err := NewJob(userID, 0); err != ErrInvalidJobTotal {
		t.Errorf("Expected error %v, got %v", ErrInvalidJobTotal, err)
	}
}

func TestJobValidateCounters(t *testing.T) {
	t.Parallel()
	job := Job{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		TotalWords: 2,
		Status:     JobStatusInProgress,
	}

	if err := job.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// processed must equal succeeded + failed
	job.ProcessedWords = 2
	job.SucceededWords = 1
	if err := job.Validate(); err != ErrInvalidJobCounter {
		t.Errorf("Expected error %v, got %v", ErrInvalidJobCounter, err)
	}

	job.FailedWords = 1
	if err := job.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// processed must not exceed total
	job.ProcessedWords = 3
	job.SucceededWords = 2
	if err := job.Validate(); err != ErrInvalidJobCounter {
		t.Errorf("Expected error %v, got %v", ErrInvalidJobCounter, err)
	}
}

func TestJobIsTerminal(t *testing.T) {
	t.Parallel()
	cases := map[JobStatus]bool{
		JobStatusPending:             false,
		JobStatusInProgress:          false,
		JobStatusCompleted:           true,
		JobStatusCompletedWithErrors: true,
		JobStatusFailed:              true,
	}

	for status, want := range cases {
		job := Job{Status: status}
		if got := job.IsTerminal(); got != want {
			t.Errorf("IsTerminal() for %s = %v, want %v", status, got, want)
		}
	}
}

func TestNewJobItem(t *testing.T) {
	t.Parallel()
	jobID := uuid.New()

	item, err := NewJobItem(jobID, "  lucid  ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if item.WordText != "lucid" {
		t.Errorf("Expected trimmed word %q, got %q", "lucid", item.WordText)
	}

	if item.Status != JobItemStatusPending {
		t.Errorf("Expected status %s, got %s", JobItemStatusPending, item.Status)
	}

	if item.JobID != jobID {
		t.Errorf("Expected job ID %s, got %s", jobID, item.JobID)
	}

	// Test blank word
	if _, err := NewJobItem(jobID, "   "); err != ErrEmptyJobItemWord {
		t.Errorf("Expected error %v, got %v", ErrEmptyJobItemWord, err)
	}

	// Test missing job ID
	if _, err := NewJobItem(uuid.Nil, "lucid"); err != ErrEmptyJobItemJobID {
		t.Errorf("Expected error %v, got %v", ErrEmptyJobItemJobID, err)
	}
}

func TestJobItemIsTerminal(t *testing.T) {
	t.Parallel()
	cases := map[JobItemStatus]bool{
		JobItemStatusPending:    false,
		JobItemStatusProcessing: false,
		JobItemStatusCompleted:  true,
		JobItemStatusFailed:     true,
	}

	for status, want := range cases {
		item := JobItem{Status: status}
		if got := item.IsTerminal(); got != want {
			t.Errorf("IsTerminal() for %s = %v, want %v", status, got, want)
		}
	}
}
