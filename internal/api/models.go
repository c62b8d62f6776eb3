package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT token used for API authorization
	Token string `json:"token"`
}

// SubmitWordsRequest defines the payload for the bulk word submission endpoint.
type SubmitWordsRequest struct {
	Words []string `json:"words" validate:"required,min=1"`
}

// SubmitWordsResponse defines the 202 Accepted response for a bulk submission.
type SubmitWordsResponse struct {
	JobID      uuid.UUID `json:"job_id"`
	Status     string    `json:"status"`
	TotalWords int       `json:"total_words"`
}

// JobResponse represents the response data for a job status lookup.
type JobResponse struct {
	ID             uuid.UUID  `json:"id"`
	Status         string     `json:"status"`
	TotalWords     int        `json:"total_words"`
	ProcessedWords int        `json:"processed_words"`
	SucceededWords int        `json:"succeeded_words"`
	FailedWords    int        `json:"failed_words"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// StreamWordsRequest is the first message a streaming client sends after
// the websocket connection is established.
type StreamWordsRequest struct {
	Words []string `json:"words"`
}
