package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrEmptyBatch indicates a submission with no words.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyBatch = errors.New("batch contains no words")

	// ErrBatchTooLarge indicates a submission above the configured word cap.
	// API layer should map this to HTTP 400 Bad Request.
	ErrBatchTooLarge = errors.New("batch exceeds the maximum word count")

	// ErrBlankWord indicates a submitted word that is empty after trimming.
	// API layer should map this to HTTP 400 Bad Request.
	ErrBlankWord = errors.New("batch contains a blank word")

	// ErrJobNotFound indicates that the job does not exist or is not visible
	// to the requesting user. API layer should map this to HTTP 404 Not Found.
	ErrJobNotFound = errors.New("job not found")
)
