package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
)

// DefinitionStore defines the interface for word definition persistence.
type DefinitionStore interface {
	// Create saves a new definition record.
	// Returns ErrDefinitionExists if a record with the same
	// (word, part of speech, definition) triple is already stored;
	// the caller decides whether a duplicate is an error or a skip.
	Create(ctx context.Context, def *domain.Definition) error

	// GetByID retrieves a definition by its unique ID.
	// Returns ErrDefinitionNotFound if the definition does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Definition, error)

	// ExistsForWord reports whether any definition is stored for the word.
	// Used by the streaming path as a cheap pre-generation duplicate check.
	ExistsForWord(ctx context.Context, word string) (bool, error)

	// WithTx returns a new DefinitionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DefinitionStore
}
