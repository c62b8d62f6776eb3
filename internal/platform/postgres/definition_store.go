package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/platform/logger"
	"github.com/wordwell/wordwell-api/internal/store"
)

// PostgresDefinitionStore implements the store.DefinitionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDefinitionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDefinitionStore creates a new PostgreSQL implementation of the
// DefinitionStore interface. If logger is nil, a default logger will be used.
func NewPostgresDefinitionStore(db store.DBTX, logger *slog.Logger) *PostgresDefinitionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDefinitionStore{
		db:     db,
		logger: logger.With(slog.String("component", "definition_store")),
	}
}

// Ensure PostgresDefinitionStore implements store.DefinitionStore interface
var _ store.DefinitionStore = (*PostgresDefinitionStore)(nil)

// Create implements store.DefinitionStore.Create
// The insert is conflict-safe: a duplicate (word, part_of_speech, definition)
// triple inserts nothing and is reported as store.ErrDefinitionExists, so the
// caller decides whether a duplicate is an error or a skip.
func (s *PostgresDefinitionStore) Create(ctx context.Context, def *domain.Definition) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := def.Validate(); err != nil {
		log.Warn("definition validation failed during create",
			slog.String("error", err.Error()),
			slog.String("definition_id", def.ID.String()))
		return err
	}

	quizOptions, err := marshalQuizOptions(def.QuizOptions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO word_definitions (
			id, word, part_of_speech, difficulty, definition,
			example_sentence, quiz_options, correct_option,
			regeneration_note, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (word, part_of_speech, definition) DO NOTHING
		RETURNING id
	`
	var insertedID uuid.UUID
	err = s.db.QueryRowContext(
		ctx,
		query,
		def.ID,
		def.Word,
		def.PartOfSpeech,
		nullString(def.Difficulty),
		def.DefinitionText,
		nullString(def.ExampleSentence),
		quizOptions,
		def.CorrectOption,
		nullString(def.RegenerationNote),
		def.CreatedAt,
		def.UpdatedAt,
	).Scan(&insertedID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// DO NOTHING produced no row, so the triple already exists.
			return store.ErrDefinitionExists
		}
		log.Error("failed to create definition",
			slog.String("error", err.Error()),
			slog.String("definition_id", def.ID.String()),
			slog.String("word", def.Word))
		return MapError(err)
	}

	log.Debug("definition created",
		slog.String("definition_id", def.ID.String()),
		slog.String("word", def.Word),
		slog.String("part_of_speech", def.PartOfSpeech))
	return nil
}

// GetByID implements store.DefinitionStore.GetByID
// Returns store.ErrDefinitionNotFound if the definition does not exist.
func (s *PostgresDefinitionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Definition, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, word, part_of_speech, difficulty, definition,
		       example_sentence, quiz_options, correct_option,
		       regeneration_note, created_at, updated_at
		FROM word_definitions
		WHERE id = $1
	`
	var def domain.Definition
	var difficulty, exampleSentence, regenerationNote sql.NullString
	var quizOptions []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&def.ID,
		&def.Word,
		&def.PartOfSpeech,
		&difficulty,
		&def.DefinitionText,
		&exampleSentence,
		&quizOptions,
		&def.CorrectOption,
		&regenerationNote,
		&def.CreatedAt,
		&def.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDefinitionNotFound
		}
		log.Error("failed to get definition",
			slog.String("error", err.Error()),
			slog.String("definition_id", id.String()))
		return nil, MapError(err)
	}

	def.Difficulty = difficulty.String
	def.ExampleSentence = exampleSentence.String
	def.RegenerationNote = regenerationNote.String

	if len(quizOptions) > 0 {
		if err := json.Unmarshal(quizOptions, &def.QuizOptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiz options: %w", err)
		}
	}

	return &def, nil
}

// ExistsForWord implements store.DefinitionStore.ExistsForWord
func (s *PostgresDefinitionStore) ExistsForWord(ctx context.Context, word string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT EXISTS (SELECT 1 FROM word_definitions WHERE word = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, word).Scan(&exists); err != nil {
		log.Error("failed to check definition existence",
			slog.String("error", err.Error()),
			slog.String("word", word))
		return false, MapError(err)
	}

	return exists, nil
}

// WithTx implements store.DefinitionStore.WithTx
func (s *PostgresDefinitionStore) WithTx(tx *sql.Tx) store.DefinitionStore {
	return &PostgresDefinitionStore{
		db:     tx,
		logger: s.logger,
	}
}

// marshalQuizOptions encodes quiz options for the jsonb column. A nil or
// empty slice is stored as NULL rather than an empty array.
func marshalQuizOptions(options []string) (any, error) {
	if len(options) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz options: %w", err)
	}
	return data, nil
}
