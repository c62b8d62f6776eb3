package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxQuizOptions is the maximum number of multiple-choice options stored
// per definition.
const MaxQuizOptions = 4

// Definition-specific validation errors
var (
	// ErrDefinitionIDEmpty is returned when a definition ID is empty or nil.
	ErrDefinitionIDEmpty = errors.New("definition ID cannot be empty")

	// ErrDefinitionWordEmpty is returned when a definition's word is empty.
	ErrDefinitionWordEmpty = errors.New("definition word cannot be empty")

	// ErrDefinitionTextEmpty is returned when the definition text is empty.
	ErrDefinitionTextEmpty = errors.New("definition text cannot be empty")

	// ErrDefinitionPartOfSpeechEmpty is returned when the part of speech is empty.
	ErrDefinitionPartOfSpeechEmpty = errors.New("definition part of speech cannot be empty")

	// ErrTooManyQuizOptions is returned when more than MaxQuizOptions options are given.
	ErrTooManyQuizOptions = errors.New("definition has too many quiz options")

	// ErrInvalidCorrectOption is returned when the correct-option index does not
	// point at one of the quiz options.
	ErrInvalidCorrectOption = errors.New("correct option index out of range")
)

// Definition represents one generated dictionary sense for a word: its
// definition, an example sentence, and an optional multiple-choice quiz.
// One submitted word may yield several Definition records, one per sense.
type Definition struct {
	ID               uuid.UUID `json:"id"`
	Word             string    `json:"word"`
	PartOfSpeech     string    `json:"part_of_speech"`
	Difficulty       string    `json:"difficulty,omitempty"`
	DefinitionText   string    `json:"definition"`
	ExampleSentence  string    `json:"example_sentence,omitempty"`
	QuizOptions      []string  `json:"quiz_options,omitempty"`
	CorrectOption    int       `json:"correct_option"`
	RegenerationNote string    `json:"regeneration_note,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewDefinition creates a new Definition for the given word and sense data.
// It generates a new UUID for the definition ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewDefinition(
	word, partOfSpeech, difficulty, definitionText, exampleSentence string,
	quizOptions []string,
	correctOption int,
) (*Definition, error) {
	def := &Definition{
		ID:              uuid.New(),
		Word:            strings.TrimSpace(word),
		PartOfSpeech:    strings.TrimSpace(partOfSpeech),
		Difficulty:      difficulty,
		DefinitionText:  strings.TrimSpace(definitionText),
		ExampleSentence: exampleSentence,
		QuizOptions:     quizOptions,
		CorrectOption:   correctOption,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return def, nil
}

// Validate checks if the Definition has valid data.
// Returns an error if any field fails validation.
func (d *Definition) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDefinitionIDEmpty
	}

	if d.Word == "" {
		return ErrDefinitionWordEmpty
	}

	if d.PartOfSpeech == "" {
		return ErrDefinitionPartOfSpeechEmpty
	}

	if d.DefinitionText == "" {
		return ErrDefinitionTextEmpty
	}

	if len(d.QuizOptions) > MaxQuizOptions {
		return ErrTooManyQuizOptions
	}

	if len(d.QuizOptions) > 0 {
		if d.CorrectOption < 0 || d.CorrectOption >= len(d.QuizOptions) {
			return ErrInvalidCorrectOption
		}
	}

	return nil
}
