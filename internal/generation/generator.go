package generation

import "context"

// WordSense is one dictionary sense produced for a word: a definition, an
// example sentence, and an optional multiple-choice quiz. A single word may
// yield several senses.
type WordSense struct {
	PartOfSpeech    string   `json:"part_of_speech"`
	Difficulty      string   `json:"difficulty"`
	Definition      string   `json:"definition"`
	ExampleSentence string   `json:"example_sentence"`
	QuizOptions     []string `json:"quiz_options"`
	CorrectOption   int      `json:"correct_option"`
}

// Generator defines the interface for producing word analyses.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Generator interface {
	// GenerateWordAnalysis produces zero or more dictionary senses for the
	// given word. An empty result with a nil error means the model found
	// nothing to say about the word; that is success, not failure.
	//
	// Returns ErrContentBlocked, ErrInvalidResponse, or ErrTransientFailure
	// (possibly wrapped) when generation fails.
	GenerateWordAnalysis(ctx context.Context, word string) ([]WordSense, error)
}
