package gemini

// promptData holds the values injected into the prompt template.
type promptData struct {
	Word string
}

// ResponseSchema is the structured JSON document the model is instructed to
// return: one entry per distinct sense of the analyzed word.
type ResponseSchema struct {
	Senses []SenseSchema `json:"senses"`
}

// SenseSchema is one sense of a word as returned by the model.
type SenseSchema struct {
	PartOfSpeech    string   `json:"part_of_speech"`
	Difficulty      string   `json:"difficulty"`
	Definition      string   `json:"definition"`
	ExampleSentence string   `json:"example_sentence"`
	QuizOptions     []string `json:"quiz_options"`
	CorrectOption   int      `json:"correct_option"`
}
