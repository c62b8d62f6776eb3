package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"text/template"
	"time"

	"github.com/wordwell/wordwell-api/internal/config"
	"github.com/wordwell/wordwell-api/internal/generation"
	"google.golang.org/genai"
)

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to produce word analyses.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure GeminiGenerator implements generation.Generator
var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new instance of GeminiGenerator with the
// provided dependencies. It loads and parses the prompt template and
// initializes the Gemini client.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.PromptTemplatePath == "" {
		return nil, fmt.Errorf("%w: prompt template path cannot be empty", generation.ErrInvalidConfig)
	}

	templateContent, err := os.ReadFile(cfg.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			generation.ErrInvalidConfig, cfg.PromptTemplatePath, err)
	}

	promptTemplate, err := template.New("word_analysis").Parse(string(templateContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateWordAnalysis implements generation.Generator.
// It renders the prompt, calls the Gemini API with retry, and maps the
// structured response to WordSense values.
func (g *GeminiGenerator) GenerateWordAnalysis(
	ctx context.Context,
	word string,
) ([]generation.WordSense, error) {
	prompt, err := g.createPrompt(ctx, word)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, word, response)
}

// createPrompt generates a prompt string from the template with the provided word.
func (g *GeminiGenerator) createPrompt(ctx context.Context, word string) (string, error) {
	if word == "" {
		return "", generation.ErrEmptyWord
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, promptData{Word: word}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := promptBuffer.String()
	g.logger.DebugContext(ctx, "prompt generated",
		"word", word,
		"prompt_length", len(prompt))

	return prompt, nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff
// retry logic.
//
// It attempts the call up to config.MaxRetries+1 times, using exponential
// backoff with jitter between retries for transient errors. Permanent errors
// (content blocked by safety filters, unparseable responses) are returned
// immediately without retrying.
func (g *GeminiGenerator) callGeminiWithRetry(
	ctx context.Context,
	prompt string,
) (*ResponseSchema, error) {
	if prompt == "" {
		return nil, generation.ErrEmptyWord
	}

	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1 // 1-based for logging
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var response *ResponseSchema
		var isTransientError bool

		resp, err := g.client.Models.GenerateContent(
			ctx,
			g.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{
				ResponseMIMEType: "application/json",
			},
		)
		if err != nil {
			// Assume API-level errors are transient by default.
			isTransientError = true
			g.logger.ErrorContext(ctx, "Gemini API call error",
				"error", err,
				"attempt", attemptNum)
		} else if resp == nil || len(resp.Candidates) == 0 {
			err = fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
		} else if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			err = fmt.Errorf("%w: safety filters triggered", generation.ErrContentBlocked)
		} else {
			text := resp.Text()
			var parsed ResponseSchema
			if unmarshalErr := json.Unmarshal([]byte(text), &parsed); unmarshalErr != nil {
				err = fmt.Errorf("%w: failed to parse JSON response: %v",
					generation.ErrInvalidResponse, unmarshalErr)
			} else {
				response = &parsed
			}
		}

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are returned immediately.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		if !isTransientError {
			return nil, err
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return nil, fmt.Errorf("%w: failed after %d attempts",
		generation.ErrTransientFailure, attempt)
}

// parseResponse converts a ResponseSchema from the Gemini API into WordSense
// values, dropping senses that are missing required fields and normalizing
// quiz data. A response with an empty sense list is a valid empty result; a
// response whose senses were all dropped is an invalid response.
func (g *GeminiGenerator) parseResponse(
	ctx context.Context,
	word string,
	response *ResponseSchema,
) ([]generation.WordSense, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", generation.ErrInvalidResponse)
	}

	if len(response.Senses) == 0 {
		g.logger.InfoContext(ctx, "model returned no senses", "word", word)
		return []generation.WordSense{}, nil
	}

	senses := make([]generation.WordSense, 0, len(response.Senses))
	dropped := 0
	for i, s := range response.Senses {
		if s.PartOfSpeech == "" || s.Definition == "" {
			g.logger.WarnContext(ctx, "dropping sense with missing required fields",
				"word", word,
				"sense_index", i)
			dropped++
			continue
		}

		options := s.QuizOptions
		correct := s.CorrectOption
		if len(options) > 4 {
			options = options[:4]
		}
		if correct < 0 || correct >= len(options) {
			// Quiz data is unusable; keep the sense without a quiz.
			options = nil
			correct = 0
		}

		senses = append(senses, generation.WordSense{
			PartOfSpeech:    s.PartOfSpeech,
			Difficulty:      s.Difficulty,
			Definition:      s.Definition,
			ExampleSentence: s.ExampleSentence,
			QuizOptions:     options,
			CorrectOption:   correct,
		})
	}

	if len(senses) == 0 {
		return nil, fmt.Errorf("%w: all %d senses were missing required fields",
			generation.ErrInvalidResponse, dropped)
	}

	g.logger.InfoContext(ctx, "parsed word analysis",
		"word", word,
		"sense_count", len(senses),
		"dropped", dropped)

	return senses, nil
}
