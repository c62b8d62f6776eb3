package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wordwell/wordwell-api/internal/config"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/generation"
	"github.com/wordwell/wordwell-api/internal/store"
)

// Stream event types, in the order a client observes them. One start frame,
// then per word a progress frame followed by exactly one outcome frame
// (word_success, word_duplicate, or word_failed), then complete and end.
// A rejected submission gets a single terminal error frame instead, after
// which the connection closes.
const (
	StreamEventStart         = "start"
	StreamEventProgress      = "progress"
	StreamEventWordSuccess   = "word_success"
	StreamEventWordDuplicate = "word_duplicate"
	StreamEventWordFailed    = "word_failed"
	StreamEventComplete      = "complete"
	StreamEventError         = "error"
	StreamEventEnd           = "end"
)

// StreamEvent is one frame of the streaming submission protocol.
// Index is 1-based.
type StreamEvent struct {
	Type       string         `json:"type"`
	Word       string         `json:"word,omitempty"`
	Index      int            `json:"index,omitempty"`
	Total      int            `json:"total,omitempty"`
	SenseCount int            `json:"sense_count,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Summary    *StreamSummary `json:"summary,omitempty"`
}

// StreamSummary aggregates per-word outcomes for the complete frame.
type StreamSummary struct {
	Total      int `json:"total"`
	Succeeded  int `json:"succeeded"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// EventSink receives stream frames. The websocket handler adapts a
// connection to this interface; tests use an in-memory implementation.
// A Send error means the client is gone and processing should stop.
type EventSink interface {
	Send(ctx context.Context, event *StreamEvent) error
}

// StreamService processes a small word list synchronously, reporting
// per-word progress to an EventSink as each word is handled.
type StreamService struct {
	defStore  store.DefinitionStore
	generator generation.Generator
	config    config.StreamConfig
	logger    *slog.Logger
}

// NewStreamService creates a new StreamService.
func NewStreamService(
	defStore store.DefinitionStore,
	generator generation.Generator,
	cfg config.StreamConfig,
	logger *slog.Logger,
) (*StreamService, error) {
	if defStore == nil {
		return nil, errors.New("defStore cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if cfg.MaxWords <= 0 {
		return nil, errors.New("stream max words must be positive")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StreamService{
		defStore:  defStore,
		generator: generator,
		config:    cfg,
		logger:    logger.With("component", "stream_service"),
	}, nil
}

// Run processes the given words sequentially and streams one outcome frame
// per word to the sink. It returns when all words are handled, the context
// is cancelled, or the sink fails.
func (s *StreamService) Run(ctx context.Context, words []string, sink EventSink) error {
	if err := s.validate(words); err != nil {
		// The submission itself is rejected. The error frame is terminal;
		// the connection closes without an end frame.
		if sendErr := sink.Send(ctx, &StreamEvent{
			Type:   StreamEventError,
			Reason: err.Error(),
		}); sendErr != nil {
			return sendErr
		}
		return err
	}

	if err := sink.Send(ctx, &StreamEvent{
		Type:  StreamEventStart,
		Total: len(words),
	}); err != nil {
		return err
	}

	summary := &StreamSummary{Total: len(words)}

	for i, word := range words {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("stream cancelled",
				"words_done", i,
				"words_total", len(words))
			return err
		}

		if i > 0 && s.config.WordDelay > 0 {
			timer := time.NewTimer(s.config.WordDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := sink.Send(ctx, &StreamEvent{
			Type:  StreamEventProgress,
			Word:  word,
			Index: i + 1,
			Total: len(words),
		}); err != nil {
			return err
		}

		outcome := s.processWord(ctx, word)
		outcome.Index = i + 1
		outcome.Total = len(words)

		switch outcome.Type {
		case StreamEventWordSuccess:
			summary.Succeeded++
		case StreamEventWordDuplicate:
			summary.Duplicates++
		case StreamEventWordFailed:
			summary.Failed++
		}

		if err := sink.Send(ctx, outcome); err != nil {
			return err
		}
	}

	if err := sink.Send(ctx, &StreamEvent{
		Type:    StreamEventComplete,
		Summary: summary,
	}); err != nil {
		return err
	}
	return sink.Send(ctx, &StreamEvent{Type: StreamEventEnd})
}

// processWord drives one word to its outcome frame.
func (s *StreamService) processWord(ctx context.Context, word string) *StreamEvent {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return &StreamEvent{
			Type:   StreamEventWordFailed,
			Word:   word,
			Reason: "word is blank",
		}
	}

	// Cheap duplicate check before spending a generation call.
	exists, err := s.defStore.ExistsForWord(ctx, trimmed)
	if err != nil {
		s.logger.Error("duplicate check failed",
			"error", err,
			"word", trimmed)
		return &StreamEvent{
			Type:   StreamEventWordFailed,
			Word:   trimmed,
			Reason: "storage error during duplicate check",
		}
	}
	if exists {
		return &StreamEvent{
			Type: StreamEventWordDuplicate,
			Word: trimmed,
		}
	}

	senses, err := s.generator.GenerateWordAnalysis(ctx, trimmed)
	if err != nil {
		s.logger.Warn("generation failed",
			"error", err,
			"word", trimmed)
		return &StreamEvent{
			Type:   StreamEventWordFailed,
			Word:   trimmed,
			Reason: err.Error(),
		}
	}

	stored := 0
	for _, sense := range senses {
		def, err := domain.NewDefinition(
			trimmed,
			sense.PartOfSpeech,
			sense.Difficulty,
			sense.Definition,
			sense.ExampleSentence,
			sense.QuizOptions,
			sense.CorrectOption,
		)
		if err != nil {
			s.logger.Warn("invalid generated sense",
				"error", err,
				"word", trimmed)
			return &StreamEvent{
				Type:   StreamEventWordFailed,
				Word:   trimmed,
				Reason: "generator returned an invalid sense",
			}
		}

		if err := s.defStore.Create(ctx, def); err != nil {
			if errors.Is(err, store.ErrDefinitionExists) {
				continue
			}
			s.logger.Error("failed to store definition",
				"error", err,
				"word", trimmed)
			return &StreamEvent{
				Type:   StreamEventWordFailed,
				Word:   trimmed,
				Reason: "failed to store definition",
			}
		}
		stored++
	}

	// Every sense collided with an already-stored record.
	if stored == 0 && len(senses) > 0 {
		return &StreamEvent{
			Type: StreamEventWordDuplicate,
			Word: trimmed,
		}
	}

	return &StreamEvent{
		Type:       StreamEventWordSuccess,
		Word:       trimmed,
		SenseCount: stored,
	}
}

func (s *StreamService) validate(words []string) error {
	if len(words) == 0 {
		return ErrEmptyBatch
	}
	if len(words) > s.config.MaxWords {
		return fmt.Errorf("%w: %d words, limit is %d",
			ErrBatchTooLarge, len(words), s.config.MaxWords)
	}
	return nil
}
