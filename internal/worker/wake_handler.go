package worker

import (
	"context"
	"log/slog"

	"github.com/wordwell/wordwell-api/internal/events"
)

// WakeHandler wakes the worker loop when a job submission event arrives,
// so freshly submitted items are picked up without waiting out the idle
// delay. It implements events.EventHandler.
type WakeHandler struct {
	runner *Runner
	logger *slog.Logger
}

// NewWakeHandler creates a WakeHandler for the given runner.
func NewWakeHandler(runner *Runner, logger *slog.Logger) *WakeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WakeHandler{
		runner: runner,
		logger: logger.With(slog.String("component", "worker_wake_handler")),
	}
}

// Ensure WakeHandler implements events.EventHandler interface
var _ events.EventHandler = (*WakeHandler)(nil)

// HandleEvent implements events.EventHandler.
func (h *WakeHandler) HandleEvent(ctx context.Context, event *events.JobSubmittedEvent) error {
	h.logger.Debug("waking worker for submitted job",
		slog.String("job_id", event.JobID.String()),
		slog.Int("word_count", event.WordCount))
	h.runner.Poke()
	return nil
}
