package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/platform/logger"
	"github.com/wordwell/wordwell-api/internal/service"
)

const (
	// streamWriteTimeout bounds each frame write so a stalled client
	// cannot pin the handler goroutine.
	streamWriteTimeout = 10 * time.Second

	// streamRequestTimeout bounds how long the handler waits for the
	// client's initial word list after the upgrade.
	streamRequestTimeout = 30 * time.Second
)

// StreamHandler handles the websocket endpoint for streaming word submission.
// The client connects, sends a single JSON message with its word list, and
// receives one frame per processing step until the end frame.
type StreamHandler struct {
	streamService *service.StreamService
	upgrader      websocket.Upgrader
	logger        *slog.Logger
}

// NewStreamHandler creates a new StreamHandler with the given dependencies.
func NewStreamHandler(streamService *service.StreamService, log *slog.Logger) *StreamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StreamHandler{
		streamService: streamService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: log.With("component", "stream_handler"),
	}
}

// wsEventSink adapts a websocket connection to the stream service's sink.
type wsEventSink struct {
	conn *websocket.Conn
}

// Send writes one stream frame to the client. A write error means the
// client is gone; the service stops processing when Send fails.
func (s *wsEventSink) Send(ctx context.Context, event *service.StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

// StreamWords handles GET /words/stream. The authentication middleware runs
// before the upgrade, so unauthenticated clients are rejected with a plain
// HTTP error rather than a websocket close frame.
func (h *StreamHandler) StreamWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug("failed to close websocket connection", "error", err)
		}
	}()

	// The first client message carries the word list.
	if err := conn.SetReadDeadline(time.Now().Add(streamRequestTimeout)); err != nil {
		log.Warn("failed to set read deadline", "error", err)
		return
	}
	var req StreamWordsRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Debug("failed to read stream request", "error", err)
		h.writeCloseFrame(conn, websocket.CloseInvalidFramePayloadData, "invalid request")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump: the client sends nothing further, so any read result
	// (including a close frame) means the connection is done. Cancelling
	// the context stops in-flight processing promptly.
	go func() {
		defer cancel()
		if err := conn.SetReadDeadline(time.Time{}); err != nil {
			return
		}
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	log.Info("stream started",
		"user_id", userID,
		"word_count", len(req.Words))

	sink := &wsEventSink{conn: conn}
	if err := h.streamService.Run(ctx, req.Words, sink); err != nil {
		// Validation rejections already produced a terminal error frame.
		log.Debug("stream finished with error",
			"error", err,
			"user_id", userID)
	}

	h.writeCloseFrame(conn, websocket.CloseNormalClosure, "")
}

func (h *StreamHandler) writeCloseFrame(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(streamWriteTimeout)
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		h.logger.Debug("failed to write close frame", "error", err)
	}
}
