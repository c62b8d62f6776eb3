package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wordwell/wordwell-api/internal/api/shared"
	"github.com/wordwell/wordwell-api/internal/domain"
	"github.com/wordwell/wordwell-api/internal/platform/logger"
	"github.com/wordwell/wordwell-api/internal/service"
)

// VocabHandler handles vocabulary submission and job status API requests.
type VocabHandler struct {
	vocabService service.VocabService
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewVocabHandler creates a new VocabHandler with the given dependencies.
func NewVocabHandler(vocabService service.VocabService, log *slog.Logger) *VocabHandler {
	if log == nil {
		log = slog.Default()
	}
	return &VocabHandler{
		vocabService: vocabService,
		validator:    validator.New(),
		logger:       log.With("component", "vocab_handler"),
	}
}

// SubmitWords handles POST /words/bulk. It accepts a batch of words,
// creates an asynchronous job, and responds 202 with the job ID so the
// client can poll for progress.
func (h *VocabHandler) SubmitWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitWordsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	job, err := h.vocabService.SubmitBatch(r.Context(), userID, req.Words)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit words")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitWordsResponse{
		JobID:      job.ID,
		Status:     string(job.Status),
		TotalWords: job.TotalWords,
	})
}

// GetJob handles GET /jobs/{id}. The job must belong to the authenticated
// user; jobs owned by other users respond 404.
func (h *VocabHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	job, err := h.vocabService.GetJobForUser(r.Context(), jobID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve job")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}

// jobToResponse converts a domain job to its API representation.
func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:             job.ID,
		Status:         string(job.Status),
		TotalWords:     job.TotalWords,
		ProcessedWords: job.ProcessedWords,
		SucceededWords: job.SucceededWords,
		FailedWords:    job.FailedWords,
		ErrorMessage:   job.ErrorMessage,
		SubmittedAt:    job.SubmittedAt,
		CompletedAt:    job.CompletedAt,
	}
}
