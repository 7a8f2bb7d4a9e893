package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mwelles/retention-api/internal/api/shared"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/platform/logger"
	"github.com/mwelles/retention-api/internal/service/review"
)

// SubmitReviewRequest represents the request body for submitting a review
// outcome. Performance is a pointer so an omitted field is distinguishable
// from a legitimate zero (failed recall).
type SubmitReviewRequest struct {
	Performance *int `json:"performance" validate:"required,min=0,max=3"`
}

// PostponeRequest represents the request body for postponing a review
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// ReviewResultResponse represents the outcome of a submitted review
type ReviewResultResponse struct {
	Concept ConceptResponse      `json:"concept"`
	Record  MemoryRecordResponse `json:"record"`
	Success bool                 `json:"success"`
}

// DueConceptResponse represents one entry in the due review queue
type DueConceptResponse struct {
	Concept ConceptResponse      `json:"concept"`
	Record  MemoryRecordResponse `json:"record"`
}

// StatsResponse represents aggregated learning statistics
type StatsResponse struct {
	TotalConcepts       int            `json:"total_concepts"`
	DueForReview        int            `json:"due_for_review"`
	MasteryDistribution map[string]int `json:"mastery_distribution"`
	AverageMastery      float64        `json:"average_mastery"`
	AverageSuccessRate  float64        `json:"average_success_rate"`
	SubjectBreakdown    map[string]int `json:"subject_breakdown"`
}

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	retentionService review.RetentionService
	logger           *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(
	retentionService review.RetentionService,
	logger *slog.Logger,
) *ReviewHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		retentionService: retentionService,
		logger:           logger.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /concepts/{id}/review requests
// It applies a review outcome to a concept's schedule.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseConceptID(w, r, log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(
			w, r, http.StatusBadRequest,
			"Performance score is required and must be between 0 and 3",
		)
		return
	}

	result, err := h.retentionService.ReviewConcept(r.Context(), id, domain.Performance(*req.Performance))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review submitted",
		slog.String("concept_id", id.String()),
		slog.Int("performance", *req.Performance),
		slog.Bool("success", result.Success))
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResultResponse{
		Concept: conceptToResponse(result.Concept),
		Record:  recordToResponse(result.Record),
		Success: result.Success,
	})
}

// PostponeReview handles POST /concepts/{id}/postpone requests
// It pushes the concept's next review forward without changing mastery.
func (h *ReviewHandler) PostponeReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseConceptID(w, r, log)
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Days must be at least 1")
		return
	}

	record, err := h.retentionService.PostponeConcept(r.Context(), id, req.Days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review postponed",
		slog.String("concept_id", id.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record))
}

// DueReviews handles GET /reviews/due requests
// The optional limit query parameter caps the number of results.
func (h *ReviewHandler) DueReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			log.Warn("invalid limit parameter", slog.String("limit", rawLimit))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Limit must be a positive integer")
			return
		}
		limit = parsed
	}

	asOf := time.Now().UTC()
	if rawAsOf := r.URL.Query().Get("as_of"); rawAsOf != "" {
		parsed, err := time.Parse(time.RFC3339, rawAsOf)
		if err != nil {
			log.Warn("invalid as_of parameter", slog.String("as_of", rawAsOf))
			shared.RespondWithError(w, r, http.StatusBadRequest, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = parsed.UTC()
	}

	due, err := h.retentionService.DueConcepts(r.Context(), asOf, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to get due reviews", err)
		return
	}

	response := make([]DueConceptResponse, 0, len(due))
	for _, d := range due {
		response = append(response, DueConceptResponse{
			Concept: conceptToResponse(d.Concept),
			Record:  recordToResponse(d.Record),
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// GetStats handles GET /stats requests
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.retentionService.Stats(r.Context(), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to get stats", err)
		return
	}

	distribution := make(map[string]int, len(stats.MasteryDistribution))
	for level, count := range stats.MasteryDistribution {
		distribution[level.String()] = count
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		TotalConcepts:       stats.TotalConcepts,
		DueForReview:        stats.DueForReview,
		MasteryDistribution: distribution,
		AverageMastery:      stats.AverageMastery,
		AverageSuccessRate:  stats.AverageSuccessRate,
		SubjectBreakdown:    stats.SubjectBreakdown,
	})
}
