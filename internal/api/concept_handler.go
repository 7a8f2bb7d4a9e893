// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/api/shared"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/platform/logger"
	"github.com/mwelles/retention-api/internal/service/review"
	"github.com/mwelles/retention-api/internal/store"
)

// CreateConceptRequest represents the request body for learning a new concept
type CreateConceptRequest struct {
	Content          string `json:"content" validate:"required"`
	Subject          string `json:"subject"`
	GradeLevel       string `json:"grade_level"`
	EmotionalContext string `json:"emotional_context"`
}

// ConceptResponse represents the response data for a concept
type ConceptResponse struct {
	ID               string    `json:"id"`
	Content          string    `json:"content"`
	Subject          string    `json:"subject"`
	GradeLevel       string    `json:"grade_level"`
	EmotionalContext string    `json:"emotional_context,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// MemoryRecordResponse represents the response data for scheduling state
type MemoryRecordResponse struct {
	ConceptID      string     `json:"concept_id"`
	MasteryLevel   int        `json:"mastery_level"`
	MasteryName    string     `json:"mastery_name"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	SuccessStreak  int        `json:"success_streak"`
	TotalAttempts  int        `json:"total_attempts"`
}

// ConceptDetailResponse pairs a concept with its scheduling state
type ConceptDetailResponse struct {
	Concept ConceptResponse      `json:"concept"`
	Record  MemoryRecordResponse `json:"record"`
}

// ConceptHandler handles concept-related HTTP requests
type ConceptHandler struct {
	retentionService review.RetentionService
	logger           *slog.Logger
}

// NewConceptHandler creates a new ConceptHandler
func NewConceptHandler(
	retentionService review.RetentionService,
	logger *slog.Logger,
) *ConceptHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ConceptHandler")
	}

	return &ConceptHandler{
		retentionService: retentionService,
		logger:           logger.With(slog.String("component", "concept_handler")),
	}
}

// CreateConcept handles POST /concepts requests
// It records a newly learned concept and schedules its first review.
func (h *ConceptHandler) CreateConcept(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateConceptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Content is required")
		return
	}

	detail, err := h.retentionService.CreateConcept(r.Context(), review.CreateConceptInput{
		Content:          req.Content,
		Subject:          req.Subject,
		GradeLevel:       req.GradeLevel,
		EmotionalContext: req.EmotionalContext,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("concept created",
		slog.String("concept_id", detail.Concept.ID.String()),
		slog.String("subject", detail.Concept.Subject))
	shared.RespondWithJSON(w, r, http.StatusCreated, conceptDetailToResponse(detail))
}

// GetConcept handles GET /concepts/{id} requests
// It retrieves a concept and its scheduling state.
func (h *ConceptHandler) GetConcept(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseConceptID(w, r, log)
	if !ok {
		return
	}

	detail, err := h.retentionService.GetConcept(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, conceptDetailToResponse(detail))
}

// ListConcepts handles GET /concepts requests
// Optional query parameters subject and grade_level narrow the results.
func (h *ConceptHandler) ListConcepts(w http.ResponseWriter, r *http.Request) {
	filter := store.ConceptFilter{
		Subject:    r.URL.Query().Get("subject"),
		GradeLevel: r.URL.Query().Get("grade_level"),
	}

	concepts, err := h.retentionService.ListConcepts(r.Context(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list concepts", err)
		return
	}

	response := make([]ConceptResponse, 0, len(concepts))
	for _, concept := range concepts {
		response = append(response, conceptToResponse(concept))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// parseConceptID extracts and parses the {id} URL parameter, writing an
// error response and returning false when it is missing or malformed.
func parseConceptID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		log.Warn("concept ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Concept ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid concept ID format", slog.String("concept_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid concept ID format")
		return uuid.Nil, false
	}

	return id, true
}

func conceptToResponse(concept *domain.Concept) ConceptResponse {
	return ConceptResponse{
		ID:               concept.ID.String(),
		Content:          concept.Content,
		Subject:          concept.Subject,
		GradeLevel:       concept.GradeLevel,
		EmotionalContext: concept.EmotionalContext,
		CreatedAt:        concept.CreatedAt,
	}
}

func recordToResponse(record *domain.MemoryRecord) MemoryRecordResponse {
	response := MemoryRecordResponse{
		ConceptID:     record.ConceptID.String(),
		MasteryLevel:  int(record.MasteryLevel),
		MasteryName:   record.MasteryLevel.String(),
		EaseFactor:    record.EaseFactor,
		IntervalDays:  record.IntervalDays,
		Repetitions:   record.Repetitions,
		NextReviewAt:  record.NextReviewAt,
		SuccessStreak: record.SuccessStreak,
		TotalAttempts: record.TotalAttempts,
	}
	if !record.LastReviewedAt.IsZero() {
		t := record.LastReviewedAt
		response.LastReviewedAt = &t
	}
	return response
}

func conceptDetailToResponse(detail *review.ConceptDetail) ConceptDetailResponse {
	return ConceptDetailResponse{
		Concept: conceptToResponse(detail.Concept),
		Record:  recordToResponse(detail.Record),
	}
}
