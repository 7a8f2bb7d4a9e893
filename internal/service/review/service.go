package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/store"
)

// Service errors
var (
	// ErrConceptNotFound indicates the requested concept does not exist.
	ErrConceptNotFound = errors.New("concept not found")

	// ErrConceptExists indicates a memory record already exists for the
	// concept being created.
	ErrConceptExists = errors.New("concept already tracked")

	// ErrInvalidPerformance indicates a performance score outside 0-3.
	ErrInvalidPerformance = errors.New("performance score must be between 0 and 3")

	// ErrInvalidPostponeDays indicates a postpone request of less than one day.
	ErrInvalidPostponeDays = errors.New("postpone days must be at least 1")

	// ErrEmptyContent indicates a concept creation request with no content.
	ErrEmptyContent = errors.New("concept content cannot be empty")
)

// CreateConceptInput carries the attributes of a newly learned concept.
// Blank Subject, GradeLevel, and EmotionalContext fall back to domain
// defaults.
type CreateConceptInput struct {
	Content          string
	Subject          string
	GradeLevel       string
	EmotionalContext string
}

// ConceptDetail pairs a concept with its current scheduling state.
type ConceptDetail struct {
	Concept *domain.Concept
	Record  *domain.MemoryRecord
}

// ReviewResult is the outcome of submitting a review.
type ReviewResult struct {
	Concept *domain.Concept
	Record  *domain.MemoryRecord
	Success bool
}

// Stats extends the store-level learning statistics with the per-subject
// concept breakdown.
type Stats struct {
	store.LearningStats
	SubjectBreakdown map[string]int
}

// RetentionService defines the operations of the retention engine.
type RetentionService interface {
	// CreateConcept records a newly learned concept and its initial
	// scheduling state. The first review falls due one day later.
	CreateConcept(ctx context.Context, input CreateConceptInput) (*ConceptDetail, error)

	// GetConcept retrieves a concept and its scheduling state.
	GetConcept(ctx context.Context, id uuid.UUID) (*ConceptDetail, error)

	// ListConcepts retrieves concepts matching the filter.
	ListConcepts(ctx context.Context, filter store.ConceptFilter) ([]*domain.Concept, error)

	// ReviewConcept applies a review outcome to a concept's scheduling
	// state and persists the result atomically.
	ReviewConcept(ctx context.Context, id uuid.UUID, performance domain.Performance) (*ReviewResult, error)

	// PostponeConcept pushes a concept's next review forward by the given
	// number of days without altering mastery or ease state.
	PostponeConcept(ctx context.Context, id uuid.UUID, days int) (*domain.MemoryRecord, error)

	// DueConcepts retrieves concepts due for review as of the given time,
	// most overdue first, truncated to limit.
	DueConcepts(ctx context.Context, asOf time.Time, limit int) ([]store.DueConcept, error)

	// Stats aggregates learning statistics as of the given time.
	Stats(ctx context.Context, asOf time.Time) (*Stats, error)
}
