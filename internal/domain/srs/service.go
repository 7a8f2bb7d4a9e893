package srs

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/mwelles/retention-api/internal/domain"
)

// Common errors
var (
	ErrNilRecord          = errors.New("memory record cannot be nil")
	ErrInvalidPerformance = errors.New("invalid performance score")
	ErrInvalidDays        = errors.New("postpone days must be at least 1")
)

// JitterFunc supplies the multiplicative noise applied to computed review
// intervals. Injecting it keeps the scheduler deterministic in tests.
type JitterFunc func() float64

// Service defines the interface for scheduling operations. Given a memory
// record and a review outcome it computes the record's next state; it is
// pure computation with no storage dependencies.
type Service interface {
	// CalculateNextReview computes a new record from a review performance.
	CalculateNextReview(
		record *domain.MemoryRecord,
		performance domain.Performance,
		now time.Time,
	) (*domain.MemoryRecord, error)

	// PostponeReview pushes the next review time forward by a number of
	// days without touching mastery, ease, or interval state.
	PostponeReview(
		record *domain.MemoryRecord,
		days int,
		now time.Time,
	) (*domain.MemoryRecord, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
	jitter JitterFunc
}

// NewDefaultService creates a scheduling service with default parameters
// and uniform jitter.
func NewDefaultService() Service {
	params := NewDefaultParams()
	return &defaultService{
		params: params,
		jitter: UniformJitter(params.JitterLow, params.JitterHigh),
	}
}

// NewService creates a scheduling service with custom parameters and
// jitter source. A nil jitter falls back to uniform noise over the
// params' jitter bounds.
func NewService(params *Params, jitter JitterFunc) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	if jitter == nil {
		jitter = UniformJitter(params.JitterLow, params.JitterHigh)
	}
	return &defaultService{
		params: params,
		jitter: jitter,
	}
}

// UniformJitter returns a JitterFunc producing uniform factors in
// [low, high). The shared rand source is guarded for concurrent use.
func UniformJitter(low, high float64) JitterFunc {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return low + rng.Float64()*(high-low)
	}
}

// FixedJitter returns a JitterFunc that always produces the given factor.
// Useful for deterministic tests.
func FixedJitter(factor float64) JitterFunc {
	return func() float64 {
		return factor
	}
}

// CalculateNextReview implements the Service interface. It validates its
// inputs before computing anything so an invalid performance score never
// produces a partially updated record.
func (s *defaultService) CalculateNextReview(
	record *domain.MemoryRecord,
	performance domain.Performance,
	now time.Time,
) (*domain.MemoryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if !performance.Valid() {
		return nil, ErrInvalidPerformance
	}

	return nextRecord(record, performance, now, s.jitter(), s.params), nil
}

// PostponeReview implements the Service interface.
func (s *defaultService) PostponeReview(
	record *domain.MemoryRecord,
	days int,
	now time.Time,
) (*domain.MemoryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	newRecord := &domain.MemoryRecord{
		ConceptID:      record.ConceptID,
		MasteryLevel:   record.MasteryLevel,
		EaseFactor:     record.EaseFactor,
		IntervalDays:   record.IntervalDays,
		Repetitions:    record.Repetitions,
		LastReviewedAt: record.LastReviewedAt,
		NextReviewAt:   record.NextReviewAt.AddDate(0, 0, days),
		SuccessStreak:  record.SuccessStreak,
		TotalAttempts:  record.TotalAttempts,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      now,
	}

	return newRecord, nil
}
