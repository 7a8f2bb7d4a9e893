package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MasteryLevel is the ordinal proficiency stage of a concept, from never
// seen to long-term retention. Levels only change through the review
// update rule in the srs package.
type MasteryLevel int

// Mastery levels, ordered weakest to strongest.
const (
	MasteryUnknown  MasteryLevel = iota // never seen before
	MasteryLearning                     // just introduced
	MasteryReview                       // needs reinforcement
	MasteryFamiliar                     // getting comfortable
	MasteryKnown                        // well understood
	MasteryMastered                     // long-term retention
)

// MinMasteryLevel and MaxMasteryLevel bound the mastery scale.
const (
	MinMasteryLevel = MasteryUnknown
	MaxMasteryLevel = MasteryMastered
)

var masteryNames = map[MasteryLevel]string{
	MasteryUnknown:  "unknown",
	MasteryLearning: "learning",
	MasteryReview:   "review",
	MasteryFamiliar: "familiar",
	MasteryKnown:    "known",
	MasteryMastered: "mastered",
}

// String returns the lowercase name of the mastery level.
func (m MasteryLevel) String() string {
	if name, ok := masteryNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mastery(%d)", int(m))
}

// Valid reports whether the level is within the defined scale.
func (m MasteryLevel) Valid() bool {
	return m >= MinMasteryLevel && m <= MaxMasteryLevel
}

// Performance is the reviewer-supplied quality of recall for a single
// review, on the standard four-point scale.
type Performance int

// Performance scores, ordered worst to best.
const (
	PerformanceFailed Performance = iota
	PerformanceHard
	PerformanceGood
	PerformanceEasy
)

var performanceNames = map[Performance]string{
	PerformanceFailed: "failed",
	PerformanceHard:   "hard",
	PerformanceGood:   "good",
	PerformanceEasy:   "easy",
}

// String returns the lowercase name of the performance score.
func (p Performance) String() string {
	if name, ok := performanceNames[p]; ok {
		return name
	}
	return fmt.Sprintf("performance(%d)", int(p))
}

// Valid reports whether the score is within the accepted 0-3 range.
func (p Performance) Valid() bool {
	return p >= PerformanceFailed && p <= PerformanceEasy
}

// Success reports whether the score counts as a successful recall.
func (p Performance) Success() bool {
	return p >= PerformanceGood
}

// Ease factor bounds. The ease factor governs how fast intervals grow and
// is clamped to this range after every review.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
)

// Common validation errors for MemoryRecord
var (
	ErrEmptyRecordConceptID = errors.New("memory record concept ID cannot be empty")
	ErrInvalidMasteryLevel  = errors.New("mastery level must be between 0 and 5")
	ErrInvalidEaseFactor    = errors.New("ease factor must be greater than 1.0")
	ErrInvalidInterval      = errors.New("interval must be at least 1 day")
	ErrInvalidPerformance   = errors.New("performance must be 0 (failed), 1 (hard), 2 (good), or 3 (easy)")
)

// MemoryRecord tracks the spaced repetition scheduling state for a single
// concept. Exactly one record exists per concept; it is created the moment
// the concept is learned and mutated only by the review operation.
//
// SuccessStreak and TotalAttempts are reporting counters; scheduling is
// driven solely by Repetitions and the supplied performance score.
type MemoryRecord struct {
	ConceptID      uuid.UUID    `json:"concept_id"`
	MasteryLevel   MasteryLevel `json:"mastery_level"`
	EaseFactor     float64      `json:"ease_factor"`
	IntervalDays   int          `json:"interval_days"`
	Repetitions    int          `json:"repetitions"`    // consecutive successful reviews since last failure
	LastReviewedAt time.Time    `json:"last_reviewed_at"` // zero until the first review
	NextReviewAt   time.Time    `json:"next_review_at"`
	SuccessStreak  int          `json:"success_streak"`
	TotalAttempts  int          `json:"total_attempts"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewMemoryRecord creates the initial scheduling state for a freshly
// learned concept: learning stage, default ease, one-day interval, first
// review due a day from now.
func NewMemoryRecord(conceptID uuid.UUID, now time.Time) (*MemoryRecord, error) {
	record := &MemoryRecord{
		ConceptID:      conceptID,
		MasteryLevel:   MasteryLearning,
		EaseFactor:     DefaultEaseFactor,
		IntervalDays:   1,
		Repetitions:    0,
		LastReviewedAt: time.Time{},
		NextReviewAt:   now.AddDate(0, 0, 1),
		SuccessStreak:  0,
		TotalAttempts:  0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the MemoryRecord has valid data.
// Returns an error if any field fails validation.
func (r *MemoryRecord) Validate() error {
	if r.ConceptID == uuid.Nil {
		return ErrEmptyRecordConceptID
	}

	if !r.MasteryLevel.Valid() {
		return ErrInvalidMasteryLevel
	}

	if r.EaseFactor <= 1.0 {
		return ErrInvalidEaseFactor
	}

	if r.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	return nil
}
