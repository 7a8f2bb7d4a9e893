package srs

import (
	"math"
	"time"

	"github.com/mwelles/retention-api/internal/domain"
)

// nextMasteryLevel determines the new mastery level from the review
// performance and the concept's track record.
//
// Failures demote sharply (two levels), hard reviews demote gently (one
// level). Promotions require a track record: a good review only promotes
// once the concept has accumulated enough consecutive successful
// repetitions before this review, and an easy review promotes on a lower
// threshold. The result is always clamped to the defined scale.
func nextMasteryLevel(
	current domain.MasteryLevel,
	repetitions int,
	performance domain.Performance,
	params *Params,
) domain.MasteryLevel {
	level := int(current)

	switch performance {
	case domain.PerformanceFailed:
		level -= params.FailedMasteryDrop
	case domain.PerformanceHard:
		level -= params.HardMasteryDrop
	case domain.PerformanceGood:
		if repetitions >= params.GoodPromotionThreshold {
			level++
		}
	case domain.PerformanceEasy:
		if repetitions >= params.EasyPromotionThreshold {
			level++
		}
	}

	if level < int(domain.MinMasteryLevel) {
		level = int(domain.MinMasteryLevel)
	}
	if level > int(domain.MaxMasteryLevel) {
		level = int(domain.MaxMasteryLevel)
	}

	return domain.MasteryLevel(level)
}

// nextEaseFactor computes the new ease factor from the review performance
// using the SM-2 adjustment curve: good leaves the ease unchanged, easy
// raises it, and any unsuccessful review applies a flat penalty. The
// result is clamped to [params.MinEaseFactor, params.MaxEaseFactor].
func nextEaseFactor(
	currentEF float64,
	performance domain.Performance,
	params *Params,
) float64 {
	var newEF float64
	if performance.Success() {
		q := float64(domain.PerformanceEasy - performance)
		newEF = currentEF + (0.1 - q*(0.08+q*0.02))
	} else {
		newEF = currentEF - params.EasePenalty
	}

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// nextInterval computes how many days should pass until the next review.
//
//   - First-ever review (repetitions before the update == 0): fixed lookup
//     from params.FirstReviewIntervals, not multiplicative.
//   - Any failure: reset to 1 day.
//   - Second review: fixed short interval regardless of ease.
//   - Otherwise: previous interval scaled by the (already updated) ease
//     factor and a jitter factor that spreads reviews out to avoid
//     bunching. Never less than 1 day.
func nextInterval(
	currentInterval int,
	repetitions int,
	easeFactor float64,
	performance domain.Performance,
	jitter float64,
	params *Params,
) int {
	if repetitions == 0 {
		return params.FirstReviewIntervals[performance]
	}

	if !performance.Success() {
		return 1
	}

	if repetitions == 1 {
		return params.SecondReviewIntervalDays
	}

	interval := int(math.Round(float64(currentInterval) * easeFactor * jitter))
	if interval < 1 {
		interval = 1
	}
	return interval
}

// nextRecord creates a new MemoryRecord with updated values for a review.
//
// It applies the full update rule in order: mastery transition, streak
// bookkeeping, ease adjustment, interval computation, then timing. The
// original record is never modified; the caller persists the returned copy
// so the update is atomic from the store's point of view.
func nextRecord(
	record *domain.MemoryRecord,
	performance domain.Performance,
	now time.Time,
	jitter float64,
	params *Params,
) *domain.MemoryRecord {
	newRecord := &domain.MemoryRecord{
		ConceptID:      record.ConceptID,
		MasteryLevel:   record.MasteryLevel,
		EaseFactor:     record.EaseFactor,
		IntervalDays:   record.IntervalDays,
		Repetitions:    record.Repetitions,
		LastReviewedAt: record.LastReviewedAt,
		NextReviewAt:   record.NextReviewAt,
		SuccessStreak:  record.SuccessStreak,
		TotalAttempts:  record.TotalAttempts,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}

	// Mastery and interval rules both key off the repetition count as it
	// stood before this review.
	repsBefore := record.Repetitions

	newRecord.MasteryLevel = nextMasteryLevel(record.MasteryLevel, repsBefore, performance, params)

	if performance.Success() {
		newRecord.SuccessStreak++
		newRecord.Repetitions++
	} else {
		newRecord.SuccessStreak = 0
		newRecord.Repetitions = 0
	}

	newRecord.EaseFactor = nextEaseFactor(record.EaseFactor, performance, params)

	newRecord.IntervalDays = nextInterval(
		record.IntervalDays,
		repsBefore,
		newRecord.EaseFactor,
		performance,
		jitter,
		params,
	)

	newRecord.TotalAttempts++
	newRecord.LastReviewedAt = now
	newRecord.NextReviewAt = now.AddDate(0, 0, newRecord.IntervalDays)
	newRecord.UpdatedAt = now

	return newRecord
}
