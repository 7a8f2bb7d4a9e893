package srs

import (
	"github.com/mwelles/retention-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Ease penalty applied on a failed or hard review
	EasePenalty float64

	// Intervals for a concept's first-ever review, keyed by performance
	FirstReviewIntervals map[domain.Performance]int

	// Interval for the second consecutive successful review
	SecondReviewIntervalDays int

	// Promotion thresholds: minimum repetitions (before the update) required
	// for a good or easy review to raise the mastery level
	GoodPromotionThreshold int
	EasyPromotionThreshold int

	// Sharp demotion on a failed review, gentle demotion on a hard one
	FailedMasteryDrop int
	HardMasteryDrop   int

	// Jitter bounds for the multiplicative interval noise
	JitterLow  float64
	JitterHigh float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64
	EasePenalty   float64

	FirstReviewFailedInterval int
	FirstReviewHardInterval   int
	FirstReviewGoodInterval   int
	FirstReviewEasyInterval   int

	SecondReviewIntervalDays int

	GoodPromotionThreshold int
	EasyPromotionThreshold int

	JitterLow  float64
	JitterHigh float64
}

// NewDefaultParams creates a new Params instance with default values.
// The defaults implement the standard contract: ease clamped to [1.3, 2.5],
// first-review intervals of 1/1/3/7 days, a 6-day second review, and a
// promotion track record of 3 good (or 2 easy) repetitions.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,
		MaxEaseFactor: domain.MaxEaseFactor,
		EasePenalty:   0.2,

		FirstReviewIntervals: map[domain.Performance]int{
			domain.PerformanceFailed: 1, // review tomorrow
			domain.PerformanceHard:   1, // review tomorrow
			domain.PerformanceGood:   3, // review in 3 days
			domain.PerformanceEasy:   7, // review in a week
		},

		SecondReviewIntervalDays: 6,

		GoodPromotionThreshold: 3,
		EasyPromotionThreshold: 2,

		FailedMasteryDrop: 2,
		HardMasteryDrop:   1,

		JitterLow:  0.9,
		JitterHigh: 1.1,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.EasePenalty > 0 {
		params.EasePenalty = config.EasePenalty
	}

	if config.FirstReviewFailedInterval > 0 {
		params.FirstReviewIntervals[domain.PerformanceFailed] = config.FirstReviewFailedInterval
	}
	if config.FirstReviewHardInterval > 0 {
		params.FirstReviewIntervals[domain.PerformanceHard] = config.FirstReviewHardInterval
	}
	if config.FirstReviewGoodInterval > 0 {
		params.FirstReviewIntervals[domain.PerformanceGood] = config.FirstReviewGoodInterval
	}
	if config.FirstReviewEasyInterval > 0 {
		params.FirstReviewIntervals[domain.PerformanceEasy] = config.FirstReviewEasyInterval
	}

	if config.SecondReviewIntervalDays > 0 {
		params.SecondReviewIntervalDays = config.SecondReviewIntervalDays
	}

	if config.GoodPromotionThreshold > 0 {
		params.GoodPromotionThreshold = config.GoodPromotionThreshold
	}
	if config.EasyPromotionThreshold > 0 {
		params.EasyPromotionThreshold = config.EasyPromotionThreshold
	}

	if config.JitterLow > 0 {
		params.JitterLow = config.JitterLow
	}
	if config.JitterHigh > 0 {
		params.JitterHigh = config.JitterHigh
	}

	return params
}
