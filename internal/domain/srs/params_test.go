package srs

import (
	"testing"

	"github.com/mwelles/retention-api/internal/domain"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	if params.MinEaseFactor != domain.MinEaseFactor {
		t.Errorf("MinEaseFactor = %v, want %v", params.MinEaseFactor, domain.MinEaseFactor)
	}
	if params.MaxEaseFactor != domain.MaxEaseFactor {
		t.Errorf("MaxEaseFactor = %v, want %v", params.MaxEaseFactor, domain.MaxEaseFactor)
	}
	if params.EasePenalty != 0.2 {
		t.Errorf("EasePenalty = %v, want 0.2", params.EasePenalty)
	}

	expectedIntervals := map[domain.Performance]int{
		domain.PerformanceFailed: 1,
		domain.PerformanceHard:   1,
		domain.PerformanceGood:   3,
		domain.PerformanceEasy:   7,
	}
	for p, want := range expectedIntervals {
		if got := params.FirstReviewIntervals[p]; got != want {
			t.Errorf("FirstReviewIntervals[%v] = %d, want %d", p, got, want)
		}
	}

	if params.SecondReviewIntervalDays != 6 {
		t.Errorf("SecondReviewIntervalDays = %d, want 6", params.SecondReviewIntervalDays)
	}
	if params.GoodPromotionThreshold != 3 {
		t.Errorf("GoodPromotionThreshold = %d, want 3", params.GoodPromotionThreshold)
	}
	if params.EasyPromotionThreshold != 2 {
		t.Errorf("EasyPromotionThreshold = %d, want 2", params.EasyPromotionThreshold)
	}
	if params.JitterLow != 0.9 || params.JitterHigh != 1.1 {
		t.Errorf("jitter bounds = [%v, %v], want [0.9, 1.1]", params.JitterLow, params.JitterHigh)
	}
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()
	params := NewParams(ParamsConfig{
		MinEaseFactor:           1.5,
		FirstReviewEasyInterval: 10,
		GoodPromotionThreshold:  4,
		JitterLow:               0.95,
	})

	if params.MinEaseFactor != 1.5 {
		t.Errorf("MinEaseFactor = %v, want 1.5", params.MinEaseFactor)
	}
	if params.FirstReviewIntervals[domain.PerformanceEasy] != 10 {
		t.Errorf("FirstReviewIntervals[easy] = %d, want 10",
			params.FirstReviewIntervals[domain.PerformanceEasy])
	}
	if params.GoodPromotionThreshold != 4 {
		t.Errorf("GoodPromotionThreshold = %d, want 4", params.GoodPromotionThreshold)
	}
	if params.JitterLow != 0.95 {
		t.Errorf("JitterLow = %v, want 0.95", params.JitterLow)
	}

	// Untouched settings keep their defaults.
	if params.MaxEaseFactor != domain.MaxEaseFactor {
		t.Errorf("MaxEaseFactor = %v, want %v", params.MaxEaseFactor, domain.MaxEaseFactor)
	}
	if params.SecondReviewIntervalDays != 6 {
		t.Errorf("SecondReviewIntervalDays = %d, want 6", params.SecondReviewIntervalDays)
	}
}

func TestNewParamsZeroConfigMatchesDefaults(t *testing.T) {
	t.Parallel()
	params := NewParams(ParamsConfig{})
	defaults := NewDefaultParams()

	if params.MinEaseFactor != defaults.MinEaseFactor ||
		params.MaxEaseFactor != defaults.MaxEaseFactor ||
		params.EasePenalty != defaults.EasePenalty ||
		params.SecondReviewIntervalDays != defaults.SecondReviewIntervalDays ||
		params.GoodPromotionThreshold != defaults.GoodPromotionThreshold ||
		params.EasyPromotionThreshold != defaults.EasyPromotionThreshold {
		t.Error("NewParams(ParamsConfig{}) should match NewDefaultParams()")
	}
}
