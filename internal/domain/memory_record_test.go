package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMasteryLevelString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		level    MasteryLevel
		expected string
	}{
		{MasteryUnknown, "unknown"},
		{MasteryLearning, "learning"},
		{MasteryReview, "review"},
		{MasteryFamiliar, "familiar"},
		{MasteryKnown, "known"},
		{MasteryMastered, "mastered"},
		{MasteryLevel(9), "mastery(9)"},
	}

	for _, tc := range testCases {
		if got := tc.level.String(); got != tc.expected {
			t.Errorf("MasteryLevel(%d).String() = %q, want %q", int(tc.level), got, tc.expected)
		}
	}
}

func TestMasteryLevelValid(t *testing.T) {
	t.Parallel()

	for level := MinMasteryLevel; level <= MaxMasteryLevel; level++ {
		if !level.Valid() {
			t.Errorf("MasteryLevel(%d).Valid() = false, want true", int(level))
		}
	}
	for _, level := range []MasteryLevel{-1, 6, 100} {
		if level.Valid() {
			t.Errorf("MasteryLevel(%d).Valid() = true, want false", int(level))
		}
	}
}

func TestPerformanceSuccess(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		performance Performance
		success     bool
	}{
		{PerformanceFailed, false},
		{PerformanceHard, false},
		{PerformanceGood, true},
		{PerformanceEasy, true},
	}

	for _, tc := range testCases {
		if got := tc.performance.Success(); got != tc.success {
			t.Errorf("Performance(%v).Success() = %v, want %v", tc.performance, got, tc.success)
		}
	}
}

func TestPerformanceValid(t *testing.T) {
	t.Parallel()

	for p := PerformanceFailed; p <= PerformanceEasy; p++ {
		if !p.Valid() {
			t.Errorf("Performance(%d).Valid() = false, want true", int(p))
		}
	}
	for _, p := range []Performance{-1, 4} {
		if p.Valid() {
			t.Errorf("Performance(%d).Valid() = true, want false", int(p))
		}
	}
}

func TestNewMemoryRecord(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conceptID := uuid.New()

	record, err := NewMemoryRecord(conceptID, now)
	if err != nil {
		t.Fatalf("NewMemoryRecord failed: %v", err)
	}

	if record.ConceptID != conceptID {
		t.Errorf("ConceptID = %v, want %v", record.ConceptID, conceptID)
	}
	if record.MasteryLevel != MasteryLearning {
		t.Errorf("MasteryLevel = %v, want %v", record.MasteryLevel, MasteryLearning)
	}
	if record.EaseFactor != DefaultEaseFactor {
		t.Errorf("EaseFactor = %v, want %v", record.EaseFactor, DefaultEaseFactor)
	}
	if record.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", record.IntervalDays)
	}
	if !record.LastReviewedAt.IsZero() {
		t.Errorf("LastReviewedAt = %v, want zero", record.LastReviewedAt)
	}
	if !record.NextReviewAt.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("NextReviewAt = %v, want %v", record.NextReviewAt, now.AddDate(0, 0, 1))
	}
	if record.Repetitions != 0 || record.SuccessStreak != 0 || record.TotalAttempts != 0 {
		t.Error("expected all counters to start at zero")
	}
}

func TestNewMemoryRecordNilConceptID(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryRecord(uuid.Nil, time.Now().UTC())
	if !errors.Is(err, ErrEmptyRecordConceptID) {
		t.Errorf("expected ErrEmptyRecordConceptID, got %v", err)
	}
}

func TestMemoryRecordValidate(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	valid := MemoryRecord{
		ConceptID:    uuid.New(),
		MasteryLevel: MasteryLearning,
		EaseFactor:   2.5,
		IntervalDays: 1,
		NextReviewAt: now.AddDate(0, 0, 1),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	testCases := []struct {
		name     string
		mutate   func(r *MemoryRecord)
		expected error
	}{
		{"valid", func(r *MemoryRecord) {}, nil},
		{"nil concept ID", func(r *MemoryRecord) { r.ConceptID = uuid.Nil }, ErrEmptyRecordConceptID},
		{"mastery too high", func(r *MemoryRecord) { r.MasteryLevel = 6 }, ErrInvalidMasteryLevel},
		{"mastery negative", func(r *MemoryRecord) { r.MasteryLevel = -1 }, ErrInvalidMasteryLevel},
		{"ease too low", func(r *MemoryRecord) { r.EaseFactor = 1.0 }, ErrInvalidEaseFactor},
		{"interval zero", func(r *MemoryRecord) { r.IntervalDays = 0 }, ErrInvalidInterval},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			record := valid
			tc.mutate(&record)

			err := record.Validate()
			if tc.expected == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("Validate() = %v, want %v", err, tc.expected)
			}
		})
	}
}
