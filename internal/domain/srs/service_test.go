package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
)

func newTestRecord(t *testing.T, now time.Time) *domain.MemoryRecord {
	t.Helper()
	record, err := domain.NewMemoryRecord(uuid.New(), now)
	if err != nil {
		t.Fatalf("NewMemoryRecord failed: %v", err)
	}
	return record
}

func TestCalculateNextReviewValidation(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, FixedJitter(1.0))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := svc.CalculateNextReview(nil, domain.PerformanceGood, now); !errors.Is(err, ErrNilRecord) {
		t.Errorf("expected ErrNilRecord, got %v", err)
	}

	record := newTestRecord(t, now)
	for _, p := range []domain.Performance{-1, 4, 100} {
		if _, err := svc.CalculateNextReview(record, p, now); !errors.Is(err, ErrInvalidPerformance) {
			t.Errorf("performance %d: expected ErrInvalidPerformance, got %v", p, err)
		}
	}
}

func TestCalculateNextReviewFirstReview(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, FixedJitter(1.0))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		performance      domain.Performance
		expectedInterval int
		expectedReps     int
	}{
		{domain.PerformanceFailed, 1, 0},
		{domain.PerformanceHard, 1, 0},
		{domain.PerformanceGood, 3, 1},
		{domain.PerformanceEasy, 7, 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.performance.String(), func(t *testing.T) {
			t.Parallel()
			record := newTestRecord(t, now.AddDate(0, 0, -1))

			updated, err := svc.CalculateNextReview(record, tc.performance, now)
			if err != nil {
				t.Fatalf("CalculateNextReview failed: %v", err)
			}

			if updated.IntervalDays != tc.expectedInterval {
				t.Errorf("IntervalDays = %d, want %d", updated.IntervalDays, tc.expectedInterval)
			}
			if updated.Repetitions != tc.expectedReps {
				t.Errorf("Repetitions = %d, want %d", updated.Repetitions, tc.expectedReps)
			}
			if updated.TotalAttempts != 1 {
				t.Errorf("TotalAttempts = %d, want 1", updated.TotalAttempts)
			}
			if !updated.NextReviewAt.Equal(now.AddDate(0, 0, tc.expectedInterval)) {
				t.Errorf("NextReviewAt = %v, want %v",
					updated.NextReviewAt, now.AddDate(0, 0, tc.expectedInterval))
			}
		})
	}
}

// TestReviewChain walks a realistic sequence of reviews and checks the
// state after each one.
func TestReviewChain(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, FixedJitter(1.0))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record := newTestRecord(t, now)

	steps := []struct {
		performance      domain.Performance
		expectedInterval int
		expectedMastery  domain.MasteryLevel
		expectedReps     int
	}{
		// First review: easy, fixed 7-day interval, no promotion yet.
		{domain.PerformanceEasy, 7, domain.MasteryLearning, 1},
		// Second review: fixed 6 days regardless of ease.
		{domain.PerformanceGood, 6, domain.MasteryLearning, 2},
		// Third review: easy with two prior reps promotes; 6 * 2.5 = 15.
		{domain.PerformanceEasy, 15, domain.MasteryReview, 3},
		// Failure: hard reset.
		{domain.PerformanceFailed, 1, domain.MasteryUnknown, 0},
	}

	for i, step := range steps {
		now = record.NextReviewAt
		updated, err := svc.CalculateNextReview(record, step.performance, now)
		if err != nil {
			t.Fatalf("step %d: CalculateNextReview failed: %v", i, err)
		}

		if updated.IntervalDays != step.expectedInterval {
			t.Errorf("step %d: IntervalDays = %d, want %d", i, updated.IntervalDays, step.expectedInterval)
		}
		if updated.MasteryLevel != step.expectedMastery {
			t.Errorf("step %d: MasteryLevel = %v, want %v", i, updated.MasteryLevel, step.expectedMastery)
		}
		if updated.Repetitions != step.expectedReps {
			t.Errorf("step %d: Repetitions = %d, want %d", i, updated.Repetitions, step.expectedReps)
		}
		if updated.TotalAttempts != i+1 {
			t.Errorf("step %d: TotalAttempts = %d, want %d", i, updated.TotalAttempts, i+1)
		}

		record = updated
	}
}

func TestCalculateNextReviewJitterBounds(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record := &domain.MemoryRecord{
		ConceptID:    uuid.New(),
		MasteryLevel: domain.MasteryReview,
		EaseFactor:   2.5,
		IntervalDays: 10,
		Repetitions:  3,
		NextReviewAt: now,
		CreatedAt:    now.AddDate(0, 0, -30),
		UpdatedAt:    now.AddDate(0, 0, -10),
	}

	// With default uniform jitter the interval must land in
	// [round(10*2.5*0.9), round(10*2.5*1.1)] = [23, 28] (exclusive top).
	svc := NewDefaultService()
	for i := 0; i < 100; i++ {
		updated, err := svc.CalculateNextReview(record, domain.PerformanceGood, now)
		if err != nil {
			t.Fatalf("CalculateNextReview failed: %v", err)
		}
		if updated.IntervalDays < 22 || updated.IntervalDays > 28 {
			t.Fatalf("IntervalDays = %d, want within [22, 28]", updated.IntervalDays)
		}
	}
}

func TestPostponeReview(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, FixedJitter(1.0))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record := newTestRecord(t, now)
	originalNext := record.NextReviewAt

	updated, err := svc.PostponeReview(record, 5, now)
	if err != nil {
		t.Fatalf("PostponeReview failed: %v", err)
	}

	if !updated.NextReviewAt.Equal(originalNext.AddDate(0, 0, 5)) {
		t.Errorf("NextReviewAt = %v, want %v", updated.NextReviewAt, originalNext.AddDate(0, 0, 5))
	}
	if updated.MasteryLevel != record.MasteryLevel {
		t.Errorf("MasteryLevel changed: %v -> %v", record.MasteryLevel, updated.MasteryLevel)
	}
	if updated.EaseFactor != record.EaseFactor {
		t.Errorf("EaseFactor changed: %v -> %v", record.EaseFactor, updated.EaseFactor)
	}
	if updated.IntervalDays != record.IntervalDays {
		t.Errorf("IntervalDays changed: %d -> %d", record.IntervalDays, updated.IntervalDays)
	}
	if updated.TotalAttempts != record.TotalAttempts {
		t.Errorf("TotalAttempts changed: %d -> %d", record.TotalAttempts, updated.TotalAttempts)
	}
}

func TestPostponeReviewValidation(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, FixedJitter(1.0))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := svc.PostponeReview(nil, 3, now); !errors.Is(err, ErrNilRecord) {
		t.Errorf("expected ErrNilRecord, got %v", err)
	}

	record := newTestRecord(t, now)
	for _, days := range []int{0, -1} {
		if _, err := svc.PostponeReview(record, days, now); !errors.Is(err, ErrInvalidDays) {
			t.Errorf("days %d: expected ErrInvalidDays, got %v", days, err)
		}
	}
}

func TestFixedJitter(t *testing.T) {
	t.Parallel()
	jitter := FixedJitter(1.05)
	for i := 0; i < 10; i++ {
		if got := jitter(); got != 1.05 {
			t.Fatalf("FixedJitter() = %v, want 1.05", got)
		}
	}
}

func TestUniformJitterBounds(t *testing.T) {
	t.Parallel()
	jitter := UniformJitter(0.9, 1.1)
	for i := 0; i < 1000; i++ {
		got := jitter()
		if got < 0.9 || got >= 1.1 {
			t.Fatalf("UniformJitter() = %v, want within [0.9, 1.1)", got)
		}
	}
}
