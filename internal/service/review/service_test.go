package review

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/domain/srs"
	"github.com/mwelles/retention-api/internal/store/memstore"
)

// testEnv wires the service over in-memory stores with a fixed clock and
// no interval jitter so scheduling outcomes are exact.
type testEnv struct {
	service  *serviceImpl
	concepts *memstore.ConceptStore
	records  *memstore.MemoryRecordStore
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	concepts := memstore.NewConceptStore()
	records := memstore.NewMemoryRecordStore(concepts)
	scheduler := srs.NewService(nil, srs.FixedJitter(1.0))

	svc, err := NewService(concepts, records, memstore.NewTxManager(), scheduler, slog.Default())
	require.NoError(t, err)

	env := &testEnv{
		service:  svc.(*serviceImpl),
		concepts: concepts,
		records:  records,
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.service.now = func() time.Time { return env.now }
	return env
}

// advance moves the test clock forward by the given number of days.
func (e *testEnv) advance(days int) {
	e.now = e.now.AddDate(0, 0, days)
}

func TestNewServiceValidation(t *testing.T) {
	concepts := memstore.NewConceptStore()
	records := memstore.NewMemoryRecordStore(concepts)
	tx := memstore.NewTxManager()
	scheduler := srs.NewDefaultService()

	testCases := []struct {
		name string
		fn   func() (RetentionService, error)
	}{
		{"nil concept store", func() (RetentionService, error) {
			return NewService(nil, records, tx, scheduler, nil)
		}},
		{"nil record store", func() (RetentionService, error) {
			return NewService(concepts, nil, tx, scheduler, nil)
		}},
		{"nil tx manager", func() (RetentionService, error) {
			return NewService(concepts, records, nil, scheduler, nil)
		}},
		{"nil scheduler", func() (RetentionService, error) {
			return NewService(concepts, records, tx, nil, nil)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := tc.fn()
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}

	svc, err := NewService(concepts, records, tx, scheduler, nil)
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateConcept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{
		Content:    "2 + 2 = 4",
		Subject:    "math",
		GradeLevel: "first",
	})
	require.NoError(t, err)

	assert.Equal(t, "2 + 2 = 4", detail.Concept.Content)
	assert.Equal(t, "math", detail.Concept.Subject)
	assert.Equal(t, domain.DefaultEmotionalContext, detail.Concept.EmotionalContext)

	record := detail.Record
	assert.Equal(t, domain.MasteryLearning, record.MasteryLevel)
	assert.Equal(t, domain.DefaultEaseFactor, record.EaseFactor)
	assert.Equal(t, 1, record.IntervalDays)
	assert.Equal(t, 0, record.Repetitions)
	assert.True(t, record.LastReviewedAt.IsZero())
	assert.Equal(t, env.now.AddDate(0, 0, 1), record.NextReviewAt)

	// Both rows must be retrievable afterwards.
	got, err := env.service.GetConcept(ctx, detail.Concept.ID)
	require.NoError(t, err)
	assert.Equal(t, detail.Concept.ID, got.Concept.ID)
}

func TestCreateConceptAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)

	detail, err := env.service.CreateConcept(context.Background(), CreateConceptInput{
		Content: "the sun rises in the east",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSubject, detail.Concept.Subject)
	assert.Equal(t, domain.DefaultGradeLevel, detail.Concept.GradeLevel)
}

func TestCreateConceptEmptyContent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateConcept(context.Background(), CreateConceptInput{
		Content: "   ",
	})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestGetConceptNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetConcept(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrConceptNotFound)
}

func TestReviewConceptFirstReviewEasy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)

	env.advance(1)
	result, err := env.service.ReviewConcept(ctx, detail.Concept.ID, domain.PerformanceEasy)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 7, result.Record.IntervalDays)
	assert.Equal(t, domain.MasteryLearning, result.Record.MasteryLevel)
	assert.Equal(t, 1, result.Record.Repetitions)
	assert.Equal(t, 1, result.Record.SuccessStreak)
	assert.Equal(t, 1, result.Record.TotalAttempts)
	assert.Equal(t, env.now, result.Record.LastReviewedAt)
	assert.Equal(t, env.now.AddDate(0, 0, 7), result.Record.NextReviewAt)
}

func TestReviewConceptSecondReviewFixedInterval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)
	id := detail.Concept.ID

	env.advance(1)
	_, err = env.service.ReviewConcept(ctx, id, domain.PerformanceEasy)
	require.NoError(t, err)

	env.advance(7)
	result, err := env.service.ReviewConcept(ctx, id, domain.PerformanceGood)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Record.IntervalDays)
	assert.Equal(t, 2, result.Record.Repetitions)
}

func TestReviewConceptThirdReviewPromotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)
	id := detail.Concept.ID

	env.advance(1)
	_, err = env.service.ReviewConcept(ctx, id, domain.PerformanceEasy)
	require.NoError(t, err)
	env.advance(7)
	_, err = env.service.ReviewConcept(ctx, id, domain.PerformanceGood)
	require.NoError(t, err)

	env.advance(6)
	result, err := env.service.ReviewConcept(ctx, id, domain.PerformanceEasy)
	require.NoError(t, err)

	// Two prior successful reviews meet the promotion threshold for easy.
	assert.Equal(t, domain.MasteryReview, result.Record.MasteryLevel)
	// Ease stays pinned at the maximum through this chain, so the interval
	// is round(6 * 2.5) with no jitter.
	assert.Equal(t, 15, result.Record.IntervalDays)
	assert.Equal(t, 3, result.Record.Repetitions)
}

func TestReviewConceptFailureResets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)
	id := detail.Concept.ID

	for _, p := range []domain.Performance{domain.PerformanceEasy, domain.PerformanceGood, domain.PerformanceEasy} {
		env.advance(1)
		_, err = env.service.ReviewConcept(ctx, id, p)
		require.NoError(t, err)
	}

	env.advance(1)
	result, err := env.service.ReviewConcept(ctx, id, domain.PerformanceFailed)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, domain.MasteryUnknown, result.Record.MasteryLevel)
	assert.Equal(t, 1, result.Record.IntervalDays)
	assert.Equal(t, 0, result.Record.Repetitions)
	assert.Equal(t, 0, result.Record.SuccessStreak)
	assert.Equal(t, 4, result.Record.TotalAttempts)
	assert.InDelta(t, 2.3, result.Record.EaseFactor, 1e-9)
	assert.Equal(t, env.now.AddDate(0, 0, 1), result.Record.NextReviewAt)
}

func TestReviewConceptInvalidPerformance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)

	_, err = env.service.ReviewConcept(ctx, detail.Concept.ID, domain.Performance(4))
	assert.ErrorIs(t, err, ErrInvalidPerformance)

	_, err = env.service.ReviewConcept(ctx, detail.Concept.ID, domain.Performance(-1))
	assert.ErrorIs(t, err, ErrInvalidPerformance)

	// The record must be untouched after rejected reviews.
	got, err := env.service.GetConcept(ctx, detail.Concept.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Record.TotalAttempts)
}

func TestReviewConceptNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ReviewConcept(context.Background(), uuid.New(), domain.PerformanceGood)
	assert.ErrorIs(t, err, ErrConceptNotFound)
}

func TestPostponeConcept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)
	originalNext := detail.Record.NextReviewAt

	record, err := env.service.PostponeConcept(ctx, detail.Concept.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, originalNext.AddDate(0, 0, 3), record.NextReviewAt)
	assert.Equal(t, detail.Record.MasteryLevel, record.MasteryLevel)
	assert.Equal(t, detail.Record.EaseFactor, record.EaseFactor)
	assert.Equal(t, detail.Record.IntervalDays, record.IntervalDays)
	assert.Equal(t, detail.Record.TotalAttempts, record.TotalAttempts)
}

func TestPostponeConceptInvalidDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "water freezes at 0C"})
	require.NoError(t, err)

	for _, days := range []int{0, -1} {
		_, err = env.service.PostponeConcept(ctx, detail.Concept.ID, days)
		assert.ErrorIs(t, err, ErrInvalidPostponeDays)
	}
}

func TestDueConceptsLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Ten concepts created on successive days; after ten more days all are
	// overdue with distinct next_review times.
	var ids []uuid.UUID
	for i := 0; i < 10; i++ {
		detail, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "fact"})
		require.NoError(t, err)
		ids = append(ids, detail.Concept.ID)
		env.advance(1)
	}
	env.advance(10)

	due, err := env.service.DueConcepts(ctx, env.now, 5)
	require.NoError(t, err)
	require.Len(t, due, 5)

	// The five oldest-due concepts come back, most overdue first.
	for i, d := range due {
		assert.Equal(t, ids[i], d.Record.ConceptID)
	}
}

func TestDueConceptsExcludesFuture(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "fact"})
	require.NoError(t, err)

	// Next review falls one day out; nothing is due yet.
	due, err := env.service.DueConcepts(ctx, env.now, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	env.advance(1)
	due, err = env.service.DueConcepts(ctx, env.now, 0)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.CreateConcept(ctx, CreateConceptInput{Content: "fact", Subject: "science"})
	require.NoError(t, err)
	_, err = env.service.CreateConcept(ctx, CreateConceptInput{Content: "fact", Subject: "math"})
	require.NoError(t, err)

	env.advance(1)
	_, err = env.service.ReviewConcept(ctx, first.Concept.ID, domain.PerformanceGood)
	require.NoError(t, err)

	stats, err := env.service.Stats(ctx, env.now)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalConcepts)
	assert.Equal(t, 1, stats.DueForReview)
	assert.Equal(t, 2, stats.MasteryDistribution[domain.MasteryLearning])
	assert.InDelta(t, 1.0, stats.AverageMastery, 1e-9)
	assert.InDelta(t, 1.0, stats.AverageSuccessRate, 1e-9)
	assert.Equal(t, map[string]int{"science": 1, "math": 1}, stats.SubjectBreakdown)
}
