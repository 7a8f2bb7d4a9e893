package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/domain/srs"
	"github.com/mwelles/retention-api/internal/platform/logger"
	"github.com/mwelles/retention-api/internal/store"
)

// serviceImpl implements the RetentionService interface.
type serviceImpl struct {
	conceptStore store.ConceptStore
	recordStore  store.MemoryRecordStore
	txManager    store.TxManager
	scheduler    srs.Service
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates a new RetentionService. All dependencies are
// required; a nil logger falls back to slog.Default.
func NewService(
	conceptStore store.ConceptStore,
	recordStore store.MemoryRecordStore,
	txManager store.TxManager,
	scheduler srs.Service,
	log *slog.Logger,
) (RetentionService, error) {
	if conceptStore == nil {
		return nil, errors.New("concept store cannot be nil")
	}
	if recordStore == nil {
		return nil, errors.New("memory record store cannot be nil")
	}
	if txManager == nil {
		return nil, errors.New("transaction manager cannot be nil")
	}
	if scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		conceptStore: conceptStore,
		recordStore:  recordStore,
		txManager:    txManager,
		scheduler:    scheduler,
		logger:       log.With(slog.String("component", "retention_service")),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

var _ RetentionService = (*serviceImpl)(nil)

// CreateConcept implements RetentionService.CreateConcept
func (s *serviceImpl) CreateConcept(ctx context.Context, input CreateConceptInput) (*ConceptDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}

	concept, err := domain.NewConcept(input.Content, input.Subject, input.GradeLevel, input.EmotionalContext)
	if err != nil {
		return nil, fmt.Errorf("invalid concept: %w", err)
	}

	record, err := domain.NewMemoryRecord(concept.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("invalid memory record: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		conceptStore := s.conceptStore.WithTx(tx)
		recordStore := s.recordStore.WithTx(tx)

		if err := conceptStore.Create(ctx, concept); err != nil {
			return fmt.Errorf("failed to save concept: %w", err)
		}

		if err := recordStore.Create(ctx, record); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrConceptExists
			}
			return fmt.Errorf("failed to save memory record: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error("failed to create concept",
			slog.String("error", err.Error()),
			slog.String("subject", input.Subject))
		return nil, err
	}

	log.Info("concept created",
		slog.String("concept_id", concept.ID.String()),
		slog.String("subject", concept.Subject),
		slog.Time("next_review_at", record.NextReviewAt))

	return &ConceptDetail{Concept: concept, Record: record}, nil
}

// GetConcept implements RetentionService.GetConcept
func (s *serviceImpl) GetConcept(ctx context.Context, id uuid.UUID) (*ConceptDetail, error) {
	concept, err := s.conceptStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrConceptNotFound
		}
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}

	record, err := s.recordStore.Get(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrConceptNotFound
		}
		return nil, fmt.Errorf("failed to get memory record: %w", err)
	}

	return &ConceptDetail{Concept: concept, Record: record}, nil
}

// ListConcepts implements RetentionService.ListConcepts
func (s *serviceImpl) ListConcepts(ctx context.Context, filter store.ConceptFilter) ([]*domain.Concept, error) {
	concepts, err := s.conceptStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	return concepts, nil
}

// ReviewConcept implements RetentionService.ReviewConcept
// The record is locked, recalculated, and updated inside one transaction
// so concurrent reviews of the same concept cannot interleave.
func (s *serviceImpl) ReviewConcept(ctx context.Context, id uuid.UUID, performance domain.Performance) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !performance.Valid() {
		return nil, ErrInvalidPerformance
	}

	concept, err := s.conceptStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrConceptNotFound
		}
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}

	var updated *domain.MemoryRecord
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		recordStore := s.recordStore.WithTx(tx)

		record, err := recordStore.GetForUpdate(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrConceptNotFound
			}
			return fmt.Errorf("failed to get memory record: %w", err)
		}

		updated, err = s.scheduler.CalculateNextReview(record, performance, s.now())
		if err != nil {
			if errors.Is(err, srs.ErrInvalidPerformance) {
				return ErrInvalidPerformance
			}
			return fmt.Errorf("failed to calculate next review: %w", err)
		}

		if err := recordStore.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update memory record: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error("failed to review concept",
			slog.String("error", err.Error()),
			slog.String("concept_id", id.String()),
			slog.Int("performance", int(performance)))
		return nil, err
	}

	log.Info("concept reviewed",
		slog.String("concept_id", id.String()),
		slog.Int("performance", int(performance)),
		slog.String("mastery_level", updated.MasteryLevel.String()),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Time("next_review_at", updated.NextReviewAt))

	return &ReviewResult{
		Concept: concept,
		Record:  updated,
		Success: performance.Success(),
	}, nil
}

// PostponeConcept implements RetentionService.PostponeConcept
func (s *serviceImpl) PostponeConcept(ctx context.Context, id uuid.UUID, days int) (*domain.MemoryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return nil, ErrInvalidPostponeDays
	}

	var updated *domain.MemoryRecord
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		recordStore := s.recordStore.WithTx(tx)

		record, err := recordStore.GetForUpdate(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrConceptNotFound
			}
			return fmt.Errorf("failed to get memory record: %w", err)
		}

		updated, err = s.scheduler.PostponeReview(record, days, s.now())
		if err != nil {
			if errors.Is(err, srs.ErrInvalidDays) {
				return ErrInvalidPostponeDays
			}
			return fmt.Errorf("failed to postpone review: %w", err)
		}

		if err := recordStore.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update memory record: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error("failed to postpone concept",
			slog.String("error", err.Error()),
			slog.String("concept_id", id.String()),
			slog.Int("days", days))
		return nil, err
	}

	log.Info("concept postponed",
		slog.String("concept_id", id.String()),
		slog.Int("days", days),
		slog.Time("next_review_at", updated.NextReviewAt))

	return updated, nil
}

// DueConcepts implements RetentionService.DueConcepts
func (s *serviceImpl) DueConcepts(ctx context.Context, asOf time.Time, limit int) ([]store.DueConcept, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	due, err := s.recordStore.Due(ctx, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due concepts: %w", err)
	}
	return due, nil
}

// Stats implements RetentionService.Stats
func (s *serviceImpl) Stats(ctx context.Context, asOf time.Time) (*Stats, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	learning, err := s.recordStore.Stats(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning stats: %w", err)
	}

	subjects, err := s.conceptStore.CountBySubject(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count concepts by subject: %w", err)
	}

	return &Stats{
		LearningStats:    *learning,
		SubjectBreakdown: subjects,
	}, nil
}
