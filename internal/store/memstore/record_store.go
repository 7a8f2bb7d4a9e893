package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/store"
)

// MemoryRecordStore is an in-memory implementation of
// store.MemoryRecordStore backed by the given ConceptStore for joins.
type MemoryRecordStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*domain.MemoryRecord
	concepts *ConceptStore
}

// NewMemoryRecordStore creates an empty in-memory record store. The
// concept store is consulted when resolving due concepts and when
// enforcing referential integrity on create.
func NewMemoryRecordStore(concepts *ConceptStore) *MemoryRecordStore {
	return &MemoryRecordStore{
		records:  make(map[uuid.UUID]*domain.MemoryRecord),
		concepts: concepts,
	}
}

var _ store.MemoryRecordStore = (*MemoryRecordStore)(nil)

// Create saves a new memory record. Returns store.ErrDuplicate if a
// record already exists for the concept, or store.ErrInvalidEntity if
// the concept does not exist.
func (s *MemoryRecordStore) Create(ctx context.Context, record *domain.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if _, err := s.concepts.GetByID(ctx, record.ConceptID); err != nil {
		return fmt.Errorf("%w: concept %s does not exist", store.ErrInvalidEntity, record.ConceptID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ConceptID]; exists {
		return fmt.Errorf("%w: memory record for concept %s", store.ErrDuplicate, record.ConceptID)
	}

	r := *record
	s.records[r.ConceptID] = &r
	return nil
}

// Get retrieves the memory record for a concept.
func (s *MemoryRecordStore) Get(ctx context.Context, conceptID uuid.UUID) (*domain.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[conceptID]
	if !ok {
		return nil, store.ErrMemoryRecordNotFound
	}

	r := *record
	return &r, nil
}

// GetForUpdate behaves like Get; the in-memory store relies on
// TxManager's serialization instead of row locks.
func (s *MemoryRecordStore) GetForUpdate(ctx context.Context, conceptID uuid.UUID) (*domain.MemoryRecord, error) {
	return s.Get(ctx, conceptID)
}

// Update persists the scheduling state of an existing record.
func (s *MemoryRecordStore) Update(ctx context.Context, record *domain.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ConceptID]; !ok {
		return store.ErrMemoryRecordNotFound
	}

	r := *record
	s.records[r.ConceptID] = &r
	return nil
}

// Due returns up to limit concepts whose next review is at or before
// asOf, most overdue first. A limit <= 0 applies store.DefaultDueLimit.
func (s *MemoryRecordStore) Due(ctx context.Context, asOf time.Time, limit int) ([]store.DueConcept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := []store.DueConcept{}
	for _, record := range s.records {
		if record.NextReviewAt.After(asOf) {
			continue
		}
		concept, err := s.concepts.GetByID(ctx, record.ConceptID)
		if err != nil {
			return nil, err
		}
		r := *record
		due = append(due, store.DueConcept{Concept: concept, Record: &r})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].Record.NextReviewAt.Equal(due[j].Record.NextReviewAt) {
			return due[i].Record.ConceptID.String() < due[j].Record.ConceptID.String()
		}
		return due[i].Record.NextReviewAt.Before(due[j].Record.NextReviewAt)
	})

	if limit <= 0 {
		limit = store.DefaultDueLimit
	}
	if len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

// Stats aggregates learning statistics across all tracked concepts.
func (s *MemoryRecordStore) Stats(ctx context.Context, asOf time.Time) (*store.LearningStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &store.LearningStats{
		MasteryDistribution: make(map[domain.MasteryLevel]int),
	}

	var masterySum float64
	var rateSum float64
	var rated int
	for _, record := range s.records {
		stats.TotalConcepts++
		if !record.NextReviewAt.After(asOf) {
			stats.DueForReview++
		}
		stats.MasteryDistribution[record.MasteryLevel]++
		masterySum += float64(record.MasteryLevel)
		if record.TotalAttempts > 0 {
			rateSum += float64(record.SuccessStreak) / float64(record.TotalAttempts)
			rated++
		}
	}

	if stats.TotalConcepts > 0 {
		stats.AverageMastery = masterySum / float64(stats.TotalConcepts)
	}
	if rated > 0 {
		stats.AverageSuccessRate = rateSum / float64(rated)
	}

	return stats, nil
}

// WithTx returns the store itself; the in-memory store has no transaction
// support and relies on TxManager's serialization.
func (s *MemoryRecordStore) WithTx(tx *sql.Tx) store.MemoryRecordStore {
	return s
}
