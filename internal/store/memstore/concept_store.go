package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/store"
)

// ConceptStore is an in-memory implementation of store.ConceptStore.
// The zero value is not usable; construct with NewConceptStore.
type ConceptStore struct {
	mu       sync.RWMutex
	concepts map[uuid.UUID]*domain.Concept
}

// NewConceptStore creates an empty in-memory concept store.
func NewConceptStore() *ConceptStore {
	return &ConceptStore{
		concepts: make(map[uuid.UUID]*domain.Concept),
	}
}

var _ store.ConceptStore = (*ConceptStore)(nil)

// Create saves a concept, replacing any existing concept with the same ID.
func (s *ConceptStore) Create(ctx context.Context, concept *domain.Concept) error {
	if err := concept.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *concept
	s.concepts[c.ID] = &c
	return nil
}

// GetByID retrieves a concept by ID, returning store.ErrConceptNotFound
// when no concept exists.
func (s *ConceptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concept, ok := s.concepts[id]
	if !ok {
		return nil, store.ErrConceptNotFound
	}

	c := *concept
	return &c, nil
}

// List returns the concepts matching the filter, ordered by creation time.
func (s *ConceptStore) List(ctx context.Context, filter store.ConceptFilter) ([]*domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concepts := []*domain.Concept{}
	for _, concept := range s.concepts {
		if filter.Subject != "" && concept.Subject != filter.Subject {
			continue
		}
		if filter.GradeLevel != "" && concept.GradeLevel != filter.GradeLevel {
			continue
		}
		c := *concept
		concepts = append(concepts, &c)
	}

	sort.Slice(concepts, func(i, j int) bool {
		if concepts[i].CreatedAt.Equal(concepts[j].CreatedAt) {
			return concepts[i].ID.String() < concepts[j].ID.String()
		}
		return concepts[i].CreatedAt.Before(concepts[j].CreatedAt)
	})

	return concepts, nil
}

// CountBySubject returns the number of concepts per subject.
func (s *ConceptStore) CountBySubject(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, concept := range s.concepts {
		counts[concept.Subject]++
	}
	return counts, nil
}

// WithTx returns the store itself; the in-memory store has no transaction
// support and relies on TxManager's serialization.
func (s *ConceptStore) WithTx(tx *sql.Tx) store.ConceptStore {
	return s
}
