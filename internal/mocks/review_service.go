// Package mocks provides hand-written test doubles for service interfaces.
package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/service/review"
	"github.com/mwelles/retention-api/internal/store"
)

// MockRetentionService is a configurable mock implementation of
// review.RetentionService. Set the function fields to control behavior;
// unset fields return an error.
type MockRetentionService struct {
	CreateConceptFn   func(ctx context.Context, input review.CreateConceptInput) (*review.ConceptDetail, error)
	GetConceptFn      func(ctx context.Context, id uuid.UUID) (*review.ConceptDetail, error)
	ListConceptsFn    func(ctx context.Context, filter store.ConceptFilter) ([]*domain.Concept, error)
	ReviewConceptFn   func(ctx context.Context, id uuid.UUID, performance domain.Performance) (*review.ReviewResult, error)
	PostponeConceptFn func(ctx context.Context, id uuid.UUID, days int) (*domain.MemoryRecord, error)
	DueConceptsFn     func(ctx context.Context, asOf time.Time, limit int) ([]store.DueConcept, error)
	StatsFn           func(ctx context.Context, asOf time.Time) (*review.Stats, error)
}

var _ review.RetentionService = (*MockRetentionService)(nil)

var errNotConfigured = errors.New("mock method not configured")

func (m *MockRetentionService) CreateConcept(ctx context.Context, input review.CreateConceptInput) (*review.ConceptDetail, error) {
	if m.CreateConceptFn != nil {
		return m.CreateConceptFn(ctx, input)
	}
	return nil, errNotConfigured
}

func (m *MockRetentionService) GetConcept(ctx context.Context, id uuid.UUID) (*review.ConceptDetail, error) {
	if m.GetConceptFn != nil {
		return m.GetConceptFn(ctx, id)
	}
	return nil, errNotConfigured
}

func (m *MockRetentionService) ListConcepts(ctx context.Context, filter store.ConceptFilter) ([]*domain.Concept, error) {
	if m.ListConceptsFn != nil {
		return m.ListConceptsFn(ctx, filter)
	}
	return nil, errNotConfigured
}

func (m *MockRetentionService) ReviewConcept(ctx context.Context, id uuid.UUID, performance domain.Performance) (*review.ReviewResult, error) {
	if m.ReviewConceptFn != nil {
		return m.ReviewConceptFn(ctx, id, performance)
	}
	return nil, errNotConfigured
}

func (m *MockRetentionService) PostponeConcept(ctx context.Context, id uuid.UUID, days int) (*domain.MemoryRecord, error) {
	if m.PostponeConceptFn != nil {
		return m.PostponeConceptFn(ctx, id, days)
	}
	return nil, errNotConfigured
}

func (m *MockRetentionService) DueConcepts(ctx context.Context, asOf time.Time, limit int) ([]store.DueConcept, error) {
	if m.DueConceptsFn != nil {
		return m.DueConceptsFn(ctx, asOf, limit)
	}
	return nil, errNotConfigured
}

func (m *MockRetentionService) Stats(ctx context.Context, asOf time.Time) (*review.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, asOf)
	}
	return nil, errNotConfigured
}
