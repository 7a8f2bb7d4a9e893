package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
)

// ConceptFilter narrows List results. Zero-valued fields match everything.
type ConceptFilter struct {
	Subject    string
	GradeLevel string
}

// ConceptStore defines the interface for concept data persistence.
type ConceptStore interface {
	// Create saves a concept, replacing any existing concept with the same
	// ID. It handles domain validation internally and returns validation
	// errors wrapped in ErrInvalidEntity if the data is invalid.
	//
	// Creating a concept does not create its memory record; the service
	// layer coordinates the two inside a transaction.
	Create(ctx context.Context, concept *domain.Concept) error

	// GetByID retrieves a concept by its unique ID.
	// Returns ErrConceptNotFound if the concept does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Concept, error)

	// List retrieves concepts matching the filter, in insertion order.
	// Returns an empty slice when nothing matches.
	List(ctx context.Context, filter ConceptFilter) ([]*domain.Concept, error)

	// CountBySubject returns the number of concepts per subject.
	CountBySubject(ctx context.Context) (map[string]int, error)

	// WithTx returns a new ConceptStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through a TxManager.
	WithTx(tx *sql.Tx) ConceptStore
}
