package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
)

// DefaultDueLimit caps the number of due concepts returned when the caller
// does not supply a positive limit.
const DefaultDueLimit = 100

// DueConcept pairs a concept with its scheduling state in due-query results.
type DueConcept struct {
	Concept *domain.Concept
	Record  *domain.MemoryRecord
}

// LearningStats aggregates scheduling state across all memory records.
// The values are informational; they never feed back into scheduling.
type LearningStats struct {
	TotalConcepts       int
	DueForReview        int
	MasteryDistribution map[domain.MasteryLevel]int
	AverageMastery      float64
	AverageSuccessRate  float64
}

// MemoryRecordStore defines the interface for memory record persistence.
type MemoryRecordStore interface {
	// Create saves a new memory record. It handles domain validation
	// internally. Returns ErrDuplicate if a record already exists for the
	// concept and ErrInvalidEntity if the concept does not exist.
	Create(ctx context.Context, record *domain.MemoryRecord) error

	// Get retrieves the memory record for a concept.
	// Returns ErrMemoryRecordNotFound if no record exists.
	// This method does NOT lock the row; use GetForUpdate inside a
	// transaction when the record will be modified.
	Get(ctx context.Context, conceptID uuid.UUID) (*domain.MemoryRecord, error)

	// GetForUpdate retrieves the memory record with a row-level lock using
	// SELECT FOR UPDATE, protecting review updates from concurrent
	// modification. Must be called within a transaction.
	// Returns ErrMemoryRecordNotFound if no record exists.
	GetForUpdate(ctx context.Context, conceptID uuid.UUID) (*domain.MemoryRecord, error)

	// Update modifies an existing memory record identified by its concept
	// ID. Returns ErrMemoryRecordNotFound if no record exists.
	Update(ctx context.Context, record *domain.MemoryRecord) error

	// Due retrieves concepts whose next review is at or before asOf,
	// oldest-due first, truncated to limit. A limit <= 0 applies
	// DefaultDueLimit. Read-only; an empty result is valid.
	Due(ctx context.Context, asOf time.Time, limit int) ([]DueConcept, error)

	// Stats aggregates learning statistics as of the given time.
	Stats(ctx context.Context, asOf time.Time) (*LearningStats, error)

	// WithTx returns a new MemoryRecordStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) MemoryRecordStore
}
