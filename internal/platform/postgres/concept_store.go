package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/platform/logger"
	"github.com/mwelles/retention-api/internal/store"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolationCode = "23503"
	pgUniqueViolationCode     = "23505"
)

// isForeignKeyViolation checks if the given error is a PostgreSQL foreign
// key constraint violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

// PostgresConceptStore implements the store.ConceptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresConceptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresConceptStore creates a new PostgreSQL implementation of the
// ConceptStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewPostgresConceptStore(db store.DBTX, logger *slog.Logger) *PostgresConceptStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresConceptStore{
		db:     db,
		logger: logger.With(slog.String("component", "concept_store")),
	}
}

// Ensure PostgresConceptStore implements store.ConceptStore interface
var _ store.ConceptStore = (*PostgresConceptStore)(nil)

// Create implements store.ConceptStore.Create
// It saves a concept to the database, replacing an existing row with the
// same ID so re-learning material overwrites rather than silently mutating.
func (s *PostgresConceptStore) Create(ctx context.Context, concept *domain.Concept) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := concept.Validate(); err != nil {
		log.Warn("concept validation failed during create",
			slog.String("error", err.Error()),
			slog.String("concept_id", concept.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO concepts (id, content, subject, grade_level, emotional_context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			subject = EXCLUDED.subject,
			grade_level = EXCLUDED.grade_level,
			emotional_context = EXCLUDED.emotional_context
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		concept.ID,
		concept.Content,
		concept.Subject,
		concept.GradeLevel,
		concept.EmotionalContext,
		concept.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create concept",
			slog.String("error", err.Error()),
			slog.String("concept_id", concept.ID.String()),
			slog.String("subject", concept.Subject))
		return err
	}

	log.Info("concept created",
		slog.String("concept_id", concept.ID.String()),
		slog.String("subject", concept.Subject),
		slog.String("grade_level", concept.GradeLevel))
	return nil
}

// GetByID implements store.ConceptStore.GetByID
// It retrieves a concept by its unique ID.
// Returns store.ErrConceptNotFound if the concept does not exist.
func (s *PostgresConceptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Concept, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, content, subject, grade_level, emotional_context, created_at
		FROM concepts
		WHERE id = $1
	`

	var concept domain.Concept
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&concept.ID,
		&concept.Content,
		&concept.Subject,
		&concept.GradeLevel,
		&concept.EmotionalContext,
		&concept.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("concept not found", slog.String("concept_id", id.String()))
			return nil, store.ErrConceptNotFound
		}
		log.Error("failed to get concept by ID",
			slog.String("error", err.Error()),
			slog.String("concept_id", id.String()))
		return nil, err
	}

	return &concept, nil
}

// List implements store.ConceptStore.List
// It retrieves concepts matching the filter in insertion order.
// Returns an empty slice if no concepts match.
func (s *PostgresConceptStore) List(
	ctx context.Context,
	filter store.ConceptFilter,
) ([]*domain.Concept, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, content, subject, grade_level, emotional_context, created_at
		FROM concepts
		WHERE ($1 = '' OR subject = $1)
		  AND ($2 = '' OR grade_level = $2)
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, filter.Subject, filter.GradeLevel)
	if err != nil {
		log.Error("failed to list concepts",
			slog.String("error", err.Error()),
			slog.String("subject", filter.Subject),
			slog.String("grade_level", filter.GradeLevel))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var concepts []*domain.Concept
	for rows.Next() {
		var concept domain.Concept
		err := rows.Scan(
			&concept.ID,
			&concept.Content,
			&concept.Subject,
			&concept.GradeLevel,
			&concept.EmotionalContext,
			&concept.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan concept row",
				slog.String("error", err.Error()))
			return nil, err
		}
		concepts = append(concepts, &concept)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if concepts == nil {
		concepts = []*domain.Concept{}
	}

	return concepts, nil
}

// CountBySubject implements store.ConceptStore.CountBySubject
func (s *PostgresConceptStore) CountBySubject(ctx context.Context) (map[string]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT subject, COUNT(*)
		FROM concepts
		GROUP BY subject
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to count concepts by subject",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var subject string
		var count int
		if err := rows.Scan(&subject, &count); err != nil {
			log.Error("failed to scan subject count row",
				slog.String("error", err.Error()))
			return nil, err
		}
		counts[subject] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// WithTx implements store.ConceptStore.WithTx
// It returns a new ConceptStore that executes against the transaction.
func (s *PostgresConceptStore) WithTx(tx *sql.Tx) store.ConceptStore {
	return &PostgresConceptStore{
		db:     tx,
		logger: s.logger,
	}
}
