package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mwelles/retention-api/internal/domain"
	"github.com/mwelles/retention-api/internal/platform/logger"
	"github.com/mwelles/retention-api/internal/store"
)

// PostgresMemoryRecordStore implements the store.MemoryRecordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMemoryRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemoryRecordStore creates a new PostgreSQL implementation of
// the MemoryRecordStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller. If
// logger is nil, a default logger will be used.
func NewPostgresMemoryRecordStore(db store.DBTX, logger *slog.Logger) *PostgresMemoryRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemoryRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_record_store")),
	}
}

// Ensure PostgresMemoryRecordStore implements store.MemoryRecordStore interface
var _ store.MemoryRecordStore = (*PostgresMemoryRecordStore)(nil)

// Create implements store.MemoryRecordStore.Create
// It saves a new memory record to the database.
// Returns store.ErrDuplicate if a record already exists for the concept,
// or store.ErrInvalidEntity if the concept does not exist.
func (s *PostgresMemoryRecordStore) Create(ctx context.Context, record *domain.MemoryRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("memory record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("concept_id", record.ConceptID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO memory_records (
			concept_id, mastery_level, ease_factor, interval_days,
			repetitions, last_reviewed_at, next_review_at,
			success_streak, total_attempts, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ConceptID,
		int(record.MasteryLevel),
		record.EaseFactor,
		record.IntervalDays,
		record.Repetitions,
		nullableTime(record.LastReviewedAt),
		record.NextReviewAt,
		record.SuccessStreak,
		record.TotalAttempts,
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("memory record already exists",
				slog.String("concept_id", record.ConceptID.String()))
			return fmt.Errorf("%w: memory record for concept %s", store.ErrDuplicate, record.ConceptID)
		}
		if isForeignKeyViolation(err) {
			log.Warn("referenced concept does not exist",
				slog.String("concept_id", record.ConceptID.String()))
			return fmt.Errorf("%w: concept %s does not exist", store.ErrInvalidEntity, record.ConceptID)
		}
		log.Error("failed to create memory record",
			slog.String("error", err.Error()),
			slog.String("concept_id", record.ConceptID.String()))
		return err
	}

	log.Debug("memory record created",
		slog.String("concept_id", record.ConceptID.String()),
		slog.String("mastery_level", record.MasteryLevel.String()))
	return nil
}

// Get implements store.MemoryRecordStore.Get
// Returns store.ErrMemoryRecordNotFound if no record exists for the concept.
func (s *PostgresMemoryRecordStore) Get(ctx context.Context, conceptID uuid.UUID) (*domain.MemoryRecord, error) {
	return s.get(ctx, conceptID, false)
}

// GetForUpdate implements store.MemoryRecordStore.GetForUpdate
// It retrieves a memory record and locks the row for the duration of the
// enclosing transaction. Must be called within a transaction to be
// effective.
func (s *PostgresMemoryRecordStore) GetForUpdate(ctx context.Context, conceptID uuid.UUID) (*domain.MemoryRecord, error) {
	return s.get(ctx, conceptID, true)
}

func (s *PostgresMemoryRecordStore) get(ctx context.Context, conceptID uuid.UUID, forUpdate bool) (*domain.MemoryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT concept_id, mastery_level, ease_factor, interval_days,
		       repetitions, last_reviewed_at, next_review_at,
		       success_streak, total_attempts, created_at, updated_at
		FROM memory_records
		WHERE concept_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, conceptID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memory record not found",
				slog.String("concept_id", conceptID.String()))
			return nil, store.ErrMemoryRecordNotFound
		}
		log.Error("failed to get memory record",
			slog.String("error", err.Error()),
			slog.String("concept_id", conceptID.String()))
		return nil, err
	}

	return record, nil
}

// Update implements store.MemoryRecordStore.Update
// It persists the scheduling state of an existing memory record.
// Returns store.ErrMemoryRecordNotFound if no record exists for the concept.
func (s *PostgresMemoryRecordStore) Update(ctx context.Context, record *domain.MemoryRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("memory record validation failed during update",
			slog.String("error", err.Error()),
			slog.String("concept_id", record.ConceptID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE memory_records
		SET mastery_level = $2,
		    ease_factor = $3,
		    interval_days = $4,
		    repetitions = $5,
		    last_reviewed_at = $6,
		    next_review_at = $7,
		    success_streak = $8,
		    total_attempts = $9,
		    updated_at = $10
		WHERE concept_id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		record.ConceptID,
		int(record.MasteryLevel),
		record.EaseFactor,
		record.IntervalDays,
		record.Repetitions,
		nullableTime(record.LastReviewedAt),
		record.NextReviewAt,
		record.SuccessStreak,
		record.TotalAttempts,
		record.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to update memory record",
			slog.String("error", err.Error()),
			slog.String("concept_id", record.ConceptID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("concept_id", record.ConceptID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("memory record not found during update",
			slog.String("concept_id", record.ConceptID.String()))
		return store.ErrMemoryRecordNotFound
	}

	log.Debug("memory record updated",
		slog.String("concept_id", record.ConceptID.String()),
		slog.String("mastery_level", record.MasteryLevel.String()),
		slog.Int("interval_days", record.IntervalDays))
	return nil
}

// Due implements store.MemoryRecordStore.Due
// It returns the concepts whose next review is at or before asOf, most
// overdue first. A non-positive limit falls back to a server-side default.
func (s *PostgresMemoryRecordStore) Due(ctx context.Context, asOf time.Time, limit int) ([]store.DueConcept, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = store.DefaultDueLimit
	}

	query := `
		SELECT c.id, c.content, c.subject, c.grade_level, c.emotional_context, c.created_at,
		       r.concept_id, r.mastery_level, r.ease_factor, r.interval_days,
		       r.repetitions, r.last_reviewed_at, r.next_review_at,
		       r.success_streak, r.total_attempts, r.created_at, r.updated_at
		FROM memory_records r
		JOIN concepts c ON c.id = r.concept_id
		WHERE r.next_review_at <= $1
		ORDER BY r.next_review_at ASC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, asOf, limit)
	if err != nil {
		log.Error("failed to query due concepts",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var due []store.DueConcept
	for rows.Next() {
		var concept domain.Concept
		var record domain.MemoryRecord
		var masteryLevel int
		var lastReviewed sql.NullTime

		err := rows.Scan(
			&concept.ID,
			&concept.Content,
			&concept.Subject,
			&concept.GradeLevel,
			&concept.EmotionalContext,
			&concept.CreatedAt,
			&record.ConceptID,
			&masteryLevel,
			&record.EaseFactor,
			&record.IntervalDays,
			&record.Repetitions,
			&lastReviewed,
			&record.NextReviewAt,
			&record.SuccessStreak,
			&record.TotalAttempts,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan due concept row",
				slog.String("error", err.Error()))
			return nil, err
		}

		record.MasteryLevel = domain.MasteryLevel(masteryLevel)
		if lastReviewed.Valid {
			record.LastReviewedAt = lastReviewed.Time
		}

		due = append(due, store.DueConcept{
			Concept: &concept,
			Record:  &record,
		})
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning due concept rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if due == nil {
		due = []store.DueConcept{}
	}

	return due, nil
}

// Stats implements store.MemoryRecordStore.Stats
// It aggregates the learning statistics for every tracked concept as of
// the given time.
func (s *PostgresMemoryRecordStore) Stats(ctx context.Context, asOf time.Time) (*store.LearningStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats := &store.LearningStats{
		MasteryDistribution: make(map[domain.MasteryLevel]int),
	}

	summaryQuery := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE next_review_at <= $1),
		       COALESCE(AVG(mastery_level), 0),
		       COALESCE(AVG(
		           CASE WHEN total_attempts > 0
		                THEN success_streak::float / total_attempts::float
		           END
		       ), 0)
		FROM memory_records
	`
	err := s.db.QueryRowContext(ctx, summaryQuery, asOf).Scan(
		&stats.TotalConcepts,
		&stats.DueForReview,
		&stats.AverageMastery,
		&stats.AverageSuccessRate,
	)
	if err != nil {
		log.Error("failed to query learning stats summary",
			slog.String("error", err.Error()))
		return nil, err
	}

	histogramQuery := `
		SELECT mastery_level, COUNT(*)
		FROM memory_records
		GROUP BY mastery_level
	`
	rows, err := s.db.QueryContext(ctx, histogramQuery)
	if err != nil {
		log.Error("failed to query mastery distribution",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			log.Error("failed to scan mastery distribution row",
				slog.String("error", err.Error()))
			return nil, err
		}
		stats.MasteryDistribution[domain.MasteryLevel(level)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// WithTx implements store.MemoryRecordStore.WithTx
// It returns a new MemoryRecordStore that executes against the transaction.
func (s *PostgresMemoryRecordStore) WithTx(tx *sql.Tx) store.MemoryRecordStore {
	return &PostgresMemoryRecordStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.MemoryRecord, error) {
	var record domain.MemoryRecord
	var masteryLevel int
	var lastReviewed sql.NullTime

	err := row.Scan(
		&record.ConceptID,
		&masteryLevel,
		&record.EaseFactor,
		&record.IntervalDays,
		&record.Repetitions,
		&lastReviewed,
		&record.NextReviewAt,
		&record.SuccessStreak,
		&record.TotalAttempts,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.MasteryLevel = domain.MasteryLevel(masteryLevel)
	if lastReviewed.Valid {
		record.LastReviewedAt = lastReviewed.Time
	}

	return &record, nil
}

func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
