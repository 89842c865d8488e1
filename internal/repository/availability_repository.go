package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/rosterhq/shift-roster/internal/domain"
)

// AvailabilityRepository stores doctors' availability declarations.
type AvailabilityRepository interface {
	Upsert(ctx context.Context, availability *domain.Availability) error
	UpsertBatch(ctx context.Context, availabilities []*domain.Availability) error
	Get(ctx context.Context, userID string, slot domain.Slot) (*domain.Availability, error)
	List(ctx context.Context, filter AvailabilityFilter) ([]domain.Availability, error)
}

// AvailabilityFilter narrows availability listings.
type AvailabilityFilter struct {
	UserID        *string
	Range         domain.DateRange
	AvailableOnly bool
	Page          domain.Page
}

type availabilityRepository struct {
	db DBTX
}

// NewAvailabilityRepository instantiates the repository.
func NewAvailabilityRepository(db DBTX) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

const upsertAvailabilityQuery = `
        INSERT INTO availabilities (user_id, shift_date, shift_type, is_available, notes)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, shift_date, shift_type)
        DO UPDATE SET is_available = EXCLUDED.is_available, notes = EXCLUDED.notes, updated_at = NOW()
        RETURNING id, created_at, updated_at`

func (r *availabilityRepository) Upsert(ctx context.Context, availability *domain.Availability) error {
	return upsertAvailability(ctx, r.db, availability)
}

// UpsertBatch writes every entry in one transaction; any failure rolls back all of them.
func (r *availabilityRepository) UpsertBatch(ctx context.Context, availabilities []*domain.Availability) error {
	if len(availabilities) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin availability batch: %w", err)
	}
	for i, availability := range availabilities {
		if err := upsertAvailability(ctx, tx, availability); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("availability batch entry %d: %w", i, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit availability batch: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func upsertAvailability(ctx context.Context, q queryRower, availability *domain.Availability) error {
	return q.QueryRow(ctx, upsertAvailabilityQuery,
		availability.UserID,
		availability.Date,
		availability.ShiftType,
		availability.IsAvailable,
		availability.Notes,
	).Scan(&availability.ID, &availability.CreatedAt, &availability.UpdatedAt)
}

func (r *availabilityRepository) Get(ctx context.Context, userID string, slot domain.Slot) (*domain.Availability, error) {
	const query = `
        SELECT id, user_id, shift_date, shift_type, is_available, notes, created_at, updated_at
        FROM availabilities WHERE user_id=$1 AND shift_date=$2 AND shift_type=$3`
	return scanAvailability(r.db.QueryRow(ctx, query, userID, slot.Date, slot.Shift))
}

func (r *availabilityRepository) List(ctx context.Context, filter AvailabilityFilter) ([]domain.Availability, error) {
	builder := psql.
		Select("id", "user_id", "shift_date", "shift_type", "is_available", "notes", "created_at", "updated_at").
		From("availabilities")
	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"user_id": *filter.UserID})
	}
	if filter.AvailableOnly {
		builder = builder.Where(sq.Eq{"is_available": true})
	}
	builder = applyDateRange(builder, "shift_date", filter.Range)

	builder = applyPage(builder.OrderBy("shift_date ASC", "shift_type ASC"), filter.Page)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Availability
	for rows.Next() {
		availability, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *availability)
	}
	return result, rows.Err()
}

func scanAvailability(row pgx.Row) (*domain.Availability, error) {
	var availability domain.Availability
	if err := row.Scan(
		&availability.ID,
		&availability.UserID,
		&availability.Date,
		&availability.ShiftType,
		&availability.IsAvailable,
		&availability.Notes,
		&availability.CreatedAt,
		&availability.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &availability, nil
}

func applyDateRange(builder sq.SelectBuilder, column string, rng domain.DateRange) sq.SelectBuilder {
	if rng.From != nil {
		builder = builder.Where(sq.GtOrEq{column: dateOnly(*rng.From)})
	}
	if rng.To != nil {
		builder = builder.Where(sq.LtOrEq{column: dateOnly(*rng.To)})
	}
	return builder
}

func dateOnly(t time.Time) time.Time {
	return domain.TruncateDate(t)
}
