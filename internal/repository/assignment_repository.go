package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/rosterhq/shift-roster/internal/domain"
)

// activeSlotConstraint is the partial unique index guarding one active
// assignment per (shift_date, shift_type).
const activeSlotConstraint = "assignments_active_slot_key"

// AssignmentRepository encapsulates shift assignment persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	// UpdateFrom persists assignment only if its stored status still equals
	// expected; otherwise it returns ErrStaleWrite.
	UpdateFrom(ctx context.Context, assignment *domain.Assignment, expected domain.AssignmentStatus) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	GetActiveBySlot(ctx context.Context, slot domain.Slot) (*domain.Assignment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AssignmentFilter) ([]domain.AssignmentView, error)
}

// AssignmentFilter narrows roster listings.
type AssignmentFilter struct {
	UserID   *string
	Range    domain.DateRange
	Statuses []domain.AssignmentStatus
	Page     domain.Page
}

type assignmentRepository struct {
	db DBTX
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (user_id, shift_date, shift_type, status, assigned_by, notes)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		assignment.UserID,
		assignment.Date,
		assignment.ShiftType,
		assignment.Status,
		assignment.AssignedBy,
		assignment.Notes,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if isUniqueViolation(err, activeSlotConstraint) {
		return ErrSlotTaken
	}
	return err
}

func (r *assignmentRepository) UpdateFrom(ctx context.Context, assignment *domain.Assignment, expected domain.AssignmentStatus) error {
	const query = `
        UPDATE assignments SET user_id=$1, status=$2, notes=$3, updated_at=NOW()
        WHERE id=$4 AND status=$5
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		assignment.UserID,
		assignment.Status,
		assignment.Notes,
		assignment.ID,
		expected,
	).Scan(&assignment.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, activeSlotConstraint):
		return ErrSlotTaken
	case errors.Is(err, pgx.ErrNoRows):
		return ErrStaleWrite
	default:
		return err
	}
}

const assignmentColumns = `id, user_id, shift_date, shift_type, status, assigned_by, notes, created_at, updated_at`

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id=$1`
	return scanAssignment(r.db.QueryRow(ctx, query, id))
}

func (r *assignmentRepository) GetActiveBySlot(ctx context.Context, slot domain.Slot) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
        WHERE shift_date=$1 AND shift_type=$2 AND status <> 'cancelled'`
	return scanAssignment(r.db.QueryRow(ctx, query, slot.Date, slot.Shift))
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM assignments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]domain.AssignmentView, error) {
	builder := psql.
		Select(
			"a.id", "a.user_id", "a.shift_date", "a.shift_type", "a.status", "a.assigned_by", "a.notes",
			"a.created_at", "a.updated_at",
			"u.first_name", "u.last_name", "u.email",
			"b.first_name", "b.last_name", "b.email",
		).
		From("assignments a").
		Join("users u ON u.id = a.user_id").
		Join("users b ON b.id = a.assigned_by")
	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"a.user_id": *filter.UserID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		builder = builder.Where(sq.Eq{"a.status": statuses})
	}
	builder = applyDateRange(builder, "a.shift_date", filter.Range)

	builder = applyPage(builder.OrderBy("a.shift_date ASC", "a.shift_type ASC", "a.created_at ASC"), filter.Page)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentView
	for rows.Next() {
		var view domain.AssignmentView
		doctor := domain.UserSummary{}
		assigner := domain.UserSummary{}
		if err := rows.Scan(
			&view.ID,
			&view.UserID,
			&view.Date,
			&view.ShiftType,
			&view.Status,
			&view.AssignedBy,
			&view.Notes,
			&view.CreatedAt,
			&view.UpdatedAt,
			&doctor.FirstName,
			&doctor.LastName,
			&doctor.Email,
			&assigner.FirstName,
			&assigner.LastName,
			&assigner.Email,
		); err != nil {
			return nil, err
		}
		doctor.ID = view.UserID
		assigner.ID = view.AssignedBy
		view.Doctor = &doctor
		view.AssignedByUser = &assigner
		result = append(result, view)
	}
	return result, rows.Err()
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := row.Scan(
		&assignment.ID,
		&assignment.UserID,
		&assignment.Date,
		&assignment.ShiftType,
		&assignment.Status,
		&assignment.AssignedBy,
		&assignment.Notes,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}
