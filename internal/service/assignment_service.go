package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/repository"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// AssignmentService is the rule engine for shift assignments. It keeps at
// most one non-cancelled assignment per slot; the repository's unique index
// backs the pre-check against concurrent writers.
type AssignmentService struct {
	assignments  repository.AssignmentRepository
	availability repository.AvailabilityRepository
	users        repository.UserRepository
	logger       *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	AssignmentRepo   repository.AssignmentRepository
	AvailabilityRepo repository.AvailabilityRepository
	UserRepo         repository.UserRepository
	Logger           *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments:  deps.AssignmentRepo,
		availability: deps.AvailabilityRepo,
		users:        deps.UserRepo,
		logger:       logger,
	}
}

// ProposeInput describes a new assignment.
type ProposeInput struct {
	UserID    string
	Date      time.Time
	ShiftType domain.ShiftType
	Notes     *string
}

// ReassignInput describes changes to an existing assignment. Nil fields are left unchanged.
type ReassignInput struct {
	UserID *string
	Status *domain.AssignmentStatus
	Notes  *string
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	Range    domain.DateRange
	Statuses []domain.AssignmentStatus
	Page     domain.Page
}

// Propose assigns a doctor to a free slot they declared themselves available for.
func (s *AssignmentService) Propose(ctx context.Context, actor *domain.User, input ProposeInput) (*domain.Assignment, error) {
	if err := auth.Authorize(actor, auth.CapAssignShifts).Err(); err != nil {
		return nil, err
	}
	if !input.ShiftType.Valid() {
		return nil, apperrors.NewValidationError("invalid shift type", map[string]any{"shiftType": input.ShiftType})
	}
	if !dateIsSet(input.Date) {
		return nil, apperrors.NewValidationError("date is required", nil)
	}
	slot := domain.NewSlot(input.Date, input.ShiftType)

	doctor, err := s.loadAssignableDoctor(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.assignments.GetActiveBySlot(ctx, slot)
	switch {
	case err == nil:
		return nil, slotConflict(slot, existing.ID)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, apperrors.MapError(err)
	}

	if err := s.requireAvailability(ctx, doctor.ID, slot); err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		UserID:     doctor.ID,
		Date:       slot.Date,
		ShiftType:  slot.Shift,
		Status:     domain.AssignmentStatusPending,
		AssignedBy: actor.ID,
		Notes:      trimmedNote(input.Notes),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, slotConflict(slot, "")
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("shift assigned",
		zap.String("assignment_id", assignment.ID),
		zap.String("slot", slot.String()),
		zap.String("doctor_id", doctor.ID),
		zap.String("assigned_by", actor.ID))
	return assignment, nil
}

// Reassign changes the doctor, status, or note of an assignment.
func (s *AssignmentService) Reassign(ctx context.Context, actor *domain.User, assignmentID string, input ReassignInput) (*domain.Assignment, error) {
	if err := auth.Authorize(actor, auth.CapAssignShifts).Err(); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment", map[string]any{"assignment_id": assignmentID})
	}
	if assignment.Status == domain.AssignmentStatusCancelled {
		return nil, apperrors.NewInvalidTransition("cancelled assignments cannot be changed", map[string]any{
			"assignment_id": assignment.ID,
			"status":        assignment.Status,
		})
	}
	previous := assignment.Status

	if input.Status != nil {
		next := *input.Status
		if !next.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": next})
		}
		if !domain.CanTransition(previous, next) {
			return nil, apperrors.NewInvalidTransition("status transition not allowed", map[string]any{
				"from": previous,
				"to":   next,
			})
		}
		assignment.Status = next
	}

	if input.UserID != nil && *input.UserID != assignment.UserID {
		doctor, err := s.loadAssignableDoctor(ctx, *input.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.requireAvailability(ctx, doctor.ID, assignment.Slot()); err != nil {
			return nil, err
		}
		assignment.UserID = doctor.ID
	}

	if input.Notes != nil {
		assignment.Notes = trimmedNote(input.Notes)
	}

	if err := s.assignments.UpdateFrom(ctx, assignment, previous); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleWrite):
			return nil, apperrors.NewConflict("assignment changed concurrently; reload and retry", map[string]any{
				"assignment_id": assignment.ID,
			})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.logger.Info("assignment updated",
		zap.String("assignment_id", assignment.ID),
		zap.String("from_status", string(previous)),
		zap.String("to_status", string(assignment.Status)),
		zap.String("doctor_id", assignment.UserID),
		zap.String("actor_id", actor.ID))
	return assignment, nil
}

// Cancel moves an assignment to cancelled, freeing its slot.
func (s *AssignmentService) Cancel(ctx context.Context, actor *domain.User, assignmentID string) (*domain.Assignment, error) {
	status := domain.AssignmentStatusCancelled
	return s.Reassign(ctx, actor, assignmentID, ReassignInput{Status: &status})
}

// Delete removes an assignment record entirely.
func (s *AssignmentService) Delete(ctx context.Context, actor *domain.User, assignmentID string) error {
	if err := auth.Authorize(actor, auth.CapAssignShifts).Err(); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return notFoundOr(err, "assignment", map[string]any{"assignment_id": assignmentID})
	}
	s.logger.Info("assignment deleted", zap.String("assignment_id", assignmentID), zap.String("actor_id", actor.ID))
	return nil
}

// Get returns one assignment to an admin or to the doctor holding it.
func (s *AssignmentService) Get(ctx context.Context, actor *domain.User, assignmentID string) (*domain.Assignment, error) {
	decision := auth.Authorize(actor, auth.CapViewAllSchedules)
	if !decision.Allowed {
		if err := auth.Authorize(actor, auth.CapViewOwnSchedule).Err(); err != nil {
			return nil, err
		}
	}
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment", map[string]any{"assignment_id": assignmentID})
	}
	if !decision.Allowed && assignment.UserID != actor.ID {
		return nil, decision.Err()
	}
	return assignment, nil
}

// MySchedule lists the caller's own assignments.
func (s *AssignmentService) MySchedule(ctx context.Context, actor *domain.User, filter ScheduleFilter) ([]domain.AssignmentView, error) {
	if err := auth.Authorize(actor, auth.CapViewOwnSchedule).Err(); err != nil {
		return nil, err
	}
	if err := validateRange(filter.Range); err != nil {
		return nil, err
	}
	views, err := s.assignments.List(ctx, repository.AssignmentFilter{
		UserID:   &actor.ID,
		Range:    filter.Range,
		Statuses: filter.Statuses,
		Page:     filter.Page,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

// ListAll lists every assignment in the range.
func (s *AssignmentService) ListAll(ctx context.Context, actor *domain.User, filter ScheduleFilter) ([]domain.AssignmentView, error) {
	if err := auth.Authorize(actor, auth.CapViewAllSchedules).Err(); err != nil {
		return nil, err
	}
	if err := validateRange(filter.Range); err != nil {
		return nil, err
	}
	views, err := s.assignments.List(ctx, repository.AssignmentFilter{
		Range:    filter.Range,
		Statuses: filter.Statuses,
		Page:     filter.Page,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

func (s *AssignmentService) loadAssignableDoctor(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if !user.IsAssignableDoctor() {
		return nil, apperrors.NewValidationError("user is not an active doctor", map[string]any{
			"user_id": userID,
			"role":    user.Role,
			"active":  user.Active,
		})
	}
	return user, nil
}

func (s *AssignmentService) requireAvailability(ctx context.Context, userID string, slot domain.Slot) error {
	availability, err := s.availability.Get(ctx, userID, slot)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if err != nil || !availability.IsAvailable {
		return apperrors.NewNotAvailable("doctor is not available for this shift", map[string]any{
			"user_id":   userID,
			"date":      domain.FormatDate(slot.Date),
			"shiftType": slot.Shift,
		})
	}
	return nil
}

func slotConflict(slot domain.Slot, existingID string) error {
	details := map[string]any{
		"date":      domain.FormatDate(slot.Date),
		"shiftType": slot.Shift,
	}
	if existingID != "" {
		details["assignment_id"] = existingID
	}
	return apperrors.NewConflict("shift already assigned for this date and time", details)
}
