package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/repository"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// MaxBulkAvailability caps the number of entries in one bulk update.
const MaxBulkAvailability = 366

// AvailabilityService records doctors' willingness to work.
type AvailabilityService struct {
	availability repository.AvailabilityRepository
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(repo repository.AvailabilityRepository) *AvailabilityService {
	return &AvailabilityService{availability: repo}
}

// AvailabilityInput is one declaration.
type AvailabilityInput struct {
	Date        time.Time
	ShiftType   domain.ShiftType
	IsAvailable bool
	Notes       *string
}

// Declare upserts one availability entry for the caller.
func (s *AvailabilityService) Declare(ctx context.Context, actor *domain.User, input AvailabilityInput) (*domain.Availability, error) {
	if err := auth.Authorize(actor, auth.CapDeclareAvailability).Err(); err != nil {
		return nil, err
	}
	if problems := validateAvailabilityInput(input); len(problems) > 0 {
		return nil, apperrors.NewValidationError("invalid availability", problems)
	}
	availability := toAvailability(actor.ID, input)
	if err := s.availability.Upsert(ctx, availability); err != nil {
		return nil, apperrors.MapError(err)
	}
	return availability, nil
}

// BulkDeclare validates every entry first and writes nothing unless all are valid.
func (s *AvailabilityService) BulkDeclare(ctx context.Context, actor *domain.User, inputs []AvailabilityInput) ([]domain.Availability, error) {
	if err := auth.Authorize(actor, auth.CapDeclareAvailability).Err(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("availabilities must be a non-empty array", nil)
	}
	if len(inputs) > MaxBulkAvailability {
		return nil, apperrors.NewValidationError("too many availability entries", map[string]any{
			"max":      MaxBulkAvailability,
			"received": len(inputs),
		})
	}

	problems := map[string]any{}
	seen := make(map[domain.Slot]int, len(inputs))
	for i, input := range inputs {
		if entryProblems := validateAvailabilityInput(input); len(entryProblems) > 0 {
			problems[fmt.Sprintf("availabilities[%d]", i)] = entryProblems
			continue
		}
		slot := domain.NewSlot(input.Date, input.ShiftType)
		if first, dup := seen[slot]; dup {
			problems[fmt.Sprintf("availabilities[%d]", i)] = map[string]any{
				"slot": fmt.Sprintf("duplicates availabilities[%d]", first),
			}
			continue
		}
		seen[slot] = i
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("invalid availability batch; nothing was saved", problems)
	}

	batch := make([]*domain.Availability, 0, len(inputs))
	for _, input := range inputs {
		batch = append(batch, toAvailability(actor.ID, input))
	}
	if err := s.availability.UpsertBatch(ctx, batch); err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]domain.Availability, 0, len(batch))
	for _, a := range batch {
		result = append(result, *a)
	}
	return result, nil
}

// MyAvailability lists the caller's declarations.
func (s *AvailabilityService) MyAvailability(ctx context.Context, actor *domain.User, rng domain.DateRange, page domain.Page) ([]domain.Availability, error) {
	if err := auth.Authorize(actor, auth.CapDeclareAvailability).Err(); err != nil {
		return nil, err
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	items, err := s.availability.List(ctx, repository.AvailabilityFilter{UserID: &actor.ID, Range: rng, Page: page})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ListAll lists every doctor's declarations, optionally only positive ones.
func (s *AvailabilityService) ListAll(ctx context.Context, actor *domain.User, rng domain.DateRange, availableOnly bool, page domain.Page) ([]domain.Availability, error) {
	if err := auth.Authorize(actor, auth.CapViewAllAvailability).Err(); err != nil {
		return nil, err
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	items, err := s.availability.List(ctx, repository.AvailabilityFilter{Range: rng, AvailableOnly: availableOnly, Page: page})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

func validateAvailabilityInput(input AvailabilityInput) map[string]any {
	problems := map[string]any{}
	if !dateIsSet(input.Date) {
		problems["date"] = "date is required"
	}
	if !input.ShiftType.Valid() {
		problems["shiftType"] = "shiftType must be one of day, night"
	}
	return problems
}

func toAvailability(userID string, input AvailabilityInput) *domain.Availability {
	return &domain.Availability{
		UserID:      userID,
		Date:        domain.TruncateDate(input.Date),
		ShiftType:   input.ShiftType,
		IsAvailable: input.IsAvailable,
		Notes:       trimmedNote(input.Notes),
	}
}
