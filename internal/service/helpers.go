package service

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rosterhq/shift-roster/internal/domain"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRange(rng domain.DateRange) error {
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return apperrors.NewValidationError("startDate must not be after endDate", map[string]any{
			"startDate": domain.FormatDate(*rng.From),
			"endDate":   domain.FormatDate(*rng.To),
		})
	}
	return nil
}

func trimmedNote(note *string) *string {
	if note == nil {
		return nil
	}
	v := strings.TrimSpace(*note)
	if v == "" {
		return nil
	}
	return &v
}

func ptrBool(v bool) *bool {
	return &v
}

func dateIsSet(t time.Time) bool {
	return !t.IsZero()
}
