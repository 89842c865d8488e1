package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	order []string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}}
}

func (m *memUsers) add(u domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.byID[u.ID] = &u
	m.order = append(m.order, u.ID)
	cp := u
	return &cp
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.byID[user.ID] = &cp
	m.order = append(m.order, user.ID)
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.PreferredDays = user.PreferredDays
	stored.UpdatedAt = time.Now()
	*user = *stored
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Role = user.Role
	stored.Active = user.Active
	stored.UpdatedAt = time.Now()
	*user = *stored
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, id := range m.order {
		u := m.byID[id]
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, *u)
	}
	return paginate(out, filter.Page), nil
}

type availabilityKey struct {
	userID string
	slot   domain.Slot
}

type memAvailability struct {
	mu      sync.Mutex
	entries map[availabilityKey]*domain.Availability
	writes  int
}

func newMemAvailability() *memAvailability {
	return &memAvailability{entries: map[availabilityKey]*domain.Availability{}}
}

func (m *memAvailability) upsertLocked(a *domain.Availability) {
	key := availabilityKey{userID: a.UserID, slot: a.Slot()}
	now := time.Now()
	if existing, ok := m.entries[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = uuid.NewString()
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	cp := *a
	m.entries[key] = &cp
	m.writes++
}

func (m *memAvailability) Upsert(_ context.Context, a *domain.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(a)
	return nil
}

func (m *memAvailability) UpsertBatch(_ context.Context, batch []*domain.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range batch {
		m.upsertLocked(a)
	}
	return nil
}

func (m *memAvailability) Get(_ context.Context, userID string, slot domain.Slot) (*domain.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.entries[availabilityKey{userID: userID, slot: domain.NewSlot(slot.Date, slot.Shift)}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *memAvailability) List(_ context.Context, filter repository.AvailabilityFilter) ([]domain.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Availability
	for _, a := range m.entries {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.AvailableOnly && !a.IsAvailable {
			continue
		}
		if !inRange(a.Date, filter.Range) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ShiftType < out[j].ShiftType
	})
	return paginate(out, filter.Page), nil
}

func (m *memAvailability) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// memAssignments enforces one active assignment per slot like the
// assignments_active_slot_key index.
type memAssignments struct {
	mu    sync.Mutex
	byID  map[string]*domain.Assignment
	users *memUsers
}

func newMemAssignments(users *memUsers) *memAssignments {
	return &memAssignments{byID: map[string]*domain.Assignment{}, users: users}
}

func (m *memAssignments) slotTakenLocked(slot domain.Slot, exceptID string) bool {
	for _, a := range m.byID {
		if a.ID != exceptID && a.Status.Active() && a.Slot() == slot {
			return true
		}
	}
	return false
}

func (m *memAssignments) Create(_ context.Context, a *domain.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Status.Active() && m.slotTakenLocked(a.Slot(), "") {
		return repository.ErrSlotTaken
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAssignments) UpdateFrom(_ context.Context, a *domain.Assignment, expected domain.AssignmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[a.ID]
	if !ok || stored.Status != expected {
		return repository.ErrStaleWrite
	}
	if a.Status.Active() && m.slotTakenLocked(a.Slot(), a.ID) {
		return repository.ErrSlotTaken
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAssignments) GetByID(_ context.Context, id string) (*domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *memAssignments) GetActiveBySlot(_ context.Context, slot domain.Slot) (*domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Status.Active() && a.Slot() == slot {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAssignments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *memAssignments) List(ctx context.Context, filter repository.AssignmentFilter) ([]domain.AssignmentView, error) {
	m.mu.Lock()
	var matched []domain.Assignment
	for _, a := range m.byID {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if !inRange(a.Date, filter.Range) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, a.Status) {
			continue
		}
		matched = append(matched, *a)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ShiftType < matched[j].ShiftType
	})
	matched = paginate(matched, filter.Page)
	views := make([]domain.AssignmentView, 0, len(matched))
	for _, a := range matched {
		view := domain.AssignmentView{Assignment: a}
		if u, err := m.users.GetByID(ctx, a.UserID); err == nil {
			view.Doctor = &domain.UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		}
		if u, err := m.users.GetByID(ctx, a.AssignedBy); err == nil {
			view.AssignedByUser = &domain.UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		}
		views = append(views, view)
	}
	return views, nil
}

func (m *memAssignments) activeCount(slot domain.Slot) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.byID {
		if a.Status.Active() && a.Slot() == slot {
			n++
		}
	}
	return n
}

type memResets struct {
	mu     sync.Mutex
	tokens map[string]*domain.PasswordResetToken
}

func newMemResets() *memResets {
	return &memResets{tokens: map[string]*domain.PasswordResetToken{}}
}

func (m *memResets) Create(_ context.Context, token *domain.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *memResets) GetByToken(_ context.Context, token string) (*domain.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *memResets) MarkUsed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.ID == id {
			if t.UsedAt != nil {
				return repository.ErrStaleWrite
			}
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return repository.ErrStaleWrite
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: map[string]time.Time{}}
}

func (m *memRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func inRange(date time.Time, rng domain.DateRange) bool {
	if rng.From != nil && date.Before(*rng.From) {
		return false
	}
	if rng.To != nil && date.After(*rng.To) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.AssignmentStatus, s domain.AssignmentStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func mustDate(value string) time.Time {
	t, err := domain.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

func paginate[T any](items []T, page domain.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
