package memory

import (
	"context"
	"sync"

	"staff-compliance-service/internal/domain"
)

// HistoryStore is an in-memory append-only result history, keyed by staff
// member. Reads return copies so callers can never mutate stored history.
type HistoryStore struct {
	mu      sync.RWMutex
	results map[string][]domain.TestResult
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{results: make(map[string][]domain.TestResult)}
}

func (s *HistoryStore) Append(_ context.Context, staffID string, result domain.TestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[staffID] = append(s.results[staffID], result)
	return nil
}

func (s *HistoryStore) History(_ context.Context, staffID string) ([]domain.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.results[staffID]
	out := make([]domain.TestResult, len(history))
	copy(out, history)
	return out, nil
}

// StaffDirectory is an in-memory staff roster.
type StaffDirectory struct {
	mu      sync.RWMutex
	members map[string]domain.StaffMember
	order   []string
}

func NewStaffDirectory() *StaffDirectory {
	return &StaffDirectory{members: make(map[string]domain.StaffMember)}
}

// Upsert adds or replaces a member, keeping first-seen ordering for listings.
func (d *StaffDirectory) Upsert(member domain.StaffMember) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.members[member.ID]; !ok {
		d.order = append(d.order, member.ID)
	}
	d.members[member.ID] = member
}

func (d *StaffDirectory) GetStaff(_ context.Context, staffID string) (domain.StaffMember, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	member, ok := d.members[staffID]
	if !ok {
		return domain.StaffMember{}, domain.ErrStaffNotFound
	}
	return member, nil
}

func (d *StaffDirectory) ListStaff(_ context.Context) ([]domain.StaffMember, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.StaffMember, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.members[id])
	}
	return out, nil
}
