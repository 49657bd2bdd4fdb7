package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

// StaffRepository keeps the roster in process memory.
type StaffRepository struct {
	mu      sync.RWMutex
	members []domain.StaffMember
}

func NewStaffRepository() *StaffRepository {
	return &StaffRepository{members: []domain.StaffMember{}}
}

func (r *StaffRepository) List(ctx context.Context) ([]domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.StaffMember, len(r.members))
	copy(out, r.members)
	return out, nil
}

func (r *StaffRepository) ReplaceAll(ctx context.Context, members []domain.StaffMember) error {
	next := make([]domain.StaffMember, len(members))
	copy(next, members)

	r.mu.Lock()
	r.members = next
	r.mu.Unlock()
	return nil
}
