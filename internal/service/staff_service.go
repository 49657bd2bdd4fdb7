package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/cache"
	"github.com/spec-kit/slackbot-settings/internal/domain"
	"github.com/spec-kit/slackbot-settings/internal/events"
	"github.com/spec-kit/slackbot-settings/internal/repository"
	apperrors "github.com/spec-kit/slackbot-settings/pkg/util/errorutil"
)

// MaxRosterSize bounds a single wholesale replace.
const MaxRosterSize = 500

// StaffService owns the escalation roster.
type StaffService struct {
	staff      repository.StaffRepository
	cache      cache.RosterCache
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// mu orders cache writes against replaces. generation changes on every
	// replace so a List that read the repo before it never fills the cache.
	mu         sync.Mutex
	generation uint64
}

// StaffDependencies bundles collaborators for the staff service.
type StaffDependencies struct {
	StaffRepo  repository.StaffRepository
	Cache      cache.RosterCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		staff:      deps.StaffRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns the full roster in stored order.
func (s *StaffService) List(ctx context.Context) ([]domain.StaffMember, error) {
	if s.cache != nil {
		members, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("roster cache read failed", zap.Error(err))
		} else if ok {
			return members, nil
		}
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	members, err := s.staff.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if members == nil {
		members = []domain.StaffMember{}
	}

	if s.cache != nil {
		s.mu.Lock()
		if generation == s.generation {
			if err := s.cache.Set(ctx, members); err != nil {
				s.logger.Warn("roster cache write failed", zap.Error(err))
			}
		}
		s.mu.Unlock()
	}
	return members, nil
}

// Replace overwrites the stored roster with exactly members. Ids that are not
// valid UUIDs, or that repeat, are replaced with fresh ones.
func (s *StaffService) Replace(ctx context.Context, members []domain.StaffMember) ([]domain.StaffMember, error) {
	if len(members) > MaxRosterSize {
		return nil, apperrors.NewValidationError("roster too large", map[string]any{
			"max":   MaxRosterSize,
			"count": len(members),
		})
	}

	next := assignIDs(members)

	s.mu.Lock()
	previous, err := s.staff.List(ctx)
	if err != nil {
		s.logger.Warn("could not read roster before replace", zap.Error(err))
	}

	s.generation++
	if err := s.staff.ReplaceAll(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, apperrors.MapError(err)
	}
	s.writeThrough(ctx, next)
	s.mu.Unlock()

	publishEvent(ctx, s.dispatcher, s.logger, events.EventRosterReplaced, events.RosterReplacedPayload{
		PreviousCount: len(previous),
		Count:         len(next),
	})
	return next, nil
}

// Escalation returns the members whose task list includes category.
func (s *StaffService) Escalation(ctx context.Context, category string) ([]domain.StaffMember, error) {
	members, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matches := []domain.StaffMember{}
	for _, m := range members {
		if m.Handles(category) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// writeThrough stores the replaced roster, dropping the entry if that fails.
func (s *StaffService) writeThrough(ctx context.Context, members []domain.StaffMember) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, members); err != nil {
		s.logger.Warn("roster cache write failed", zap.Error(err))
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("roster cache invalidate failed", zap.Error(err))
		}
	}
}

func assignIDs(members []domain.StaffMember) []domain.StaffMember {
	seen := make(map[string]struct{}, len(members))
	next := make([]domain.StaffMember, len(members))
	for i, m := range members {
		if id, err := uuid.Parse(m.ID); err == nil {
			m.ID = id.String()
		} else {
			m.ID = uuid.NewString()
		}
		if _, dup := seen[m.ID]; dup {
			m.ID = uuid.NewString()
		}
		seen[m.ID] = struct{}{}
		next[i] = m
	}
	return next
}
