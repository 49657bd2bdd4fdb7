// Package cache holds the roster read cache and the last-upload marker.
// Redis backs both when configured. The in-process variants are used when
// redis is absent and in tests.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

// RosterCache caches the full roster between replaces.
type RosterCache interface {
	Get(ctx context.Context) ([]domain.StaffMember, bool, error)
	Set(ctx context.Context, members []domain.StaffMember) error
	Invalidate(ctx context.Context) error
}

// UploadMarker remembers when exports were last uploaded.
type UploadMarker interface {
	LastUpload(ctx context.Context) (*time.Time, error)
	MarkUpload(ctx context.Context, at time.Time) error
}

// Local is an in-process RosterCache and UploadMarker.
type Local struct {
	mu         sync.RWMutex
	ttl        time.Duration
	roster     []domain.StaffMember
	exp        time.Time
	lastUpload *time.Time
}

// NewLocal builds a Local cache. A ttl of zero disables roster caching.
func NewLocal(ttl time.Duration) *Local {
	return &Local{ttl: ttl}
}

func (c *Local) Get(ctx context.Context) ([]domain.StaffMember, bool, error) {
	now := time.Now()
	c.mu.RLock()
	roster, exp := c.roster, c.exp
	c.mu.RUnlock()

	if roster == nil || now.After(exp) {
		return nil, false, nil
	}
	out := make([]domain.StaffMember, len(roster))
	copy(out, roster)
	return out, true, nil
}

func (c *Local) Set(ctx context.Context, members []domain.StaffMember) error {
	if c.ttl <= 0 {
		return nil
	}
	stored := make([]domain.StaffMember, len(members))
	copy(stored, members)

	c.mu.Lock()
	c.roster = stored
	c.exp = time.Now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

func (c *Local) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.roster = nil
	c.mu.Unlock()
	return nil
}

func (c *Local) LastUpload(ctx context.Context) (*time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastUpload == nil {
		return nil, nil
	}
	at := *c.lastUpload
	return &at, nil
}

func (c *Local) MarkUpload(ctx context.Context, at time.Time) error {
	c.mu.Lock()
	c.lastUpload = &at
	c.mu.Unlock()
	return nil
}
