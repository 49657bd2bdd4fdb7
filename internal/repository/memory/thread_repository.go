package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

// ThreadRepository keeps imported threads in process memory.
type ThreadRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Thread
}

func NewThreadRepository() *ThreadRepository {
	return &ThreadRepository{items: make(map[string]domain.Thread)}
}

func (r *ThreadRepository) InsertMany(ctx context.Context, threads []domain.Thread) (int, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range threads {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		r.items[t.ID] = t
	}
	return len(threads), nil
}

func (r *ThreadRepository) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, t := range r.items {
		if !t.PostedAt.Before(from) && t.PostedAt.Before(to) {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *ThreadRepository) Summary(ctx context.Context) (domain.StorageSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var summary domain.StorageSummary
	for _, t := range r.items {
		posted := t.PostedAt
		if summary.Earliest == nil || posted.Before(*summary.Earliest) {
			summary.Earliest = &posted
		}
		if summary.Latest == nil || posted.After(*summary.Latest) {
			summary.Latest = &posted
		}
		summary.UsageBytes += t.SizeBytes()
	}
	summary.ThreadCount = len(r.items)
	return summary, nil
}
