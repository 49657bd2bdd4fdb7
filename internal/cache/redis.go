package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

const (
	rosterKey     = "settings:roster"
	lastUploadKey = "settings:last_upload"
)

type cachedMember struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AccountID string `json:"accountId"`
	Tasks     string `json:"tasks"`
}

// Redis implements RosterCache and UploadMarker on a go-redis client.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context) ([]domain.StaffMember, bool, error) {
	raw, err := c.client.Get(ctx, rosterKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("roster cache get: %w", err)
	}

	var cached []cachedMember
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("roster cache decode: %w", err)
	}
	out := make([]domain.StaffMember, 0, len(cached))
	for _, m := range cached {
		out = append(out, domain.StaffMember{ID: m.ID, Name: m.Name, AccountID: m.AccountID, Tasks: m.Tasks})
	}
	return out, true, nil
}

func (c *Redis) Set(ctx context.Context, members []domain.StaffMember) error {
	if c.ttl <= 0 {
		return nil
	}
	cached := make([]cachedMember, 0, len(members))
	for _, m := range members {
		cached = append(cached, cachedMember{ID: m.ID, Name: m.Name, AccountID: m.AccountID, Tasks: m.Tasks})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rosterKey, raw, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rosterKey).Err()
}

func (c *Redis) LastUpload(ctx context.Context) (*time.Time, error) {
	raw, err := c.client.Get(ctx, lastUploadKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last upload get: %w", err)
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("last upload decode: %w", err)
	}
	return &at, nil
}

func (c *Redis) MarkUpload(ctx context.Context, at time.Time) error {
	return c.client.Set(ctx, lastUploadKey, at.UTC().Format(time.RFC3339), 0).Err()
}
