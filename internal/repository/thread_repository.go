package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

// ThreadRepository persists imported Slack threads.
type ThreadRepository interface {
	InsertMany(ctx context.Context, threads []domain.Thread) (int, error)
	// DeleteRange removes threads with from <= posted_at < to.
	DeleteRange(ctx context.Context, from, to time.Time) (int64, error)
	Summary(ctx context.Context) (domain.StorageSummary, error)
}

type threadRepository struct {
	pool *pgxpool.Pool
}

// NewThreadRepository instantiates the repository.
func NewThreadRepository(pool *pgxpool.Pool) ThreadRepository {
	return &threadRepository{pool: pool}
}

func (r *threadRepository) InsertMany(ctx context.Context, threads []domain.Thread) (int, error) {
	if len(threads) == 0 {
		return 0, nil
	}
	const query = `
        INSERT INTO threads (id, thread_ts, author, message, replies, reply_count, posted_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin thread import: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, t := range threads {
		replies := t.Replies
		if replies == nil {
			replies = []domain.Reply{}
		}
		batch.Queue(query, t.ID, t.ThreadTs, t.User, t.Message, replies, t.ReplyCount, t.PostedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range threads {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("insert thread %s: %w", threads[i].ThreadTs, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit thread import: %w", err)
	}
	return len(threads), nil
}

func (r *threadRepository) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	const query = `DELETE FROM threads WHERE posted_at >= $1 AND posted_at < $2`

	cmd, err := r.pool.Exec(ctx, query, from, to)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *threadRepository) Summary(ctx context.Context) (domain.StorageSummary, error) {
	const query = `
        SELECT COUNT(*), MIN(posted_at), MAX(posted_at), pg_total_relation_size('threads')
        FROM threads`

	var (
		summary domain.StorageSummary
		count   int64
	)
	if err := r.pool.QueryRow(ctx, query).Scan(
		&count,
		&summary.Earliest,
		&summary.Latest,
		&summary.UsageBytes,
	); err != nil {
		return domain.StorageSummary{}, err
	}
	summary.ThreadCount = int(count)
	return summary, nil
}
