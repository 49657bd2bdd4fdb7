package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

// StaffRepository stores the escalation roster as a single ordered collection.
type StaffRepository interface {
	List(ctx context.Context) ([]domain.StaffMember, error)
	// ReplaceAll overwrites the whole roster with members, in order.
	ReplaceAll(ctx context.Context, members []domain.StaffMember) error
}

// staffDB is the part of *pgxpool.Pool the repository uses.
type staffDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type staffRepository struct {
	pool staffDB
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) List(ctx context.Context) ([]domain.StaffMember, error) {
	const query = `
        SELECT id::text, name, account_id, tasks
        FROM staff_members ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StaffMember{}
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(
			&staff.ID,
			&staff.Name,
			&staff.AccountID,
			&staff.Tasks,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) ReplaceAll(ctx context.Context, members []domain.StaffMember) error {
	const insert = `
        INSERT INTO staff_members (id, position, name, account_id, tasks)
        VALUES ($1,$2,$3,$4,$5)`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin roster replace: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Concurrent replaces must not interleave their DELETE and INSERTs.
	if _, err := tx.Exec(ctx, `LOCK TABLE staff_members IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock roster: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM staff_members`); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	for i, m := range members {
		if _, err := tx.Exec(ctx, insert, m.ID, i, m.Name, m.AccountID, m.Tasks); err != nil {
			return fmt.Errorf("insert roster entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit roster replace: %w", err)
	}
	return nil
}
