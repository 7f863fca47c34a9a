// Package sessions manages the named workspaces that group leads.
// At least one session always exists, and exactly one is active.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("session not found")

// Session is a named, user-created grouping of leads.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, active, created_at
		FROM sessions
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at FROM sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM sessions`).Scan(&count)
	return count, err
}

func (r *Repository) Create(ctx context.Context, name string, active bool) (Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, name, active)
		VALUES ($1, $2, $3)
		RETURNING id, name, active, created_at
	`, uuid.New(), name, active).Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt)
	return s, err
}

// SetActive flips the single active flag to the given session.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE sessions SET active = false WHERE active`); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE sessions SET active = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// Delete removes the session. Leads, their call logs and messages go with
// it via foreign-key cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OldestExcept returns the oldest session other than the given one. Used as
// the fallback target when the active session is deleted.
func (r *Repository) OldestExcept(ctx context.Context, id uuid.UUID) (Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at
		FROM sessions
		WHERE id <> $1
		ORDER BY created_at ASC
		LIMIT 1
	`, id).Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}
