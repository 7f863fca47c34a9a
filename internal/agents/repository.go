// Package agents provides CRUD and persona preview for AI agent profiles.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devvault2026/revampai/internal/agents/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("agent profile not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, name, objective, non_goals, authority, responsibilities, output_format, knobs, created_at, updated_at`

func (r *Repository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM agent_profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM agent_profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (r *Repository) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	responsibilities, outputFormat, knobs, err := marshalProfile(profile)
	if err != nil {
		return domain.Profile{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO agent_profiles (id, name, objective, non_goals, authority, responsibilities, output_format, knobs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+profileColumns,
		profile.ID, profile.Name, profile.Objective, profile.NonGoals, profile.Authority,
		responsibilities, outputFormat, knobs,
	)
	return scanProfile(row)
}

func (r *Repository) Update(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	responsibilities, outputFormat, knobs, err := marshalProfile(profile)
	if err != nil {
		return domain.Profile{}, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE agent_profiles SET
			name = $2, objective = $3, non_goals = $4, authority = $5,
			responsibilities = $6, output_format = $7, knobs = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		profile.ID, profile.Name, profile.Objective, profile.NonGoals, profile.Authority,
		responsibilities, outputFormat, knobs,
	)
	return scanProfile(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agent_profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalProfile(profile domain.Profile) (responsibilities, outputFormat, knobs []byte, err error) {
	responsibilities, err = json.Marshal(profile.Responsibilities)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal responsibilities: %w", err)
	}
	outputFormat, err = json.Marshal(profile.OutputFormat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal output format: %w", err)
	}
	knobs, err = json.Marshal(profile.Knobs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal knobs: %w", err)
	}
	return responsibilities, outputFormat, knobs, nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		profile          domain.Profile
		responsibilities []byte
		outputFormat     []byte
		knobs            []byte
	)

	err := row.Scan(
		&profile.ID, &profile.Name, &profile.Objective, &profile.NonGoals, &profile.Authority,
		&responsibilities, &outputFormat, &knobs, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}

	if len(responsibilities) > 0 {
		if err := json.Unmarshal(responsibilities, &profile.Responsibilities); err != nil {
			return domain.Profile{}, fmt.Errorf("unmarshal responsibilities: %w", err)
		}
	}
	if len(outputFormat) > 0 {
		if err := json.Unmarshal(outputFormat, &profile.OutputFormat); err != nil {
			return domain.Profile{}, fmt.Errorf("unmarshal output format: %w", err)
		}
	}
	if len(knobs) > 0 {
		if err := json.Unmarshal(knobs, &profile.Knobs); err != nil {
			return domain.Profile{}, fmt.Errorf("unmarshal knobs: %w", err)
		}
	}

	return profile, nil
}
