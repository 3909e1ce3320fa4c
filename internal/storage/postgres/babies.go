package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/types"
)

var babyUpdateColumns = []string{"name", "birth_date", "sex", "parent_name"}

// CreateBaby inserts a new baby. An empty ID is replaced with a fresh UUID.
func (s *PostgresStorage) CreateBaby(ctx context.Context, baby *types.Baby) error {
	if err := baby.Validate(); err != nil {
		return fmt.Errorf("invalid baby: %w", err)
	}
	if baby.ID == "" {
		baby.ID = uuid.NewString()
	}
	now := time.Now()
	if baby.CreatedAt.IsZero() {
		baby.CreatedAt = now
	}
	baby.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO babies (id, name, birth_date, sex, parent_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, baby.ID, baby.Name, baby.BirthDate, string(baby.Sex), baby.ParentName, baby.CreatedAt, baby.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert baby: %w", err)
	}
	return nil
}

// GetBaby retrieves a baby by ID
func (s *PostgresStorage) GetBaby(ctx context.Context, id string) (*types.Baby, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, birth_date, sex, parent_name, created_at, updated_at
		FROM babies WHERE id = $1
	`, id)
	baby, err := scanBaby(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("baby %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baby: %w", err)
	}
	return baby, nil
}

// ListBabies returns all babies, newest first
func (s *PostgresStorage) ListBabies(ctx context.Context) ([]*types.Baby, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, birth_date, sex, parent_name, created_at, updated_at
		FROM babies ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list babies: %w", err)
	}
	defer rows.Close()

	var babies []*types.Baby
	for rows.Next() {
		baby, err := scanBaby(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan baby: %w", err)
		}
		babies = append(babies, baby)
	}
	return babies, rows.Err()
}

// UpdateBaby applies a partial update. Unknown fields are rejected.
func (s *PostgresStorage) UpdateBaby(ctx context.Context, id string, updates map[string]interface{}) error {
	normalized, err := types.NormalizeBabyUpdates(updates)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		_, err := s.GetBaby(ctx, id)
		return err
	}

	set, args := buildUpdate(normalized, babyUpdateColumns, 1)
	query := fmt.Sprintf("UPDATE babies SET %s, updated_at = $%d WHERE id = $%d", set, len(args)+1, len(args)+2)
	args = append(args, time.Now(), id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update baby: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("baby %s: %w", id, types.ErrNotFound)
	}
	return nil
}

// DeleteBaby removes a baby and, through the foreign key, its measurements.
func (s *PostgresStorage) DeleteBaby(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM babies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete baby: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("baby %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func scanBaby(row pgx.Row) (*types.Baby, error) {
	var (
		baby types.Baby
		sex  string
	)
	err := row.Scan(&baby.ID, &baby.Name, &baby.BirthDate, &sex, &baby.ParentName, &baby.CreatedAt, &baby.UpdatedAt)
	if err != nil {
		return nil, err
	}
	baby.Sex = anthropometry.Sex(sex)
	return &baby, nil
}
