package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/types"
)

// babyUpdateColumns fixes the SET clause order for UpdateBaby.
var babyUpdateColumns = []string{"name", "birth_date", "sex", "parent_name"}

// CreateBaby inserts a new baby. An empty ID is replaced with a fresh UUID.
func (s *SQLiteStorage) CreateBaby(ctx context.Context, baby *types.Baby) error {
	if err := baby.Validate(); err != nil {
		return fmt.Errorf("invalid baby: %w", err)
	}
	if baby.ID == "" {
		baby.ID = uuid.NewString()
	}
	now := s.now()
	if baby.CreatedAt.IsZero() {
		baby.CreatedAt = now
	}
	baby.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO babies (id, name, birth_date, sex, parent_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, baby.ID, baby.Name, baby.BirthDate.Format(dateLayout), string(baby.Sex), baby.ParentName,
		formatTime(baby.CreatedAt), formatTime(baby.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert baby: %w", err)
	}
	return nil
}

// GetBaby retrieves a baby by ID
func (s *SQLiteStorage) GetBaby(ctx context.Context, id string) (*types.Baby, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, birth_date, sex, parent_name, created_at, updated_at
		FROM babies WHERE id = ?
	`, id)
	baby, err := scanBaby(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("baby %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baby: %w", err)
	}
	return baby, nil
}

// ListBabies returns all babies, newest first
func (s *SQLiteStorage) ListBabies(ctx context.Context) ([]*types.Baby, error) {
	rows, err := s.db.QueryContext(ctx, `
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
func (s *SQLiteStorage) UpdateBaby(ctx context.Context, id string, updates map[string]interface{}) error {
	normalized, err := types.NormalizeBabyUpdates(updates)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		_, err := s.GetBaby(ctx, id)
		return err
	}

	set, args := buildUpdate(normalized, babyUpdateColumns)
	args = append(args, formatTime(s.now()), id)
	query := fmt.Sprintf("UPDATE babies SET %s, updated_at = ? WHERE id = ?", set)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update baby: %w", err)
	}
	return requireAffected(result, "baby", id)
}

// DeleteBaby removes a baby; its measurements go with it via ON DELETE CASCADE.
func (s *SQLiteStorage) DeleteBaby(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM babies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete baby: %w", err)
	}
	return requireAffected(result, "baby", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBaby(row rowScanner) (*types.Baby, error) {
	var (
		baby                 types.Baby
		birthDate, sex       string
		createdAt, updatedAt string
	)
	if err := row.Scan(&baby.ID, &baby.Name, &birthDate, &sex, &baby.ParentName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if baby.BirthDate, err = parseDate(birthDate); err != nil {
		return nil, err
	}
	if baby.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if baby.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	baby.Sex = anthropometry.Sex(sex)
	return &baby, nil
}

func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, types.ErrNotFound)
	}
	return nil
}
