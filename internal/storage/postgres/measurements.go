package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/babyscan/babyscan/internal/types"
)

var measurementUpdateColumns = []string{"notes", "image_path", "measurement_date"}

const measurementColumns = `id, baby_id, height_cm, weight_kg, age_months, haz_score, haz_category,
	haz_color, image_path, landmarks_data, scale_cm_per_px, method, notes, measurement_date, created_at`

// CreateMeasurement inserts a scored measurement for an existing baby.
func (s *PostgresStorage) CreateMeasurement(ctx context.Context, m *types.Measurement) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid measurement: %w", err)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	var landmarks interface{}
	if len(m.Landmarks) > 0 {
		landmarks = string(m.Landmarks)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO measurements (`+measurementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, m.ID, m.BabyID, m.HeightCm, m.WeightKg, m.AgeMonths, m.HAZScore, m.HAZCategory,
		m.HAZColor, m.ImagePath, landmarks, m.ScaleCmPerPx, m.Method, m.Notes,
		m.MeasurementDate, m.CreatedAt)
	if err != nil {
		// Foreign key violation: the baby does not exist
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("baby %s: %w", m.BabyID, types.ErrNotFound)
		}
		return fmt.Errorf("failed to insert measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a measurement by ID
func (s *PostgresStorage) GetMeasurement(ctx context.Context, id string) (*types.Measurement, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+measurementColumns+` FROM measurements WHERE id = $1`, id)
	m, err := scanMeasurement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("measurement %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return m, nil
}

// ListMeasurements returns a baby's measurements, most recent measurement date first.
func (s *PostgresStorage) ListMeasurements(ctx context.Context, babyID string) ([]*types.Measurement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+measurementColumns+`
		FROM measurements
		WHERE baby_id = $1
		ORDER BY measurement_date DESC, created_at DESC
	`, babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var out []*types.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMeasurement applies a partial update to the editable fields.
func (s *PostgresStorage) UpdateMeasurement(ctx context.Context, id string, updates map[string]interface{}) error {
	normalized, err := types.NormalizeMeasurementUpdates(updates)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		_, err := s.GetMeasurement(ctx, id)
		return err
	}

	set, args := buildUpdate(normalized, measurementUpdateColumns, 1)
	query := fmt.Sprintf("UPDATE measurements SET %s WHERE id = $%d", set, len(args)+1)
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update measurement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("measurement %s: %w", id, types.ErrNotFound)
	}
	return nil
}

// DeleteMeasurement removes a single measurement
func (s *PostgresStorage) DeleteMeasurement(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM measurements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("measurement %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func scanMeasurement(row pgx.Row) (*types.Measurement, error) {
	var (
		m         types.Measurement
		landmarks []byte
	)
	err := row.Scan(&m.ID, &m.BabyID, &m.HeightCm, &m.WeightKg, &m.AgeMonths, &m.HAZScore,
		&m.HAZCategory, &m.HAZColor, &m.ImagePath, &landmarks, &m.ScaleCmPerPx, &m.Method,
		&m.Notes, &m.MeasurementDate, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(landmarks) > 0 {
		m.Landmarks = landmarks
	}
	return &m, nil
}
