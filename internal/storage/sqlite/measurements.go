package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/babyscan/babyscan/internal/types"
)

var measurementUpdateColumns = []string{"notes", "image_path", "measurement_date"}

const measurementColumns = `id, baby_id, height_cm, weight_kg, age_months, haz_score, haz_category,
	haz_color, image_path, landmarks_data, scale_cm_per_px, method, notes, measurement_date, created_at`

// CreateMeasurement inserts a scored measurement for an existing baby.
func (s *SQLiteStorage) CreateMeasurement(ctx context.Context, m *types.Measurement) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid measurement: %w", err)
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM babies WHERE id = ?`, m.BabyID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("baby %s: %w", m.BabyID, types.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check baby: %w", err)
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}

	var landmarks sql.NullString
	if len(m.Landmarks) > 0 {
		landmarks = sql.NullString{String: string(m.Landmarks), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO measurements (`+measurementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.BabyID, m.HeightCm, m.WeightKg, m.AgeMonths, m.HAZScore, m.HAZCategory,
		m.HAZColor, m.ImagePath, landmarks, m.ScaleCmPerPx, m.Method, m.Notes,
		formatTime(m.MeasurementDate), formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a measurement by ID
func (s *SQLiteStorage) GetMeasurement(ctx context.Context, id string) (*types.Measurement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id)
	m, err := scanMeasurement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("measurement %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return m, nil
}

// ListMeasurements returns a baby's measurements, most recent measurement date first.
// An unknown baby yields an empty list.
func (s *SQLiteStorage) ListMeasurements(ctx context.Context, babyID string) ([]*types.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+measurementColumns+`
		FROM measurements
		WHERE baby_id = ?
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
func (s *SQLiteStorage) UpdateMeasurement(ctx context.Context, id string, updates map[string]interface{}) error {
	normalized, err := types.NormalizeMeasurementUpdates(updates)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		_, err := s.GetMeasurement(ctx, id)
		return err
	}

	set, args := buildUpdate(normalized, measurementUpdateColumns)
	args = append(args, id)
	result, err := s.db.ExecContext(ctx, fmt.Sprintf("UPDATE measurements SET %s WHERE id = ?", set), args...)
	if err != nil {
		return fmt.Errorf("failed to update measurement: %w", err)
	}
	return requireAffected(result, "measurement", id)
}

// DeleteMeasurement removes a single measurement
func (s *SQLiteStorage) DeleteMeasurement(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM measurements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	return requireAffected(result, "measurement", id)
}

func scanMeasurement(row rowScanner) (*types.Measurement, error) {
	var (
		m                          types.Measurement
		landmarks                  sql.NullString
		measurementDate, createdAt string
	)
	err := row.Scan(&m.ID, &m.BabyID, &m.HeightCm, &m.WeightKg, &m.AgeMonths, &m.HAZScore,
		&m.HAZCategory, &m.HAZColor, &m.ImagePath, &landmarks, &m.ScaleCmPerPx, &m.Method,
		&m.Notes, &measurementDate, &createdAt)
	if err != nil {
		return nil, err
	}
	if landmarks.Valid {
		m.Landmarks = []byte(landmarks.String)
	}
	if m.MeasurementDate, err = parseTime(measurementDate); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}
