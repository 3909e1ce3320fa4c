package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/babyscan/babyscan/internal/anthropometry"
)

// Fields that may be changed through UpdateBaby. Keys are column names.
var allowedBabyUpdateFields = map[string]bool{
	"name":        true,
	"birth_date":  true,
	"sex":         true,
	"parent_name": true,
}

// Fields that may be changed through UpdateMeasurement. Scores are derived from
// the detector output and are not editable.
var allowedMeasurementUpdateFields = map[string]bool{
	"notes":            true,
	"image_path":       true,
	"measurement_date": true,
}

// NormalizeBabyUpdates validates a partial baby update and converts values to
// their stored Go types: birth_date becomes a time.Time, sex an anthropometry.Sex
// string, the rest trimmed strings.
func NormalizeBabyUpdates(updates map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		if !allowedBabyUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
		switch key {
		case "birth_date":
			t, err := toTime(value, anthropometry.ParseBirthDate)
			if err != nil {
				return nil, fmt.Errorf("birth_date: %w", err)
			}
			out[key] = t
		case "sex":
			s, ok := value.(string)
			if !ok {
				if sx, isSex := value.(anthropometry.Sex); isSex {
					s, ok = string(sx), true
				}
			}
			if !ok {
				return nil, fmt.Errorf("sex must be a string (got %T)", value)
			}
			sex, err := anthropometry.ParseSex(s)
			if err != nil {
				return nil, err
			}
			out[key] = string(sex)
		default:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string (got %T)", key, value)
			}
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("%s cannot be empty", key)
			}
			out[key] = s
		}
	}
	return out, nil
}

// NormalizeMeasurementUpdates validates a partial measurement update.
func NormalizeMeasurementUpdates(updates map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		if !allowedMeasurementUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
		switch key {
		case "measurement_date":
			t, err := toTime(value, func(s string) (time.Time, error) {
				return time.Parse(time.RFC3339, s)
			})
			if err != nil {
				return nil, fmt.Errorf("measurement_date: %w", err)
			}
			out[key] = t
		default:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string (got %T)", key, value)
			}
			out[key] = s
		}
	}
	return out, nil
}

func toTime(value interface{}, parse func(string) (time.Time, error)) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("time cannot be zero")
		}
		return v, nil
	case string:
		return parse(v)
	default:
		return time.Time{}, fmt.Errorf("unsupported value type %T", value)
	}
}
