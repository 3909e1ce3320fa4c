package anthropometry

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DaysPerMonth is the average month length used to convert elapsed days to months.
const DaysPerMonth = 30.44

// BirthDateLayout is the ISO-8601 calendar date form birth dates are exchanged in.
const BirthDateLayout = "2006-01-02"

// ErrInvalidDate is returned when a birth date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// AgeInMonths returns the number of whole months between birthDate and now.
//
// Elapsed time is taken as an absolute value, so swapping the arguments gives the
// same answer and a birth date in the future never produces a negative age.
// Elapsed days are rounded up to whole days before dividing by DaysPerMonth.
func AgeInMonths(birthDate, now time.Time) int {
	elapsed := now.Sub(birthDate)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	days := math.Ceil(elapsed.Hours() / 24)
	return int(math.Floor(days / DaysPerMonth))
}

// ParseBirthDate parses an ISO-8601 calendar date ("2024-01-15") or an RFC 3339
// timestamp. Calendar dates are interpreted as midnight UTC.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty birth date", ErrInvalidDate)
	}
	if t, err := time.Parse(BirthDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD or RFC 3339", ErrInvalidDate, s)
	}
	return t, nil
}

// AgeInMonthsFrom parses birthDate and returns the age in months at now.
func AgeInMonthsFrom(birthDate string, now time.Time) (int, error) {
	birth, err := ParseBirthDate(birthDate)
	if err != nil {
		return 0, err
	}
	return AgeInMonths(birth, now), nil
}
