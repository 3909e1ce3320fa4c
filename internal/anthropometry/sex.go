package anthropometry

import (
	"fmt"
	"strings"
)

// Sex selects the reference table used for scoring.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// IsValid checks if the sex value is one of the two supported categories
func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale:
		return true
	}
	return false
}

// ParseSex accepts "male"/"female" and the single-letter and boy/girl forms.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "boy":
		return SexMale, nil
	case "female", "f", "girl":
		return SexFemale, nil
	}
	return "", fmt.Errorf("invalid sex %q (expected male or female)", s)
}
