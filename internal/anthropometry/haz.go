package anthropometry

import "math"

const (
	// sdFraction approximates one standard deviation as a fraction of the median.
	sdFraction = 0.05
	// minSD keeps the spread from collapsing at very young ages.
	minSD = 1.0
)

// HeightForAgeZ returns the simplified height-for-age z-score for a child of the
// given sex measuring heightCm at ageMonths. Fractional ages are floored.
func HeightForAgeZ(heightCm, ageMonths float64, sex Sex) float64 {
	median := MedianHeight(sex, int(math.Floor(ageMonths)))
	sd := math.Max(median*sdFraction, minSD)
	return (heightCm - median) / sd
}

// Assessment is a scored and classified height measurement.
type Assessment struct {
	HAZ      float64 `json:"haz"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
}

// Assess scores heightCm and classifies the result.
func Assess(heightCm, ageMonths float64, sex Sex) Assessment {
	z := HeightForAgeZ(heightCm, ageMonths, sex)
	c := Classify(z)
	return Assessment{HAZ: z, Category: c.Category, Color: c.Color}
}
