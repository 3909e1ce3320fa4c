// Package anthropometry scores infant growth against a height-for-age reference.
//
// Everything here is a pure function over immutable tables: age in months from a
// birth date, median height lookup by sex and month, a simplified height-for-age
// z-score (HAZ), stunting classification, and a BMI-based weight estimate. All
// functions are safe for concurrent use.
//
// The HAZ is not the WHO LMS z-score. The standard deviation is approximated as
// 5% of the median height, floored at 1 cm:
//
//	median := MedianHeight(sex, floor(ageMonths))
//	sd := max(median*0.05, 1.0)
//	z := (heightCm - median) / sd
//
// Classification boundaries are therefore only meaningful relative to this
// approximation.
package anthropometry
