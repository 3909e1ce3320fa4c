package anthropometry

import (
	"fmt"
	"math"
)

// Stunting categories, most severe first.
const (
	CategorySeverelyStunted = "Severely Stunted"
	CategoryStunted         = "Stunted"
	CategoryNormal          = "Normal"
	CategoryTall            = "Tall"
)

// StuntingLabel is one row of the classification table. A z-score strictly below
// Threshold falls into this row unless an earlier row already matched.
type StuntingLabel struct {
	Threshold float64
	Category  string
	Color     string
}

// Classification is the category and display colour for a z-score.
type Classification struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}

// stuntingLabels is evaluated in order; the last row is the catch-all.
var stuntingLabels = []StuntingLabel{
	{Threshold: -2.0, Category: CategorySeverelyStunted, Color: "#e02401"},
	{Threshold: -1.0, Category: CategoryStunted, Color: "#ff9e00"},
	{Threshold: 1.0, Category: CategoryNormal, Color: "#26a269"},
	{Threshold: math.Inf(1), Category: CategoryTall, Color: "#3182ce"},
}

// StuntingLabels returns a copy of the classification table in evaluation order.
func StuntingLabels() []StuntingLabel {
	out := make([]StuntingLabel, len(stuntingLabels))
	copy(out, stuntingLabels)
	return out
}

// Classify maps a z-score to its stunting category. Every input, including NaN,
// maps to exactly one label: values not below any bound take the last row.
func Classify(z float64) Classification {
	return classifyWith(stuntingLabels, z)
}

func classifyWith(labels []StuntingLabel, z float64) Classification {
	for _, l := range labels {
		if z < l.Threshold {
			return Classification{Category: l.Category, Color: l.Color}
		}
	}
	last := labels[len(labels)-1]
	return Classification{Category: last.Category, Color: last.Color}
}

// ValidateLabels checks that a classification table is usable: non-empty,
// strictly increasing thresholds, and a catch-all last row holding the maximum.
func ValidateLabels(labels []StuntingLabel) error {
	if len(labels) == 0 {
		return fmt.Errorf("label table is empty")
	}
	for i := 1; i < len(labels); i++ {
		if !(labels[i].Threshold > labels[i-1].Threshold) {
			return fmt.Errorf("threshold %d (%v) must be greater than threshold %d (%v)",
				i, labels[i].Threshold, i-1, labels[i-1].Threshold)
		}
	}
	for i, l := range labels {
		if l.Category == "" {
			return fmt.Errorf("label %d has no category", i)
		}
	}
	return nil
}
