package anthropometry

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedianHeightTable(t *testing.T) {
	for m := 0; m < ReferenceMonths; m++ {
		assert.Equal(t, boysMedianHeight[m], MedianHeight(SexMale, m), "boys month %d", m)
		assert.Equal(t, girlsMedianHeight[m], MedianHeight(SexFemale, m), "girls month %d", m)
	}
}

func TestMedianHeightClamping(t *testing.T) {
	tests := []struct {
		name string
		sex  Sex
		age  int
		want float64
	}{
		{"negative age uses month 0 (boys)", SexMale, -3, 49.9},
		{"negative age uses month 0 (girls)", SexFemale, -1, 49.1},
		{"month 60 uses month 59 (boys)", SexMale, 60, 110.5},
		{"far beyond table (girls)", SexFemale, 240, 108.4},
		{"month 12 girls", SexFemale, 12, 74.0},
		{"month 23 boys", SexMale, 23, 87.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MedianHeight(tt.sex, tt.age))
		})
	}
}

func TestHeightAtMedianScoresZero(t *testing.T) {
	for _, sex := range []Sex{SexMale, SexFemale} {
		for m := 0; m < ReferenceMonths; m++ {
			z := HeightForAgeZ(MedianHeight(sex, m), float64(m), sex)
			assert.InDelta(t, 0, z, 1e-12, "%s month %d", sex, m)
		}
	}
}

func TestHeightForAgeZFloorsFractionalAge(t *testing.T) {
	assert.Equal(t, HeightForAgeZ(80, 12, SexFemale), HeightForAgeZ(80, 12.97, SexFemale))
}

func TestHeightForAgeZUsesFivePercentSD(t *testing.T) {
	// median 74.0 → sd 3.7
	z := HeightForAgeZ(74.0+3.7, 12, SexFemale)
	assert.InDelta(t, 1.0, z, 1e-9)
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		z        float64
		category string
		color    string
	}{
		{-3.5, CategorySeverelyStunted, "#e02401"},
		{-2.0001, CategorySeverelyStunted, "#e02401"},
		{-2.0, CategoryStunted, "#ff9e00"},
		{-1.5, CategoryStunted, "#ff9e00"},
		{-1.0, CategoryNormal, "#26a269"},
		{0, CategoryNormal, "#26a269"},
		{0.9999, CategoryNormal, "#26a269"},
		{1.0, CategoryTall, "#3182ce"},
		{150, CategoryTall, "#3182ce"},
		{math.Inf(1), CategoryTall, "#3182ce"},
		{math.Inf(-1), CategorySeverelyStunted, "#e02401"},
	}
	for _, tt := range tests {
		got := Classify(tt.z)
		assert.Equal(t, tt.category, got.Category, "z=%v", tt.z)
		assert.Equal(t, tt.color, got.Color, "z=%v", tt.z)
	}
}

func TestClassifyNaNFallsBackToLastRow(t *testing.T) {
	assert.Equal(t, CategoryTall, Classify(math.NaN()).Category)
}

func TestClassifyWithExhaustedTable(t *testing.T) {
	labels := []StuntingLabel{
		{Threshold: 0, Category: "low", Color: "red"},
		{Threshold: 10, Category: "high", Color: "blue"},
	}
	assert.Equal(t, Classification{Category: "high", Color: "blue"}, classifyWith(labels, 50))
}

func TestValidateLabels(t *testing.T) {
	require.NoError(t, ValidateLabels(StuntingLabels()))

	err := ValidateLabels([]StuntingLabel{
		{Threshold: 1, Category: "a"},
		{Threshold: 1, Category: "b"},
	})
	assert.Error(t, err)

	assert.Error(t, ValidateLabels(nil))
	assert.Error(t, ValidateLabels([]StuntingLabel{{Threshold: 1}}))
}

func TestStuntingLabelsReturnsCopy(t *testing.T) {
	labels := StuntingLabels()
	labels[0].Category = "changed"
	assert.Equal(t, CategorySeverelyStunted, Classify(-5).Category)
}

func TestEstimateWeight(t *testing.T) {
	assert.Equal(t, 15.0, EstimateWeight(100))
	assert.Equal(t, 15.0, EstimateWeightWithBMI(100, 15.0))
	assert.InDelta(t, 9.6, EstimateWeight(80), 1e-9)
	assert.InDelta(t, 16*0.25, EstimateWeightWithBMI(50, 16), 1e-9)
	assert.Equal(t, 0.0, EstimateWeight(0))
	assert.False(t, math.IsNaN(EstimateWeight(-10)))
}

func TestAssessEndToEnd(t *testing.T) {
	t.Run("boy 90cm at 24 months is normal", func(t *testing.T) {
		a := Assess(90, 24, SexMale)
		// median 87.9, sd 4.395
		assert.InDelta(t, (90-87.9)/4.395, a.HAZ, 1e-9)
		assert.Equal(t, CategoryNormal, a.Category)
		assert.Equal(t, "#26a269", a.Color)
	})

	t.Run("girl 70cm at 12 months is stunted", func(t *testing.T) {
		a := Assess(70, 12, SexFemale)
		assert.InDelta(t, -1.081, a.HAZ, 0.001)
		assert.Equal(t, CategoryStunted, a.Category)
		assert.Equal(t, "#ff9e00", a.Color)
	})

	t.Run("newborn floor on sd", func(t *testing.T) {
		// 49.9 * 0.05 = 2.495, above the 1cm floor
		a := Assess(49.9-2*2.495-0.01, 0, SexMale)
		assert.Equal(t, CategorySeverelyStunted, a.Category)
	})
}

func TestAgeInMonths(t *testing.T) {
	birth := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same instant", birth, 0},
		{"30 days", birth.AddDate(0, 0, 30), 0},
		{"31 days", birth.AddDate(0, 0, 31), 1},
		{"30 days and an hour rounds the day up", birth.AddDate(0, 0, 30).Add(time.Hour), 1},
		{"one year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 12},
		{"five years", time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeInMonths(birth, tt.now))
		})
	}
}

func TestAgeInMonthsIsSymmetric(t *testing.T) {
	birth := time.Date(2023, 6, 15, 8, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 3, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, AgeInMonths(birth, now), AgeInMonths(now, birth))
	assert.GreaterOrEqual(t, AgeInMonths(now, birth), 0)
}

func TestParseBirthDate(t *testing.T) {
	got, err := ParseBirthDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseBirthDate("2024-03-05T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	for _, bad := range []string{"", "   ", "yesterday", "2024-13-01", "05/03/2024"} {
		_, err := ParseBirthDate(bad)
		assert.True(t, errors.Is(err, ErrInvalidDate), "input %q", bad)
	}
}

func TestAgeInMonthsFrom(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	months, err := AgeInMonthsFrom("2024-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, 12, months)

	_, err = AgeInMonthsFrom("not-a-date", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseSex(t *testing.T) {
	for in, want := range map[string]Sex{"male": SexMale, "M": SexMale, "boy": SexMale, " Female ": SexFemale, "girl": SexFemale} {
		got, err := ParseSex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSex("other")
	assert.Error(t, err)
	assert.False(t, Sex("other").IsValid())
}
