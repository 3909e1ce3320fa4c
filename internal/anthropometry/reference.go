package anthropometry

// ReferenceMonths is the number of months covered by the reference tables (0..59).
const ReferenceMonths = 60

// Median length/height in centimetres by completed month, WHO 2006 child growth
// standards.
var (
	boysMedianHeight = [ReferenceMonths]float64{
		49.9, 54.7, 58.4, 61.4, 63.9, 65.9, 67.6, 69.2, 70.6, 72.0, // 0-9
		73.3, 74.5, 75.7, 76.9, 78.0, 79.1, 80.2, 81.2, 82.3, 83.2, // 10-19
		84.2, 85.1, 86.0, 87.0, 87.9, 88.8, 89.6, 90.5, 91.3, 92.1, // 20-29
		92.9, 93.7, 94.4, 95.2, 95.9, 96.6, 97.3, 98.0, 98.7, 99.3, // 30-39
		99.9, 100.6, 101.2, 101.8, 102.4, 103.0, 103.6, 104.2, 104.8, 105.3, // 40-49
		105.9, 106.4, 107.0, 107.5, 108.0, 108.5, 109.0, 109.5, 110.0, 110.5, // 50-59
	}

	girlsMedianHeight = [ReferenceMonths]float64{
		49.1, 53.7, 57.1, 59.8, 62.1, 64.0, 65.7, 67.3, 68.7, 70.1, // 0-9
		71.5, 72.8, 74.0, 75.2, 76.4, 77.5, 78.6, 79.7, 80.7, 81.7, // 10-19
		82.7, 83.7, 84.6, 85.5, 86.4, 87.3, 88.2, 89.1, 89.9, 90.7, // 20-29
		91.4, 92.2, 92.9, 93.6, 94.3, 95.0, 95.7, 96.3, 97.0, 97.6, // 30-39
		98.2, 98.8, 99.4, 100.0, 100.6, 101.2, 101.7, 102.3, 102.8, 103.3, // 40-49
		103.9, 104.4, 104.9, 105.4, 105.9, 106.4, 106.9, 107.4, 107.9, 108.4, // 50-59
	}
)

// MedianHeight returns the reference median height in centimetres for sex at
// ageMonths. The age is clamped into [0, 59]: older children reuse month 59 and
// negative ages reuse month 0. Any sex other than SexMale reads the girls' table;
// callers validate sex at the input boundary.
func MedianHeight(sex Sex, ageMonths int) float64 {
	idx := clampMonth(ageMonths)
	if sex == SexMale {
		return boysMedianHeight[idx]
	}
	return girlsMedianHeight[idx]
}

func clampMonth(m int) int {
	if m < 0 {
		return 0
	}
	if m > ReferenceMonths-1 {
		return ReferenceMonths - 1
	}
	return m
}
