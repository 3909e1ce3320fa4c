package anthropometry

// DefaultBMI is the body-mass index assumed when estimating infant weight.
const DefaultBMI = 15.0

// EstimateWeight returns an approximate weight in kilograms for heightCm at
// DefaultBMI.
func EstimateWeight(heightCm float64) float64 {
	return EstimateWeightWithBMI(heightCm, DefaultBMI)
}

// EstimateWeightWithBMI returns bmi * (heightCm/100)^2. Non-positive heights give
// a defined result (zero or positive) rather than an error.
func EstimateWeightWithBMI(heightCm, bmi float64) float64 {
	m := heightCm / 100
	return bmi * m * m
}
