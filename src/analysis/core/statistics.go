package core

import (
	"math"

	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------

// DigitFrequency counts occurrences of each digit value 0-9.
// Out-of-range values are ignored; callers validate digits upstream.
func DigitFrequency(digits []int) [10]int {
	var freq [10]int
	for _, d := range digits {
		if d < 0 || d > 9 {
			continue
		}
		freq[d]++
	}
	return freq
}

// -----------------------------------------------------------------------------

// PatternMatchRatio computes the Fibonacci-style recurrence match ratio:
// for each position i >= 2 the predicted digit is (d[i-1]+d[i-2]) mod 10.
// Returns the ratio and the number of samples (len-2). A sample count of
// zero means the ratio is undefined, not computed-as-zero.
func PatternMatchRatio(digits []int) (float64, int) {
	if len(digits) <= 2 {
		return 0, 0
	}

	samples := len(digits) - 2
	matches := 0
	for i := 2; i < len(digits); i++ {
		predicted := (digits[i-1] + digits[i-2]) % 10
		if digits[i] == predicted {
			matches++
		}
	}

	return float64(matches) / float64(samples), samples
}

// -----------------------------------------------------------------------------

// ConsecutiveRatios emits one sample per adjacent pair whose first digit is
// nonzero: (index of first digit, first digit, second digit, second/first).
// Pairs with a zero first digit are skipped entirely, never emitted as Inf/NaN.
func ConsecutiveRatios(digits []int) []models.MRatioSample {
	series := make([]models.MRatioSample, 0, len(digits))

	for i := 0; i+1 < len(digits); i++ {
		d1 := digits[i]
		d2 := digits[i+1]
		if d1 == 0 {
			continue
		}
		series = append(series, models.MRatioSample{
			Index:       i,
			Denominator: d1,
			Numerator:   d2,
			Ratio:       float64(d2) / float64(d1),
		})
	}

	return series
}

// -----------------------------------------------------------------------------

// DistributionCorrelation derives a chi-square-based uniformity score:
// ideal = total/10 per bucket, chi = sum((observed-ideal)^2/ideal),
// score = 1 - chi/(total*9). The formula is a heuristic scalar kept for
// compatibility; it can go negative for pathological distributions.
func DistributionCorrelation(freq [10]int, total int) float64 {
	if total == 0 {
		return 0
	}

	ideal := float64(total) / 10.0
	chi := 0.0
	for _, observed := range freq {
		diff := float64(observed) - ideal
		chi += diff * diff / ideal
	}

	return 1.0 - chi/(float64(total)*9.0)
}

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and standard deviation.
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	// Calculate mean
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	// For single element, return std = 0
	if len(data) == 1 {
		return mean, 0
	}

	// Calculate standard deviation with N denominator (population std)
	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)))
	return mean, std
}
