package analysis

import (
	"fmt"
	"math"

	"digit-observer/src/analysis/core"
	"digit-observer/src/models"
)

// DefaultPipSize is the number of significant decimal digits assumed when a
// history response carries no pip_size field.
const DefaultPipSize = 4

// -----------------------------------------------------------------------------

// ExtractLastDigit returns the last significant decimal digit of a price:
// floor(price * 10^pipSize) mod 10. The scaled product is snapped to the
// nearest integer when it lands within rounding-error distance of one, since
// a quoted price like 1.2347 scales to 12346.999999999998 in float64.
// Negative and non-finite prices are rejected explicitly rather than
// silently wrapped.
func ExtractLastDigit(price float64, pipSize int) (int, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price must be finite, got %v", price)
	}
	if price < 0 {
		return 0, fmt.Errorf("price must be non-negative, got %v", price)
	}
	if pipSize < 0 {
		return 0, fmt.Errorf("pip size must be non-negative, got %d", pipSize)
	}

	scaled := price * math.Pow10(pipSize)
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-9*math.Max(rounded, 1) {
		rounded = math.Floor(scaled)
	}
	digit := int(math.Mod(rounded, 10))
	return digit, nil
}

// -----------------------------------------------------------------------------

// ExtractDigits maps a price sequence to its digit series, preserving order.
// The result always has one digit per input price.
func ExtractDigits(prices []float64, pipSize int) ([]int, error) {
	digits := make([]int, len(prices))
	for i, p := range prices {
		d, err := ExtractLastDigit(p, pipSize)
		if err != nil {
			return nil, fmt.Errorf("price at index %d: %w", i, err)
		}
		digits[i] = d
	}
	return digits, nil
}

// -----------------------------------------------------------------------------

// Analyze transforms a digit series into its descriptive statistics.
// An empty series yields a neutral zero result, never an error.
func Analyze(digits []int) models.MDigitStats {
	stats := models.MDigitStats{
		RatioSeries: []models.MRatioSample{},
	}

	if len(digits) == 0 {
		return stats
	}

	stats.Frequency = core.DigitFrequency(digits)
	stats.TotalDigits = len(digits)
	stats.PatternMatchRatio, stats.PatternSamples = core.PatternMatchRatio(digits)
	stats.RatioSeries = core.ConsecutiveRatios(digits)
	stats.CorrelationScore = core.DistributionCorrelation(stats.Frequency, stats.TotalDigits)

	asFloats := make([]float64, len(digits))
	for i, d := range digits {
		asFloats[i] = float64(d)
	}
	stats.MeanDigit, stats.StdDigit = core.CalculateMeanStd(asFloats)

	return stats
}
