package core

import (
	"math"
	"testing"
)

// -----------------------------------------------------------------------------

func TestDigitFrequency(t *testing.T) {
	digits := []int{0, 1, 1, 2, 2, 2, 9, 9, 9, 9}
	freq := DigitFrequency(digits)

	want := [10]int{1, 2, 3, 0, 0, 0, 0, 0, 0, 4}
	if freq != want {
		t.Errorf("DigitFrequency = %v, want %v", freq, want)
	}
}

// -----------------------------------------------------------------------------

func TestDigitFrequencyIgnoresOutOfRange(t *testing.T) {
	freq := DigitFrequency([]int{5, -1, 12, 5})
	if freq[5] != 2 {
		t.Errorf("freq[5] = %d, want 2", freq[5])
	}

	sum := 0
	for _, c := range freq {
		sum += c
	}
	if sum != 2 {
		t.Errorf("frequency sum = %d, want 2 (out-of-range ignored)", sum)
	}
}

// -----------------------------------------------------------------------------

func TestPatternMatchRatio(t *testing.T) {
	tests := []struct {
		name        string
		digits      []int
		wantRatio   float64
		wantSamples int
	}{
		{"empty", nil, 0, 0},
		{"single", []int{5}, 0, 0},
		{"pair", []int{5, 3}, 0, 0},
		{"perfect fibonacci", []int{1, 1, 2, 3, 5, 8, 3}, 1.0, 5},
		{"no matches", []int{1, 1, 3, 3, 3}, 0.0, 3},
		{"half matches", []int{1, 1, 2, 9}, 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio, samples := PatternMatchRatio(tt.digits)
			if samples != tt.wantSamples {
				t.Errorf("samples = %d, want %d", samples, tt.wantSamples)
			}
			if ratio != tt.wantRatio {
				t.Errorf("ratio = %v, want %v", ratio, tt.wantRatio)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestConsecutiveRatios(t *testing.T) {
	series := ConsecutiveRatios([]int{2, 4, 0, 6, 3})

	// Pairs: (2,4) idx 0, (4,0) idx 1, (0,6) skipped, (6,3) idx 3
	if len(series) != 3 {
		t.Fatalf("got %d samples, want 3", len(series))
	}

	if series[0].Index != 0 || series[0].Ratio != 2.0 {
		t.Errorf("sample 0 = %+v, want index 0 ratio 2.0", series[0])
	}
	if series[1].Index != 1 || series[1].Ratio != 0.0 {
		t.Errorf("sample 1 = %+v, want index 1 ratio 0.0", series[1])
	}
	if series[2].Index != 3 || series[2].Ratio != 0.5 {
		t.Errorf("sample 2 = %+v, want index 3 ratio 0.5", series[2])
	}
}

// -----------------------------------------------------------------------------

func TestConsecutiveRatiosAllZeroFirst(t *testing.T) {
	series := ConsecutiveRatios([]int{0, 0, 0, 5})
	// Only (0,0), (0,0), (0,5) pairs exist and all are skipped
	if len(series) != 0 {
		t.Errorf("got %d samples, want 0", len(series))
	}
}

// -----------------------------------------------------------------------------

func TestDistributionCorrelation(t *testing.T) {
	// Perfectly uniform distribution scores exactly 1
	uniform := [10]int{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}
	if got := DistributionCorrelation(uniform, 100); got != 1.0 {
		t.Errorf("uniform score = %v, want 1.0", got)
	}

	// Everything in one bucket: chi = 9*total/10*... score = 1 - chi/(total*9)
	// For total=100 all in bucket 0: chi = (100-10)^2/10 + 9*(0-10)^2/10 = 810+90 = 900
	// score = 1 - 900/900 = 0
	concentrated := [10]int{100}
	if got := DistributionCorrelation(concentrated, 100); got != 0.0 {
		t.Errorf("concentrated score = %v, want 0.0", got)
	}

	// Empty distribution is neutral
	if got := DistributionCorrelation([10]int{}, 0); got != 0.0 {
		t.Errorf("empty score = %v, want 0.0", got)
	}
}

// -----------------------------------------------------------------------------

func TestCalculateMeanStd(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5.0 {
		t.Errorf("mean = %v, want 5.0", mean)
	}
	if math.Abs(std-2.0) > 1e-12 {
		t.Errorf("std = %v, want 2.0", std)
	}

	mean, std = CalculateMeanStd([]float64{3.5})
	if mean != 3.5 || std != 0 {
		t.Errorf("single element: mean=%v std=%v, want 3.5 and 0", mean, std)
	}

	mean, std = CalculateMeanStd(nil)
	if mean != 0 || std != 0 {
		t.Errorf("empty: mean=%v std=%v, want 0 and 0", mean, std)
	}
}
