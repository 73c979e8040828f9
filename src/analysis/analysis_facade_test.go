package analysis

import (
	"testing"

	"digit-observer/src/logger"
	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------

func makeTicks(symbol string, digits []int) []models.MTick {
	ticks := make([]models.MTick, len(digits))
	for i, d := range digits {
		ticks[i] = models.MTick{
			Symbol: symbol,
			Epoch:  int64(1700000000 + i),
			Price:  1.0 + float64(d)/10000.0,
			Digit:  d,
		}
	}
	return ticks
}

// -----------------------------------------------------------------------------

func TestAnalyzeWindowsTrailingSelection(t *testing.T) {
	facade := NewAnalysisFacade(&models.MConfig{}, logger.NewLogger(nil, "test"))

	ticks := makeTicks("R_50", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 0})
	results := facade.AnalyzeWindows(ticks, []int{5, 10, 25})

	// Window of 5 should only see the last five digits
	w5, ok := results["5"]
	if !ok {
		t.Fatal("missing window 5")
	}
	if w5.TotalDigits != 5 {
		t.Errorf("window 5 TotalDigits = %d, want 5", w5.TotalDigits)
	}
	if w5.StartEpoch != 1700000005 || w5.EndEpoch != 1700000009 {
		t.Errorf("window 5 epochs = [%d, %d], want [1700000005, 1700000009]", w5.StartEpoch, w5.EndEpoch)
	}
	if w5.Frequency[1] != 0 || w5.Frequency[6] != 1 {
		t.Errorf("window 5 should only contain trailing digits, freq = %v", w5.Frequency)
	}

	// Oversized window uses whatever history is there
	w25, ok := results["25"]
	if !ok {
		t.Fatal("missing window 25")
	}
	if w25.TotalDigits != 10 {
		t.Errorf("window 25 TotalDigits = %d, want 10", w25.TotalDigits)
	}

	for name, stats := range results {
		if stats.Symbol != "R_50" {
			t.Errorf("window %s symbol = %q, want R_50", name, stats.Symbol)
		}
		if stats.WindowName != name {
			t.Errorf("window key %q != WindowName %q", name, stats.WindowName)
		}
	}
}

// -----------------------------------------------------------------------------

func TestAnalyzeWindowsSortsUnorderedInput(t *testing.T) {
	facade := NewAnalysisFacade(&models.MConfig{}, logger.NewLogger(nil, "test"))

	ticks := []models.MTick{
		{Symbol: "R_100", Epoch: 30, Digit: 3},
		{Symbol: "R_100", Epoch: 10, Digit: 1},
		{Symbol: "R_100", Epoch: 20, Digit: 2},
	}

	results := facade.AnalyzeWindows(ticks, []int{2})
	stats, ok := results["2"]
	if !ok {
		t.Fatal("missing window 2")
	}
	if stats.StartEpoch != 20 || stats.EndEpoch != 30 {
		t.Errorf("epochs = [%d, %d], want [20, 30]", stats.StartEpoch, stats.EndEpoch)
	}
	if stats.Frequency[1] != 0 {
		t.Error("window should not include the oldest tick after sorting")
	}
}

// -----------------------------------------------------------------------------

func TestAnalyzeWindowsEqualEpochsKeepArrivalOrder(t *testing.T) {
	facade := NewAnalysisFacade(&models.MConfig{}, logger.NewLogger(nil, "test"))

	// All epochs equal: sorting must not permute the order-sensitive series
	digits := []int{1, 1, 2, 3, 5, 8, 3}
	ticks := make([]models.MTick, len(digits))
	for i, d := range digits {
		ticks[i] = models.MTick{Symbol: "R_50", Epoch: 42, Digit: d}
	}

	results := facade.AnalyzeWindows(ticks, []int{7})
	stats, ok := results["7"]
	if !ok {
		t.Fatal("missing window 7")
	}
	if stats.PatternMatchRatio != 1.0 {
		t.Errorf("PatternMatchRatio = %v, want 1.0 (arrival order preserved)", stats.PatternMatchRatio)
	}
	if stats.PatternSamples != 5 {
		t.Errorf("PatternSamples = %d, want 5", stats.PatternSamples)
	}
}

// -----------------------------------------------------------------------------

func TestAnalyzeWindowsEmptyInput(t *testing.T) {
	facade := NewAnalysisFacade(&models.MConfig{}, logger.NewLogger(nil, "test"))

	results := facade.AnalyzeWindows(nil, []int{25, 50})
	if len(results) != 0 {
		t.Errorf("got %d results for empty ticks, want 0", len(results))
	}
}
