package server

import (
	"testing"

	"digit-observer/src/logger"
	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------

func testState() *models.MLatestData {
	return &models.MLatestData{
		Type: "UPDATE",
		RawData: map[string]models.MTick{
			"R_50":  {Symbol: "R_50", Epoch: 100, Price: 1.2345, Digit: 5},
			"R_100": {Symbol: "R_100", Epoch: 101, Price: 2.3456, Digit: 6},
		},
		DigitStats: map[string]map[string]models.MDigitStats{
			"R_50": {
				"25": {Symbol: "R_50", WindowName: "25", TotalDigits: 25},
				"50": {Symbol: "R_50", WindowName: "50", TotalDigits: 50},
			},
			"R_100": {
				"25": {Symbol: "R_100", WindowName: "25", TotalDigits: 25},
			},
		},
		Timestamp: 1700000000,
	}
}

func testServer() *DashboardServer {
	return &DashboardServer{
		Logger:      logger.NewLogger(nil, "test"),
		latestState: testState(),
	}
}

// -----------------------------------------------------------------------------

func TestSymbolViewResponseFiltersBySymbolAndWindow(t *testing.T) {
	s := testServer()

	resp := s.symbolViewResponse([]string{"R_50"}, "25")

	if resp.Type != "INITIAL" {
		t.Errorf("type = %q, want INITIAL", resp.Type)
	}
	if len(resp.RawData) != 1 {
		t.Errorf("raw data has %d symbols, want 1", len(resp.RawData))
	}
	if _, ok := resp.RawData["R_50"]; !ok {
		t.Error("raw data missing R_50")
	}

	windows, ok := resp.DigitStats["R_50"]
	if !ok {
		t.Fatal("digit stats missing R_50")
	}
	if len(windows) != 1 {
		t.Errorf("got %d windows, want 1", len(windows))
	}
	if _, ok := windows["25"]; !ok {
		t.Error("missing window 25")
	}
}

// -----------------------------------------------------------------------------

func TestSymbolViewResponseNoFilters(t *testing.T) {
	s := testServer()

	resp := s.symbolViewResponse(nil, "")

	if len(resp.RawData) != 2 {
		t.Errorf("raw data has %d symbols, want 2", len(resp.RawData))
	}
	if len(resp.DigitStats["R_50"]) != 2 {
		t.Errorf("R_50 has %d windows, want 2", len(resp.DigitStats["R_50"]))
	}
}

// -----------------------------------------------------------------------------

func TestDashboardResponseRequiresWindow(t *testing.T) {
	s := testServer()

	resp := s.dashboardResponse(nil, "")
	if len(resp.DigitStats) != 0 {
		t.Errorf("got %d stat entries without a window, want 0", len(resp.DigitStats))
	}

	resp = s.dashboardResponse(nil, "25")
	if len(resp.DigitStats) != 2 {
		t.Errorf("got %d symbols for window 25, want 2", len(resp.DigitStats))
	}
	if _, ok := resp.DigitStats["R_100"]["25"]; !ok {
		t.Error("missing R_100 window 25")
	}
	// R_100 has no window 50
	resp = s.dashboardResponse(nil, "50")
	if len(resp.DigitStats) != 1 {
		t.Errorf("got %d symbols for window 50, want 1", len(resp.DigitStats))
	}
}

// -----------------------------------------------------------------------------

func TestSafeConversions(t *testing.T) {
	data := map[string]interface{}{
		"ts_int":   42,
		"ts_int64": int64(43),
		"ts_float": 44.9,
		"metrics": models.MProcessingMetrics{
			AnalysisTimeSeconds: 0.5,
			TicksProcessed:      100,
			WindowsProcessed:    3,
		},
		"metrics_generic": map[string]interface{}{
			"analysis_time_seconds": 0.25,
			"ticks_processed":       float64(50),
			"windows_processed":     2,
		},
	}

	if got := safeInt64(data, "ts_int"); got != 42 {
		t.Errorf("safeInt64(int) = %d, want 42", got)
	}
	if got := safeInt64(data, "ts_int64"); got != 43 {
		t.Errorf("safeInt64(int64) = %d, want 43", got)
	}
	if got := safeInt64(data, "ts_float"); got != 44 {
		t.Errorf("safeInt64(float64) = %d, want 44", got)
	}
	if got := safeInt64(data, "missing"); got != 0 {
		t.Errorf("safeInt64(missing) = %d, want 0", got)
	}

	m := safeProcessingMetrics(data, "metrics")
	if m.TicksProcessed != 100 || m.WindowsProcessed != 3 {
		t.Errorf("typed metrics = %+v", m)
	}

	m = safeProcessingMetrics(data, "metrics_generic")
	if m.AnalysisTimeSeconds != 0.25 || m.TicksProcessed != 50 || m.WindowsProcessed != 2 {
		t.Errorf("generic metrics = %+v", m)
	}
}

// -----------------------------------------------------------------------------

func TestSafeTickMap(t *testing.T) {
	typed := map[string]models.MTick{"R_50": {Symbol: "R_50", Digit: 5}}
	data := map[string]interface{}{
		"typed": typed,
		"generic": map[string]interface{}{
			"R_100": models.MTick{Symbol: "R_100", Digit: 7},
		},
	}

	got := safeTickMap(data, "typed")
	if got["R_50"].Digit != 5 {
		t.Errorf("typed map digit = %d, want 5", got["R_50"].Digit)
	}

	got = safeTickMap(data, "generic")
	if got["R_100"].Digit != 7 {
		t.Errorf("generic map digit = %d, want 7", got["R_100"].Digit)
	}

	if got := safeTickMap(data, "missing"); len(got) != 0 {
		t.Errorf("missing key yielded %d entries, want 0", len(got))
	}
}

// -----------------------------------------------------------------------------

func TestSafeDigitStatsMap(t *testing.T) {
	data := map[string]interface{}{
		"stats": map[string]interface{}{
			"R_50": map[string]models.MDigitStats{
				"25": {Symbol: "R_50", WindowName: "25", TotalDigits: 25},
			},
		},
	}

	got := safeDigitStatsMap(data, "stats")
	if got["R_50"]["25"].TotalDigits != 25 {
		t.Errorf("stats = %+v, want TotalDigits 25", got)
	}
}
