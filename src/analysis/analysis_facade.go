package analysis

import (
	"sort"
	"strconv"
	"time"

	"digit-observer/src/logger"
	"digit-observer/src/models"
)

type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// WindowName converts a tick-count window into its canonical name.
func WindowName(window int) string {
	return strconv.Itoa(window)
}

// -----------------------------------------------------------------------------

// AnalyzeWindows computes digit statistics over the trailing N ticks for each
// configured window. Windows larger than the available history use whatever
// is there; an empty tick list yields no entries.
func (a *AnalysisFacade) AnalyzeWindows(ticks []models.MTick, windows []int) map[string]models.MDigitStats {
	results := make(map[string]models.MDigitStats)

	if len(ticks) == 0 {
		return results
	}

	// Stable sort by epoch so trailing slices are well defined and equal
	// epochs keep their arrival order (the digit series is order-sensitive)
	sorted := make([]models.MTick, len(ticks))
	copy(sorted, ticks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Epoch < sorted[j].Epoch
	})

	symbol := sorted[0].Symbol
	now := time.Now().UTC()

	for _, w := range windows {
		if w <= 0 {
			a.Logger.Error("Invalid window size %d", w)
			continue
		}

		subset := sorted
		if len(sorted) > w {
			subset = sorted[len(sorted)-w:]
		}

		digits := make([]int, len(subset))
		for i, t := range subset {
			digits[i] = t.Digit
		}

		stats := Analyze(digits)
		stats.Symbol = symbol
		stats.WindowName = WindowName(w)
		stats.StartEpoch = subset[0].Epoch
		stats.EndEpoch = subset[len(subset)-1].Epoch
		stats.CreatedAt = now

		results[stats.WindowName] = stats
	}

	return results
}
