package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar decides market-open minutes for a feed symbol family.
type TradingCalendar struct {
	Calendar   *calendar.Calendar
	AlwaysOpen bool
	FullDay    bool // open around the clock on trading days (forex)
	Fallback   bool
	Timezone   *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar maps a feed symbol to its trading calendar.
// Synthetic indices trade continuously; frx pairs follow the Mon-Fri forex
// week; OTC index symbols map to the MIC of their underlying exchange
// (ISO 10383, see scmhub/calendar for supported MICs).
func GetCalendar(symbol string) *TradingCalendar {
	// Synthetic symbol families never close
	for _, prefix := range []string{"R_", "1HZ", "BOOM", "CRASH", "JD", "RDBEAR", "RDBULL"} {
		if strings.HasPrefix(symbol, prefix) {
			return &TradingCalendar{AlwaysOpen: true}
		}
	}

	// Forex pairs: around the clock, Monday through Friday
	if strings.HasPrefix(symbol, "frx") {
		return &TradingCalendar{FullDay: true, Timezone: time.UTC}
	}

	// OTC index symbols -> underlying exchange MIC
	mic := "xnys" // Default US NYSE
	if strings.HasPrefix(symbol, "OTC_") {
		switch symbol {
		case "OTC_FTSE":
			mic = "xlon"
		case "OTC_GDAXI":
			mic = "xfra"
		case "OTC_FCHI":
			mic = "xpar"
		case "OTC_N225":
			mic = "xtks"
		case "OTC_HSI":
			mic = "xhkg"
		case "OTC_AS51":
			mic = "xasx"
		case "OTC_SSMI":
			mic = "xswx"
		}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		// Fallback to xnys if not found
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple fallback (Mon-Fri 09:30-16:00 NY).", mic)
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC // Worst case
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}

	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.FullDay || tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}

	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.FullDay {
		return tc.IsTradingDay(t)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		if (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16 {
			return true
		}
		return false
	}

	return tc.Calendar.IsOpen(t)
}
