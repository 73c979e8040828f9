package models

import "time"

// MRatioSample is one entry of the consecutive-digit ratio series.
// Index is the position of the first digit of the pair; pairs whose first
// digit is zero are never emitted.
type MRatioSample struct {
	Index       int     `json:"index"`
	Denominator int     `json:"denominator"`
	Numerator   int     `json:"numerator"`
	Ratio       float64 `json:"ratio"`
}

// MDigitStats represents the calculated digit statistics for a window.
type MDigitStats struct {
	Symbol            string         `json:"symbol"`
	WindowName        string         `json:"window_name"` // e.g., "25", "100"
	Frequency         [10]int        `json:"frequency"`
	TotalDigits       int            `json:"total_digits"`
	PatternMatchRatio float64        `json:"pattern_match_ratio"`
	PatternSamples    int            `json:"pattern_samples"` // 0 means the ratio is undefined, not zero
	RatioSeries       []MRatioSample `json:"ratio_series"`
	CorrelationScore  float64        `json:"correlation_score"`
	MeanDigit         float64        `json:"mean_digit"`
	StdDigit          float64        `json:"std_digit"`
	StartEpoch        int64          `json:"start_epoch"`
	EndEpoch          int64          `json:"end_epoch"`
	CreatedAt         time.Time      `json:"created_at"`
}
