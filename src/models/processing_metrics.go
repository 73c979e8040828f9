package models

// MProcessingMetrics represents the performance metrics for the analysis pipeline.
type MProcessingMetrics struct {
	AnalysisTimeSeconds float64 `json:"analysis_time_seconds"`
	TicksProcessed      int     `json:"ticks_processed"`
	WindowsProcessed    int     `json:"windows_processed"`
}
