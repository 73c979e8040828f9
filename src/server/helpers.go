package server

import (
	"encoding/json"

	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------

func safeProcessingMetrics(data map[string]interface{}, key string) models.MProcessingMetrics {
	if val, ok := data[key]; ok {
		if m, ok := val.(models.MProcessingMetrics); ok {
			return m
		}
		// Try map conversion if it comes as generic map (e.g. from JSON)
		if m, ok := val.(map[string]interface{}); ok {
			return models.MProcessingMetrics{
				AnalysisTimeSeconds: safeFloat64(m, "analysis_time_seconds"),
				TicksProcessed:      int(safeInt64(m, "ticks_processed")),
				WindowsProcessed:    int(safeInt64(m, "windows_processed")),
			}
		}
	}
	return models.MProcessingMetrics{}
}

// -----------------------------------------------------------------------------

func safeTickMap(data map[string]interface{}, key string) map[string]models.MTick {
	result := make(map[string]models.MTick)
	if val, ok := data[key]; ok {
		// If it's already the right type
		if m, ok := val.(map[string]models.MTick); ok {
			return m
		}

		// If it needs conversion (e.g. from JSON interface{})
		if m, ok := val.(map[string]interface{}); ok {
			for k, v := range m {
				if tick, ok := v.(models.MTick); ok {
					result[k] = tick
				} else if tickMap, ok := v.(map[string]interface{}); ok {
					jsonBytes, _ := json.Marshal(tickMap)
					var tick models.MTick
					if err := json.Unmarshal(jsonBytes, &tick); err == nil {
						result[k] = tick
					}
				}
			}
		}
	}
	return result
}

// -----------------------------------------------------------------------------

func safeDigitStatsMap(data map[string]interface{}, key string) map[string]map[string]models.MDigitStats {
	result := make(map[string]map[string]models.MDigitStats)
	if val, ok := data[key]; ok {
		if m, ok := val.(map[string]map[string]models.MDigitStats); ok {
			return m
		}

		// Fallback for generic structure
		if m, ok := val.(map[string]interface{}); ok {
			for sym, windows := range m {
				result[sym] = make(map[string]models.MDigitStats)
				if wMap, ok := windows.(map[string]interface{}); ok {
					for wName, wData := range wMap {
						if stats, ok := wData.(models.MDigitStats); ok {
							result[sym][wName] = stats
						} else if statsMap, ok := wData.(map[string]interface{}); ok {
							jsonBytes, _ := json.Marshal(statsMap)
							var stats models.MDigitStats
							if err := json.Unmarshal(jsonBytes, &stats); err == nil {
								result[sym][wName] = stats
							}
						}
					}
				} else if wTyped, ok := windows.(map[string]models.MDigitStats); ok {
					result[sym] = wTyped
				}
			}
		}
	}
	return result
}

// -----------------------------------------------------------------------------

func safeFloat64(data map[string]interface{}, key string) float64 {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case int64:
			return float64(v)
		}
	}
	return 0.0
}

// -----------------------------------------------------------------------------

func safeInt64(data map[string]interface{}, key string) int64 {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
