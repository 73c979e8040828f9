package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type              string                            `json:"type"` // "INITIAL" or "UPDATE"
	RawData           map[string]MTick                  `json:"raw_data"`
	DigitStats        map[string]map[string]MDigitStats `json:"digit_stats"`
	Timestamp         int64                             `json:"timestamp"`
	ProcessingMetrics MProcessingMetrics                `json:"processing_metrics"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command    string   `json:"command"`
	ClientType string   `json:"clientType"`
	Symbols    []string `json:"symbols"`
	Window     string   `json:"window"`
}
