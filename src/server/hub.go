package server

import (
	"encoding/json"
	"net/http"

	"digit-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas - updates internal state by merging new data (Deep Merge)
func (s *DashboardServer) UpdateAllDatas(data interface{}) {
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		s.Logger.Info("AllDatas expected map[string]interface{}, got %T", data)
		return
	}

	newRaw := safeTickMap(dataMap, "raw_data")
	newStats := safeDigitStatsMap(dataMap, "digit_stats")
	newTs := safeInt64(dataMap, "timestamp")
	newMetrics := safeProcessingMetrics(dataMap, "processing_metrics")

	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	// 1. Merge Raw Data
	if s.latestState.RawData == nil {
		s.latestState.RawData = make(map[string]models.MTick)
	}
	for k, v := range newRaw {
		s.latestState.RawData[k] = v
	}

	// 2. Merge Digit Stats. The server holds only the most recent analysis
	// snapshot for each window.
	if s.latestState.DigitStats == nil {
		s.latestState.DigitStats = make(map[string]map[string]models.MDigitStats)
	}
	for sym, windows := range newStats {
		if s.latestState.DigitStats[sym] == nil {
			s.latestState.DigitStats[sym] = make(map[string]models.MDigitStats)
		}
		for wName, wData := range windows {
			s.latestState.DigitStats[sym][wName] = wData
		}
	}

	// 3. Update Metadata
	s.latestState.Timestamp = newTs
	s.latestState.ProcessingMetrics = newMetrics
	s.latestState.Type = "UPDATE"
}

// -----------------------------------------------------------------------------

// Broadcast - parses data and sends to broadcast channel (Queue)
func (s *DashboardServer) Broadcast(message interface{}) {
	dataMap, ok := message.(map[string]interface{})
	if !ok {
		s.Logger.Info("Broadcast expected map[string]interface{}, got %T", message)
		return
	}

	// Convert to strongly typed structure BEFORE entering the channel
	// so the Hub loop never does data processing
	state := &models.MLatestData{
		Type:              "UPDATE",
		RawData:           safeTickMap(dataMap, "raw_data"),
		DigitStats:        safeDigitStatsMap(dataMap, "digit_stats"),
		Timestamp:         safeInt64(dataMap, "timestamp"),
		ProcessingMetrics: safeProcessingMetrics(dataMap, "processing_metrics"),
	}

	s.broadcast <- state
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

// SetLatestState - Thread-safe state update
func (s *DashboardServer) SetLatestState(state *models.MLatestData) {
	s.stateMutex.Lock()
	state.Type = "UPDATE"
	s.latestState = state
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	var response *models.MLatestData

	if cmd.ClientType == "dashboard" {
		response = s.dashboardResponse(cmd.Symbols, cmd.Window)
	} else {
		response = s.symbolViewResponse(cmd.Symbols, cmd.Window)
	}
	s.stateMutex.RUnlock()

	// Use select to avoid blocking if client's send buffer is full
	select {
	case client.send <- response:
	default:
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

func (s *DashboardServer) symbolViewResponse(symbols []string, window string) *models.MLatestData {
	// Filter Raw Data (symbols only)
	filteredRaw := make(map[string]models.MTick)
	if len(symbols) == 0 {
		filteredRaw = s.latestState.RawData
	} else {
		for sym, data := range s.latestState.RawData {
			if contains(symbols, sym) {
				filteredRaw[sym] = data
			}
		}
	}

	// Filter Digit Stats (symbols AND window)
	filteredStats := make(map[string]map[string]models.MDigitStats)

	if len(symbols) == 0 {
		for sym, windowsMap := range s.latestState.DigitStats {
			if window != "" {
				if wData, exists := windowsMap[window]; exists {
					filteredStats[sym] = map[string]models.MDigitStats{window: wData}
				}
			} else {
				filteredStats[sym] = windowsMap
			}
		}
	} else {
		for _, sym := range symbols {
			if windowsMap, exists := s.latestState.DigitStats[sym]; exists {
				if window != "" {
					if wData, exists := windowsMap[window]; exists {
						filteredStats[sym] = map[string]models.MDigitStats{window: wData}
					}
				} else {
					filteredStats[sym] = windowsMap
				}
			}
		}
	}

	return &models.MLatestData{
		Type:              "INITIAL",
		RawData:           filteredRaw,
		DigitStats:        filteredStats,
		Timestamp:         s.latestState.Timestamp,
		ProcessingMetrics: s.latestState.ProcessingMetrics,
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) dashboardResponse(symbols []string, window string) *models.MLatestData {
	filteredStats := make(map[string]map[string]models.MDigitStats)

	if window == "" {
		return &models.MLatestData{
			Type:              "INITIAL",
			RawData:           make(map[string]models.MTick),
			DigitStats:        filteredStats,
			Timestamp:         s.latestState.Timestamp,
			ProcessingMetrics: s.latestState.ProcessingMetrics,
		}
	}

	if len(symbols) == 0 {
		for sym, windowsMap := range s.latestState.DigitStats {
			if wData, exists := windowsMap[window]; exists {
				filteredStats[sym] = map[string]models.MDigitStats{window: wData}
			}
		}
	} else {
		for _, sym := range symbols {
			if windowsMap, exists := s.latestState.DigitStats[sym]; exists {
				if wData, exists := windowsMap[window]; exists {
					filteredStats[sym] = map[string]models.MDigitStats{window: wData}
				}
			}
		}
	}

	return &models.MLatestData{
		Type:              "INITIAL",
		RawData:           s.latestState.RawData,
		DigitStats:        filteredStats,
		Timestamp:         s.latestState.Timestamp,
		ProcessingMetrics: s.latestState.ProcessingMetrics,
	}
}
