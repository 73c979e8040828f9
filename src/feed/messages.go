package feed

import (
	"encoding/json"
	"time"

	"digit-observer/src/analysis"
	"digit-observer/src/helpers"
)

// -----------------------------------------------------------------------------
// Outbound messages
// -----------------------------------------------------------------------------

// pingMessage is the keepalive frame.
type pingMessage struct {
	Ping int `json:"ping"`
}

// HistoryRequest asks the feed for a batch of historical ticks.
// Immutable once constructed; ReqID correlates the eventual response.
type HistoryRequest struct {
	TicksHistory    string `json:"ticks_history"`
	AdjustStartTime int    `json:"adjust_start_time"`
	Count           int    `json:"count"`
	End             string `json:"end"`
	Start           int    `json:"start"`
	Style           string `json:"style"`
	ReqID           int64  `json:"req_id"`
}

// -----------------------------------------------------------------------------

// NewHistoryRequest builds a request with a fresh correlation identifier
// derived from the current Unix millisecond clock. Uniqueness is best-effort:
// two calls within the same millisecond collide, which is acceptable at the
// request cadence of tens of seconds.
func NewHistoryRequest(symbol string, count int) HistoryRequest {
	if symbol == "" {
		symbol = "R_50"
	}
	if count <= 0 {
		count = 10
	}

	return HistoryRequest{
		TicksHistory:    symbol,
		AdjustStartTime: 1,
		Count:           count,
		End:             "latest",
		Start:           1,
		Style:           "ticks",
		ReqID:           time.Now().UnixMilli(),
	}
}

// -----------------------------------------------------------------------------
// Inbound messages
// -----------------------------------------------------------------------------

// MessageKind discriminates parsed inbound frames.
type MessageKind int

const (
	KindOther MessageKind = iota
	KindPong
	KindHistory
)

// Message is one parsed inbound frame as delivered to OnMessage.
type Message struct {
	Kind    MessageKind
	ReqID   int64
	History *HistoryResponse
	Raw     json.RawMessage
}

// HistoryResponse is the parsed payload of a history reply: an ordered price
// sequence, its pip size (default 4 when the server omits it), and the echoed
// correlation identifier.
type HistoryResponse struct {
	Prices  []float64
	Times   []int64
	PipSize int
	ReqID   int64
}

// -----------------------------------------------------------------------------

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type historyPayload struct {
	Prices []float64 `json:"prices"`
	Times  []int64   `json:"times"`
}

// rawEnvelope discriminates inbound frames by shape.
type rawEnvelope struct {
	Pong    json.RawMessage `json:"pong"`
	Error   *apiError       `json:"error"`
	MsgType string          `json:"msg_type"`
	ReqID   int64           `json:"req_id"`
	History *historyPayload `json:"history"`
	PipSize *int            `json:"pip_size"`
}

// -----------------------------------------------------------------------------

// parseInbound classifies a frame by shape. A frame that fails to parse as
// JSON yields a MalformedPayloadError; a structured error payload yields a
// RemoteApiError. Neither closes the session.
func parseInbound(data []byte) (*Message, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, helpers.NewMalformedPayloadError(err)
	}

	msg := &Message{Kind: KindOther, ReqID: env.ReqID, Raw: data}

	switch {
	case env.Error != nil:
		return nil, helpers.NewRemoteApiError(env.Error.Code, env.Error.Message)

	case len(env.Pong) > 0:
		msg.Kind = KindPong

	case env.MsgType == "history" && env.History != nil:
		pipSize := analysis.DefaultPipSize
		if env.PipSize != nil {
			pipSize = *env.PipSize
		}
		msg.Kind = KindHistory
		msg.History = &HistoryResponse{
			Prices:  env.History.Prices,
			Times:   env.History.Times,
			PipSize: pipSize,
			ReqID:   env.ReqID,
		}
	}

	return msg, nil
}
