package protocol

import "time"

// Message is the tagged union carried in each WebSocket frame. Fields are
// flat: each message type reads the subset it cares about and leaves the
// rest zero. Timestamps are epoch milliseconds; float64 because the peer
// sends fractional values on inbound frames.
type Message struct {
	Type      string    `json:"type"`
	Code      string    `json:"code,omitempty"`
	Autoplay  *bool     `json:"autoplay,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	Timestamp float64   `json:"timestamp,omitempty"`
}

// Metadata carries informational annotations on a strudel-code message.
// It has no behavioral effect.
type Metadata struct {
	Description string `json:"description,omitempty"`
}

// Peer → client message types.
const (
	TypeCode           = "strudel-code"
	TypeStop           = "strudel-stop"
	TypeStopAlias      = "stop"
	TypeGetCurrentCode = "get-current-code"
	TypePing           = "ping"
)

// Client → peer message types.
const (
	TypeCurrentCodeResponse = "current-code-response"
	TypePong                = "pong"
	TypeEvaluationError     = "evaluation-error"
)

// NewCodeResponse builds the reply to a get-current-code request. The
// request_id is echoed verbatim and the timestamp is captured at send time.
func NewCodeResponse(requestID, code string) *Message {
	return &Message{
		Type:      TypeCurrentCodeResponse,
		RequestID: requestID,
		Code:      code,
		Timestamp: nowMillis(),
	}
}

// NewPong builds the reply to a protocol-level ping. No payload.
func NewPong() *Message {
	return &Message{Type: TypePong}
}

// NewEvaluationError reports a failed evaluate back to the peer along with
// the code that triggered it.
func NewEvaluationError(errMsg, code string) *Message {
	return &Message{
		Type:      TypeEvaluationError,
		Error:     errMsg,
		Code:      code,
		Timestamp: nowMillis(),
	}
}

func nowMillis() float64 {
	return float64(time.Now().UnixMilli())
}
