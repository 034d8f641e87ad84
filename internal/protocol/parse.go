package protocol

import (
	"encoding/json"
	"fmt"
)

// Parse decodes an inbound frame. A frame that is not valid JSON or lacks
// a type tag is an error; the caller logs it and drops the frame without
// disturbing the channel. Unrecognized type tags are NOT an error here —
// the router ignores them, so new peer message types never break old
// clients.
func Parse(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("missing 'type' field")
	}
	return &msg, nil
}
