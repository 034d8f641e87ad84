package client

import (
	"log"
	"strings"

	"github.com/calvinw/strudel-llm-mirror/internal/protocol"
)

// Placeholder payloads for the degraded read outcomes. A request that
// arrived on an open channel is always answered, never silently dropped.
const (
	placeholderNotReady = "// Editor not ready"
	placeholderReadErr  = "// Error retrieving code"
	placeholderEmpty    = "// (empty editor)"
)

// respondCurrentCode answers a get-current-code request with exactly one
// current-code-response echoing the same request_id. The editor is read
// fresh on every request; nothing is cached. Requests are answered
// synchronously and independently, so interleaved request_ids cannot
// collide.
func (m *Manager) respondCurrentCode(requestID string) {
	resp := protocol.NewCodeResponse(requestID, m.currentCode())
	if err := m.Send(resp); err != nil {
		log.Printf("mirror: code response %s dropped: %v", requestID, err)
	}
}

// currentCode reads the editor through the adapter, degrading to a fixed
// placeholder when the adapter is absent, fails, or holds nothing.
func (m *Manager) currentCode() string {
	adapter := m.Adapter()
	if adapter == nil {
		return placeholderNotReady
	}
	code, err := adapter.CurrentCode()
	if err != nil {
		log.Printf("mirror: read current code: %v", err)
		return placeholderReadErr
	}
	if strings.TrimSpace(code) == "" {
		return placeholderEmpty
	}
	return code
}
