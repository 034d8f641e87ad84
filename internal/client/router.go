package client

import (
	"log"

	"github.com/calvinw/strudel-llm-mirror/internal/protocol"
)

// handleMessage parses one inbound frame and dispatches by type tag. A
// malformed frame is logged and dropped; the channel stays open. Every
// recognized type has exactly one handler; unrecognized types are
// ignored.
func (m *Manager) handleMessage(raw []byte) {
	msg, err := protocol.Parse(raw)
	if err != nil {
		log.Printf("mirror: drop frame: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeCode:
		m.handleCode(msg)
	case protocol.TypeStop, protocol.TypeStopAlias:
		m.handleStop()
	case protocol.TypeGetCurrentCode:
		m.respondCurrentCode(msg.RequestID)
	case protocol.TypePing:
		m.Send(protocol.NewPong())
	default:
		// Unknown type tags from newer peers are not errors.
	}
}

// handleCode loads the pattern into the editor and runs it. Evaluation is
// skipped only when the peer explicitly sent autoplay=false; a failed
// evaluate is reported back to the peer.
func (m *Manager) handleCode(msg *protocol.Message) {
	if msg.Metadata != nil && msg.Metadata.Description != "" {
		log.Printf("mirror: pattern: %s", msg.Metadata.Description)
	}

	adapter := m.Adapter()
	if adapter == nil {
		log.Printf("mirror: strudel-code dropped, no editor attached")
		return
	}

	if err := adapter.SetCode(msg.Code); err != nil {
		log.Printf("mirror: set code: %v", err)
		return
	}
	if msg.Autoplay != nil && !*msg.Autoplay {
		return
	}
	if err := adapter.Evaluate(); err != nil {
		log.Printf("mirror: evaluate: %v", err)
		m.Send(protocol.NewEvaluationError(err.Error(), msg.Code))
	}
}

func (m *Manager) handleStop() {
	adapter := m.Adapter()
	if adapter == nil {
		log.Printf("mirror: stop dropped, no editor attached")
		return
	}
	if err := adapter.Stop(); err != nil {
		log.Printf("mirror: stop: %v", err)
	}
}
