package editor

import (
	"log"
	"sync"
)

// Memory is an in-process Adapter holding code in a mutex-guarded string.
// Evaluate and Stop forward to optional hooks so an embedding program can
// attach a real engine; without hooks they just log.
type Memory struct {
	mu   sync.Mutex
	code string

	// OnEvaluate, if set, is called with the current code on Evaluate.
	OnEvaluate func(code string) error
	// OnStop, if set, is called on Stop.
	OnStop func() error
}

// NewMemory creates an empty in-memory editor.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SetCode(code string) error {
	m.mu.Lock()
	m.code = code
	m.mu.Unlock()
	return nil
}

func (m *Memory) Evaluate() error {
	m.mu.Lock()
	code := m.code
	m.mu.Unlock()

	if m.OnEvaluate != nil {
		return m.OnEvaluate(code)
	}
	log.Printf("editor: evaluate (%d bytes)", len(code))
	return nil
}

func (m *Memory) Stop() error {
	if m.OnStop != nil {
		return m.OnStop()
	}
	log.Printf("editor: stop")
	return nil
}

func (m *Memory) CurrentCode() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code, nil
}
