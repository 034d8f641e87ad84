// Package bridge exposes a small synchronous control handle over the
// session: set-and-run, play, stop, read code, plus the session id and
// live connection status. It is constructed explicitly and passed to
// whoever needs it; its lifetime is tied to the session, not to any
// ambient global.
package bridge

import (
	"errors"
	"sync"

	"github.com/calvinw/strudel-llm-mirror/internal/client"
	"github.com/calvinw/strudel-llm-mirror/internal/editor"
	"github.com/calvinw/strudel-llm-mirror/internal/session"
)

// ErrNoEditor is returned by control operations when no editor adapter is
// attached.
var ErrNoEditor = errors.New("no editor attached")

// Bridge forwards control operations to the editor adapter and mirrors
// the manager's connection status through a status subscription. It adds
// no invariants of its own.
type Bridge struct {
	mgr *client.Manager

	mu      sync.RWMutex
	adapter editor.Adapter
	status  session.Status

	subID     string
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a bridge over a manager and its adapter. The adapter is also
// attached to the manager so the protocol handlers and the bridge share
// one reference.
func New(mgr *client.Manager, adapter editor.Adapter) *Bridge {
	b := &Bridge{
		mgr:     mgr,
		adapter: adapter,
		status:  mgr.Status(),
		done:    make(chan struct{}),
	}
	mgr.SetAdapter(adapter)

	id, ch := mgr.SubscribeStatus()
	b.subID = id
	go b.track(ch)
	return b
}

func (b *Bridge) track(ch <-chan session.Status) {
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return
			}
			b.mu.Lock()
			b.status = st
			b.mu.Unlock()
		case <-b.done:
			return
		}
	}
}

// SetCode loads code into the editor and runs it.
func (b *Bridge) SetCode(code string) error {
	adapter := b.editor()
	if adapter == nil {
		return ErrNoEditor
	}
	if err := adapter.SetCode(code); err != nil {
		return err
	}
	return adapter.Evaluate()
}

// Play runs whatever the editor currently holds.
func (b *Bridge) Play() error {
	adapter := b.editor()
	if adapter == nil {
		return ErrNoEditor
	}
	return adapter.Evaluate()
}

// Stop halts playback.
func (b *Bridge) Stop() error {
	adapter := b.editor()
	if adapter == nil {
		return ErrNoEditor
	}
	return adapter.Stop()
}

// Code returns the editor's current contents.
func (b *Bridge) Code() (string, error) {
	adapter := b.editor()
	if adapter == nil {
		return "", ErrNoEditor
	}
	return adapter.CurrentCode()
}

// SessionID returns the immutable session identifier.
func (b *Bridge) SessionID() string {
	return b.mgr.SessionID()
}

// Status returns the most recently observed connection status.
func (b *Bridge) Status() session.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// SetAdapter replaces the editor reference for both the bridge and the
// manager's protocol handlers.
func (b *Bridge) SetAdapter(adapter editor.Adapter) {
	b.mu.Lock()
	b.adapter = adapter
	b.mu.Unlock()
	b.mgr.SetAdapter(adapter)
}

// Close detaches the bridge from the manager's status feed. It does not
// stop the manager.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		b.mgr.Unsubscribe(b.subID)
		close(b.done)
	})
}

func (b *Bridge) editor() editor.Adapter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.adapter
}
