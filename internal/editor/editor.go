// Package editor defines the surface the protocol core drives: something
// that can receive code, run it, stop playback, and report what it
// currently holds. The core never caches editor contents — it reads
// through the adapter every time.
package editor

import "errors"

// ErrNotReady is returned when an adapter exists but cannot currently
// serve a read.
var ErrNotReady = errors.New("editor not ready")

// Adapter is the contract the connection core requires from an editor.
// A nil adapter is a first-class state everywhere: handlers degrade, they
// do not fail.
type Adapter interface {
	// SetCode replaces the editor contents.
	SetCode(code string) error
	// Evaluate runs whatever the editor currently holds.
	Evaluate() error
	// Stop halts playback.
	Stop() error
	// CurrentCode returns the editor contents as they are right now.
	CurrentCode() (string, error)
}
