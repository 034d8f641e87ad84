package editor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

const debounceInterval = 500 * time.Millisecond

// ChangeCallback is called after the file contents change, with the new
// code and a revision tag unique to that change.
type ChangeCallback func(code, revision string)

// File is an Adapter backed by a single file on disk. SetCode writes the
// file; CurrentCode returns an in-memory copy kept fresh by an fsnotify
// watch, so edits made in any local editor become the current code. The
// watch is on the parent directory because editors commonly replace files
// by rename.
type File struct {
	path string

	mu       sync.Mutex
	code     string
	revision string

	fsWatcher *fsnotify.Watcher
	cancel    chan struct{}
	onChange  ChangeCallback

	// EvaluateFunc, if set, is called with the current code on Evaluate.
	EvaluateFunc func(code string) error
	// StopFunc, if set, is called on Stop.
	StopFunc func() error
}

// NewFile creates a file-backed editor for path and starts watching it.
// A missing file is not an error; the editor starts empty and the file is
// created on the first SetCode. onChange may be nil.
func NewFile(path string, onChange ChangeCallback) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve editor file: %w", err)
	}

	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsW.Add(filepath.Dir(abs)); err != nil {
		fsW.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	f := &File{
		path:      abs,
		fsWatcher: fsW,
		cancel:    make(chan struct{}),
		onChange:  onChange,
	}
	f.reload(false)

	go f.watchLoop()
	return f, nil
}

// Path returns the absolute path of the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) SetCode(code string) error {
	if err := os.WriteFile(f.path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write editor file: %w", err)
	}

	// Update in-memory state immediately rather than waiting for the
	// debounced watch event; the subsequent reload is a no-op.
	f.mu.Lock()
	f.code = code
	f.revision = uuid.New().String()
	f.mu.Unlock()
	return nil
}

func (f *File) Evaluate() error {
	f.mu.Lock()
	code := f.code
	f.mu.Unlock()

	if f.EvaluateFunc != nil {
		return f.EvaluateFunc(code)
	}
	log.Printf("editor: evaluate %s (%d bytes)", filepath.Base(f.path), len(code))
	return nil
}

func (f *File) Stop() error {
	if f.StopFunc != nil {
		return f.StopFunc()
	}
	log.Printf("editor: stop")
	return nil
}

func (f *File) CurrentCode() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code, nil
}

// Revision returns the tag assigned to the most recent change.
func (f *File) Revision() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revision
}

// Close stops the file watch. The adapter remains usable for SetCode and
// Evaluate; external edits are no longer picked up.
func (f *File) Close() {
	close(f.cancel)
	f.fsWatcher.Close()
}

// watchLoop processes fsnotify events with debouncing.
func (f *File) watchLoop() {
	var timer *time.Timer

	for {
		select {
		case <-f.cancel:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-f.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			// Debounce: reset timer on each event.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				f.reload(true)
			})

		case err, ok := <-f.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("editor: watch error for %s: %v", f.path, err)
		}
	}
}

// reload reads the file and, if the contents changed, assigns a new
// revision and fires the change callback.
func (f *File) reload(notify bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("editor: read %s: %v", f.path, err)
		}
		return
	}
	code := string(data)

	f.mu.Lock()
	if code == f.code {
		f.mu.Unlock()
		return
	}
	f.code = code
	f.revision = uuid.New().String()
	revision := f.revision
	cb := f.onChange
	f.mu.Unlock()

	if notify && cb != nil {
		cb(code, revision)
	}
}
