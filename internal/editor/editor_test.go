package editor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemory_SetAndRead(t *testing.T) {
	m := NewMemory()
	if err := m.SetCode(`s("bd sn")`); err != nil {
		t.Fatalf("SetCode: %v", err)
	}

	code, err := m.CurrentCode()
	if err != nil {
		t.Fatalf("CurrentCode: %v", err)
	}
	if code != `s("bd sn")` {
		t.Errorf("unexpected code: %q", code)
	}
}

func TestMemory_Hooks(t *testing.T) {
	m := NewMemory()

	var evaluated string
	stopped := false
	m.OnEvaluate = func(code string) error {
		evaluated = code
		return nil
	}
	m.OnStop = func() error {
		stopped = true
		return nil
	}

	m.SetCode("silence")
	if err := m.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if evaluated != "silence" {
		t.Errorf("hook saw %q, expected %q", evaluated, "silence")
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stopped {
		t.Error("stop hook not called")
	}
}

func TestMemory_HookError(t *testing.T) {
	m := NewMemory()
	wantErr := errors.New("engine exploded")
	m.OnEvaluate = func(string) error { return wantErr }

	if err := m.Evaluate(); !errors.Is(err, wantErr) {
		t.Errorf("expected hook error, got %v", err)
	}
}

func TestFile_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.strudel")

	f, err := NewFile(path, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	code, err := f.CurrentCode()
	if err != nil {
		t.Fatalf("CurrentCode: %v", err)
	}
	if code != "" {
		t.Errorf("expected empty editor, got %q", code)
	}
}

func TestFile_SetCodeWritesAndReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.strudel")

	f, err := NewFile(path, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	if err := f.SetCode(`note("c d e f")`); err != nil {
		t.Fatalf("SetCode: %v", err)
	}

	// In-memory copy is updated immediately.
	code, _ := f.CurrentCode()
	if code != `note("c d e f")` {
		t.Errorf("unexpected code: %q", code)
	}
	if f.Revision() == "" {
		t.Error("expected a revision tag after SetCode")
	}

	// And the file itself holds the code.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `note("c d e f")` {
		t.Errorf("file holds %q", data)
	}
}

func TestFile_PicksUpExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.strudel")

	changed := make(chan string, 4)
	f, err := NewFile(path, func(code, revision string) {
		changed <- code
	})
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	if err := os.WriteFile(path, []byte(`s("hh*8")`), 0o644); err != nil {
		t.Fatalf("external write: %v", err)
	}

	// The watch is debounced, so allow a couple of intervals.
	select {
	case code := <-changed:
		if code != `s("hh*8")` {
			t.Errorf("change callback saw %q", code)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	code, _ := f.CurrentCode()
	if code != `s("hh*8")` {
		t.Errorf("expected external edit to be current, got %q", code)
	}
}

func TestFile_EvaluateUsesCurrentCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.strudel")

	f, err := NewFile(path, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer f.Close()

	var evaluated string
	f.EvaluateFunc = func(code string) error {
		evaluated = code
		return nil
	}

	f.SetCode("silence")
	if err := f.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if evaluated != "silence" {
		t.Errorf("evaluate saw %q", evaluated)
	}
}
