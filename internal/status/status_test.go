package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinw/strudel-llm-mirror/internal/client"
	"github.com/calvinw/strudel-llm-mirror/internal/session"
)

func newTestServer(patternsDir string) *Server {
	sess := &session.Session{ID: "fox8", Status: session.StatusDisconnected}
	mgr := client.New(client.Config{ServerURL: "ws://localhost:8080"}, sess, nil)
	return New(mgr, patternsDir)
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer("")
	handler := srv.Handler()

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp statusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "fox8" {
		t.Errorf("expected session fox8, got %s", resp.SessionID)
	}
	if resp.Status != string(session.StatusDisconnected) {
		t.Errorf("expected disconnected, got %s", resp.Status)
	}
	if resp.ServerURL != "ws://localhost:8080" {
		t.Errorf("unexpected server URL: %s", resp.ServerURL)
	}
}

func TestStatusEndpoint_CORS(t *testing.T) {
	srv := newTestServer("")
	handler := srv.Handler()

	req := httptest.NewRequest("OPTIONS", "/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestStaticPatternsServing(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "beat.strudel"), []byte(`s("bd sn")`), 0644)

	srv := newTestServer(dir)
	handler := srv.Handler()

	req := httptest.NewRequest("GET", "/beat.strudel", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != `s("bd sn")` {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestNoStaticDirNoRootRoute(t *testing.T) {
	srv := newTestServer("")
	handler := srv.Handler()

	req := httptest.NewRequest("GET", "/anything", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a patterns dir, got %d", w.Code)
	}
}
