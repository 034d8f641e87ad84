// Package status serves a small local HTTP surface for in-page and
// sidecar tooling: a JSON status endpoint reporting the session identity
// and connection state, and optional static serving of a patterns
// directory.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/calvinw/strudel-llm-mirror/internal/client"
)

// Server exposes read-only session state over HTTP.
type Server struct {
	mgr         *client.Manager
	patternsDir string
}

type statusResponse struct {
	SessionID  string `json:"session_id"`
	Status     string `json:"status"`
	ServerURL  string `json:"server_url"`
	Active     bool   `json:"active"`
	PatternDir string `json:"patterns_dir,omitempty"`
}

// New creates a status server. patternsDir may be empty to disable static
// serving.
func New(mgr *client.Manager, patternsDir string) *Server {
	return &Server{mgr: mgr, patternsDir: patternsDir}
}

// Handler returns an http.Handler with all routes configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /status", s.handleStatus)

	if s.patternsDir != "" {
		fileServer := http.FileServer(http.Dir(s.patternsDir))
		mux.Handle("/", fileServer)
	}

	return corsMiddleware(mux)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		SessionID:  s.mgr.SessionID(),
		Status:     string(s.mgr.Status()),
		ServerURL:  s.mgr.ServerURL(),
		Active:     s.mgr.Active(),
		PatternDir: s.patternsDir,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
