package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/calvinw/strudel-llm-mirror/internal/bridge"
	"github.com/calvinw/strudel-llm-mirror/internal/client"
	"github.com/calvinw/strudel-llm-mirror/internal/editor"
	"github.com/calvinw/strudel-llm-mirror/internal/session"
	"github.com/calvinw/strudel-llm-mirror/internal/status"
)

// Config holds mirror configuration, loaded from environment variables.
type Config struct {
	ServerURL      string
	SessionID      string
	EditorFile     string
	ReconnectDelay time.Duration
	StatusPort     int
	PatternsDir    string
	Disabled       bool
}

func loadConfig() Config {
	cfg := Config{
		ServerURL:  "ws://localhost:8080",
		EditorFile: "pattern.strudel",
		StatusPort: 8421,
	}

	if v := os.Getenv("SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("SESSION_ID"); v != "" {
		cfg.SessionID = v
	}
	if v := os.Getenv("EDITOR_FILE"); v != "" {
		cfg.EditorFile = v
	}
	if v := os.Getenv("RECONNECT_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReconnectDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("STATUS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StatusPort = n
		}
	}
	if v := os.Getenv("PATTERNS_DIR"); v != "" {
		cfg.PatternsDir = v
	}
	if v := os.Getenv("MIRROR_DISABLED"); v == "1" || v == "true" {
		cfg.Disabled = true
	}

	return cfg
}

func main() {
	cfg := loadConfig()

	// Session identity is generated exactly once, before the channel opens.
	sess := session.New()
	if cfg.SessionID != "" {
		sess.ID = cfg.SessionID
	}

	// File-backed editor surface.
	ed, err := editor.NewFile(cfg.EditorFile, func(code, revision string) {
		log.Printf("editor: changed on disk (rev %s, %d bytes)", revision[:8], len(code))
	})
	if err != nil {
		log.Fatalf("editor: %v", err)
	}

	// Connection manager for the session's channel.
	mgr := client.New(client.Config{
		ServerURL:      cfg.ServerURL,
		Enabled:        !cfg.Disabled,
		ReconnectDelay: cfg.ReconnectDelay,
	}, sess, ed)

	ctl := bridge.New(mgr, ed)

	if err := mgr.Start(); err != nil {
		log.Fatalf("mirror: %v", err)
	}

	// Local status endpoint.
	var httpServer *http.Server
	if cfg.StatusPort > 0 {
		statusSrv := status.New(mgr, cfg.PatternsDir)
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.StatusPort),
			Handler: statusSrv.Handler(),
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("status server error: %v", err)
			}
		}()
	}

	log.Printf("strudel mirror running, session %s -> %s", sess.ID, cfg.ServerURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	ctl.Close()
	mgr.Stop()
	ed.Close()
	if httpServer != nil {
		httpServer.Close()
	}
}
