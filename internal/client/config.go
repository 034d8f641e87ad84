package client

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const (
	defaultPath           = "/strudel/ws"
	defaultReconnectDelay = 3 * time.Second
)

// deploymentPorts are the ports the mirror is known to be deployed behind.
// Hosts with an explicit port outside this set leave the subsystem inert.
var deploymentPorts = map[string]bool{
	"80":   true,
	"443":  true,
	"8080": true,
	"8420": true,
}

// Config controls one connection manager. Activation is explicit
// configuration, never inferred from ambient environment state.
type Config struct {
	// ServerURL is the peer base URL (ws://, wss://, http:// or
	// https:// — http schemes are translated). The WebSocket path and
	// session_id query parameter are appended by the manager.
	ServerURL string

	// Enabled gates the whole subsystem. When false, Start is a no-op
	// and no channel is ever opened.
	Enabled bool

	// Gate, if set, is an additional host predicate evaluated once at
	// Start. Nil means DefaultGate.
	Gate func(host string) bool

	// ReconnectDelay is the fixed delay between a closure and the next
	// dial attempt. There is no backoff and no retry cap. Zero means
	// the 3s default.
	ReconnectDelay time.Duration
}

func (c Config) reconnectDelay() time.Duration {
	if c.ReconnectDelay > 0 {
		return c.ReconnectDelay
	}
	return defaultReconnectDelay
}

// DefaultGate allows hosts with no explicit port (scheme default) and
// hosts on a known deployment port.
func DefaultGate(host string) bool {
	_, port, err := net.SplitHostPort(host)
	if err != nil {
		// No explicit port: the scheme default (80/443) applies.
		return true
	}
	return deploymentPorts[port]
}

// hostOf extracts the host (with any explicit port) from an endpoint URL
// already validated by wsEndpoint.
func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

// wsEndpoint derives the full connection URL for a session from the
// configured server URL.
func (c Config) wsEndpoint(sessionID string) (string, error) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}

	// Scheme mirrors the transport security of the configured endpoint.
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in server URL", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in server URL %q", c.ServerURL)
	}

	u.Path = defaultPath
	q := u.Query()
	q.Set("session_id", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
