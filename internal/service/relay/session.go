// Package relay mediates one live conversation: a client websocket on one
// side, a Gemini Live session on the other. It dials upstream, sends a
// single configuration handshake, then forwards frames both directions
// until either side closes.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrUpstreamUnavailable means the upstream session could not be
// established or the handshake could not be delivered.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// Conn is the frame transport the session pumps. *websocket.Conn
// satisfies it; tests substitute in-memory fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Config fixes the upstream target and keep-alive cadence for every
// session a Manager runs.
type Config struct {
	// Endpoint is the full Live API dial URL, credential included.
	Endpoint string
	// Model is the Live model identifier sent in the handshake.
	Model string
	// Voice overrides the persona's voice when set.
	Voice string

	PingInterval time.Duration
	ReadTimeout  time.Duration
}

// SessionConfig is the per-session half of the handshake: the persona
// text block and its voice, resolved by the handler.
type SessionConfig struct {
	SystemInstruction string
	Voice             string
}

// Manager runs relay sessions. Sessions share nothing but the dialer and
// the static config.
type Manager struct {
	cfg    Config
	dialer Dialer
}

// NewManager builds a Manager around an upstream dialer.
func NewManager(cfg Config, dialer Dialer) *Manager {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 2 * cfg.PingInterval
	}
	return &Manager{cfg: cfg, dialer: dialer}
}

// Run owns one session for the lifetime of client. It returns nil on an
// orderly close from either side and an error for handshake or transport
// failures. Both transports are closed on every return path.
func (m *Manager) Run(ctx context.Context, sessionID string, client Conn, sc SessionConfig) error {
	upstream, err := m.dialer.Dial(ctx, m.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrUpstreamUnavailable, err)
	}

	setup, err := buildSetup(m.cfg, sc)
	if err != nil {
		upstream.Close()
		return fmt.Errorf("%w: build setup: %v", ErrUpstreamUnavailable, err)
	}
	if err := upstream.WriteMessage(websocket.TextMessage, setup); err != nil {
		upstream.Close()
		return fmt.Errorf("%w: send setup: %v", ErrUpstreamUnavailable, err)
	}

	log.Printf("[relay] session %s established", sessionID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			cancel()
			client.Close()
			upstream.Close()
		})
	}
	defer teardown()

	// External cancellation (client request context) also tears down.
	go func() {
		<-ctx.Done()
		teardown()
	}()

	m.keepAlive(ctx, client)
	m.keepAlive(ctx, upstream)

	errc := make(chan error, 2)
	go func() { errc <- pumpVerbatim(client, upstream) }()
	go func() { errc <- pumpNormalized(upstream, client) }()

	err = <-errc
	teardown()
	<-errc

	if err != nil && !isOrderlyClose(err) {
		log.Printf("[relay] session %s transport error: %v", sessionID, err)
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	log.Printf("[relay] session %s closed", sessionID)
	return nil
}

// keepAlive arms the idle-disconnect defence on one transport: read
// deadlines pushed forward by pongs, pings sent on a ticker.
func (m *Manager) keepAlive(ctx context.Context, conn Conn) {
	conn.SetReadDeadline(time.Now().Add(m.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(m.cfg.ReadTimeout))
	})

	go func() {
		ticker := time.NewTicker(m.cfg.PingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(m.cfg.PingInterval / 2)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()
}

// pumpVerbatim forwards frames from src to dst untouched: same frame
// type, same payload, same order.
func pumpVerbatim(src, dst Conn) error {
	for {
		messageType, data, err := src.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := dst.WriteMessage(messageType, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
}

// pumpNormalized forwards frames from src to dst, downgrading binary
// frames that are logically textual (UTF-8 JSON) to text frames. Audio
// stays binary; nothing is ever re-encoded in the other direction.
func pumpNormalized(src, dst Conn) error {
	for {
		messageType, data, err := src.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if messageType == websocket.BinaryMessage && looksTextual(data) {
			messageType = websocket.TextMessage
		}
		if err := dst.WriteMessage(messageType, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
}

// isOrderlyClose reports whether err is an expected end-of-session rather
// than a transport failure.
func isOrderlyClose(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			return true
		}
		return false
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
