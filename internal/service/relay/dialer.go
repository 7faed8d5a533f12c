package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer establishes the upstream half of a session.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer dials upstream over websocket with a bounded handshake.
type WSDialer struct {
	dialer *websocket.Dialer
}

// NewWSDialer returns a WSDialer with the given handshake timeout.
func NewWSDialer(handshakeTimeout time.Duration) *WSDialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 30 * time.Second
	}
	return &WSDialer{
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// Dial connects to url and returns the raw connection.
func (d *WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}
