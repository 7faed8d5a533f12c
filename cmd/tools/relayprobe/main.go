// Command relayprobe is an operator smoke-check for a running backend: it
// opens a relay session, sends one text turn plus a dummy audio chunk, and
// prints the first frames that come back.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	server := flag.String("server", "localhost:8080", "backend host:port")
	personaID := flag.String("persona", "", "persona id (server default when empty)")
	text := flag.String("text", "Hello, I'd like to discuss pricing.", "text turn to send")
	frames := flag.Int("frames", 5, "number of upstream frames to print before exiting")
	timeout := flag.Duration("timeout", 30*time.Second, "overall probe timeout")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *server, Path: "/api/relay/ws"}
	if *personaID != "" {
		u.RawQuery = "persona=" + url.QueryEscape(*personaID)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s failed: %v", u.String(), err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(*timeout))

	// First frame is the server's connected ack.
	var ack struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
		Persona   string `json:"persona"`
	}
	if err := conn.ReadJSON(&ack); err != nil {
		log.Fatalf("read ack failed: %v", err)
	}
	if ack.Type != "connected" {
		log.Fatalf("unexpected first frame type %q", ack.Type)
	}
	log.Printf("connected: session=%s persona=%s", ack.SessionID, ack.Persona)

	turn := map[string]any{
		"client_content": map[string]any{
			"turns": []map[string]any{
				{"role": "user", "parts": []map[string]string{{"text": *text}}},
			},
			"turn_complete": true,
		},
	}
	payload, err := json.Marshal(turn)
	if err != nil {
		log.Fatalf("marshal turn failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Fatalf("send text turn failed: %v", err)
	}
	log.Printf("sent text turn (%d bytes)", len(payload))

	// A short burst of silence, to exercise the binary path.
	silence := make([]byte, 3200)
	if err := conn.WriteMessage(websocket.BinaryMessage, silence); err != nil {
		log.Fatalf("send audio chunk failed: %v", err)
	}
	log.Printf("sent audio chunk (%d bytes)", len(silence))

	for i := 0; i < *frames; i++ {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read frame failed: %v", err)
		}
		switch messageType {
		case websocket.TextMessage:
			fmt.Printf("frame %d (text): %s\n", i+1, truncate(string(data), 300))
		case websocket.BinaryMessage:
			fmt.Printf("frame %d (binary): %d bytes\n", i+1, len(data))
		}
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "probe done")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
	log.Println("probe complete")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
