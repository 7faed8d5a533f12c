package relay

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pitchcoach/backend/internal/model/persona"
	relayservice "github.com/pitchcoach/backend/internal/service/relay"
)

// Handler upgrades client connections and hands each one to the relay
// session manager.
type Handler struct {
	manager        *relayservice.Manager
	personas       persona.Store
	defaultPersona string
	upgrader       websocket.Upgrader
}

// New creates the relay handler.
func New(manager *relayservice.Manager, personas persona.Store, defaultPersona string) *Handler {
	return &Handler{
		manager:        manager,
		personas:       personas,
		defaultPersona: defaultPersona,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes registers the relay websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/relay/ws", h.handleWebSocket)
}

type connectedAck struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Persona   string `json:"persona"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket runs one relay session per connection. Transport errors
// end the session, never the process.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	personaID := r.URL.Query().Get("persona")
	if personaID == "" {
		personaID = h.defaultPersona
	}

	p, ok := h.personas.FindByID(personaID)
	if !ok {
		http.Error(w, "persona not found", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[relay] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log.Printf("[relay] new connection session=%s persona=%s", sessionID, p.ID)

	ack := connectedAck{
		Type:      "connected",
		SessionID: sessionID,
		Persona:   p.ID,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(ack); err != nil {
		log.Printf("[relay] write ack failed session=%s: %v", sessionID, err)
		return
	}

	sc := relayservice.SessionConfig{
		SystemInstruction: p.SystemPrompt,
		Voice:             p.Voice,
	}
	if err := h.manager.Run(r.Context(), sessionID, conn, sc); err != nil {
		if errors.Is(err, relayservice.ErrUpstreamUnavailable) {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "upstream unavailable")
			_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
		}
		log.Printf("[relay] session %s ended with error: %v", sessionID, err)
	}
}
