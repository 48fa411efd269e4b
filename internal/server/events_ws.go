package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/pulse/internal/events"
)

const (
	subscriberBuffer = 64
	writeTimeout     = 5 * time.Second
)

// EventsHandler streams system events to WebSocket clients as JSON text messages.
// Clients may filter with ?types=SNAPSHOT_CREATED,RISK_ESCALATED.
type EventsHandler struct {
	manager *events.Manager
	log     zerolog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(manager *events.Manager, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		manager: manager,
		log:     log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	allowed := parseTypes(r.URL.Query().Get("types"))

	// Subscribe before the handshake completes so no event emitted after the
	// client connects is missed
	stream, unsubscribe := h.manager.Subscribe(subscriberBuffer)
	defer unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	h.log.Info().Int("type_filters", len(allowed)).Msg("Event subscriber connected")

	// CloseRead discards client messages and cancels ctx when the peer goes away
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Event subscriber disconnected")
			return
		case event, ok := <-stream:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if len(allowed) > 0 && !allowed[event.Type] {
				continue
			}
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Failed to write event, closing subscriber")
				return
			}
		}
	}
}

func (h *EventsHandler) write(ctx context.Context, conn *websocket.Conn, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func parseTypes(raw string) map[events.EventType]bool {
	if raw == "" {
		return nil
	}
	allowed := make(map[events.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			allowed[events.EventType(strings.ToUpper(t))] = true
		}
	}
	return allowed
}
