package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS already admits every origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

const wsWriteWait = 10 * time.Second

// Events handles GET /events.
//
//	@Summary		Stream the caller's progress events (SSE)
//	@Tags			events
//	@Produce		text/event-stream
//	@Success		200	"event stream"
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.events.Stream(w, r, UserFrom(r.Context()).ID)
}

// WebSocket handles GET /ws, sending the caller's events as JSON messages.
//
//	@Summary		Stream the caller's progress events (WebSocket)
//	@Tags			events
//	@Success		101	"switching protocols"
//	@Security		BearerAuth
//	@Router			/ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := UserFrom(r.Context()).ID
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch := h.events.Subscribe(userID)
	defer h.events.Unsubscribe(ch)

	// The read loop only notices the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.events.Heartbeat())
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-gone:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case event, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				slog.Debug("websocket write failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
				return
			}
		}
	}
}
