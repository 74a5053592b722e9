package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"civicdesk.org/internal/obs"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin during local development;
	// bearer auth on the token query parameter gates the endpoint.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS upgrades the connection and streams complaint events to the
// client until it disconnects. Tokens travel in the query string because
// browser WebSocket clients cannot set an Authorization header.
func (a *API) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing token")
		return
	}
	user, err := a.auth.Verify(r.Context(), token)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure response.
		return
	}
	obs.WSConnOpened()
	defer obs.WSConnClosed()
	defer conn.Close()

	logger := obs.Logger().With(
		zap.String("user_id", user.ID),
		zap.String("remote_addr", r.RemoteAddr),
	)
	logger.Info("ws subscriber connected")
	defer logger.Info("ws subscriber disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events := a.hub.Subscribe(ctx)

	// Reader goroutine drains control frames and signals on close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
