package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/metrics"
)

const (
	wsWriteDeadline = 5 * time.Second
	wsPingInterval  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Tickets already authenticate the connection; the stream carries no
	// cookies, so cross-origin pages gain nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStreamTicket trades a verified bearer token for a single-use stream
// ticket. The WebSocket URL carries the ticket instead of the token.
func (s *Server) handleStreamTicket(c echo.Context) error {
	ticket, err := s.tickets.Issue(c.Request().Context(), currentIdentity(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int64(s.config.StreamTicketTTL.Seconds()),
		"stream_url": "/ws/events?ticket=" + ticket,
	})
}

// handleEventStream upgrades to WebSocket and bridges the connection to the
// broadcast core: a writer goroutine drains the subscription's event channel
// and sends pings, while this goroutine runs the read pump for pongs.
func (s *Server) handleEventStream(c echo.Context) error {
	ticket := c.QueryParam("ticket")
	if ticket == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing ticket")
	}

	identity, err := s.tickets.Redeem(c.Request().Context(), ticket)
	if err != nil {
		return httpError(err)
	}

	if !s.limiter.acquire() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "stream capacity reached")
	}
	defer s.limiter.release()

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}
	defer ws.Close()

	connID := uuid.New()
	conn, err := s.broadcaster.Subscribe(connID, identity)
	if err != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "duplicate connection"),
			time.Now().Add(wsWriteDeadline))
		return nil
	}
	defer s.broadcaster.Unsubscribe(connID)

	// Pongs are the liveness signal the reaper watches.
	_ = ws.SetReadDeadline(time.Now().Add(s.config.HeartbeatTimeout))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(s.config.HeartbeatTimeout))
		s.broadcaster.Heartbeat(connID)
		return nil
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.runWritePump(ws, conn.Events(), conn.Done())
	}()

	// Read pump: the client sends nothing meaningful, but reading is what
	// services pongs and detects disconnects.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	s.broadcaster.Unsubscribe(connID)
	<-writerDone

	slog.Debug("Event stream closed",
		"connection_id", connID.String(),
		"user_id", identity.UserID.String(),
	)
	return nil
}

func (s *Server) runWritePump(ws *websocket.Conn, events <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-events:
			start := time.Now()
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = ws.Close()
				return
			}
			metrics.WebSocketMessageSendDuration.Observe(time.Since(start).Seconds())

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.WebSocketPingFailures.Inc()
				_ = ws.Close()
				return
			}

		case <-done:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = ws.Close()
			return
		}
	}
}
