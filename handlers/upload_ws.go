package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/uploads"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// UploadStream pushes upload queue events to admin dashboards over a
// WebSocket. The stream closes as soon as the viewer's session stops
// granting admin access.
type UploadStream struct {
	queue    *uploads.Queue
	hub      *auth.Hub
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewUploadStream(queue *uploads.Queue, hub *auth.Hub, frontendURL string, logger logging.Logger) *UploadStream {
	origin := strings.TrimRight(frontendURL, "/")
	return &UploadStream{
		queue:  queue,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || o == origin
			},
		},
	}
}

func (s *UploadStream) Serve(c *gin.Context) {
	ctx := c.Request.Context()
	snap := middleware.Snapshot(c)

	gate := auth.NewGate()
	if gate.Update(snap) != auth.GateGranted {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have administrator privileges"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(ctx, "failed to upgrade websocket connection", "error", err)
		return
	}
	defer conn.Close()

	events, stopEvents := s.queue.Subscribe()
	defer stopEvents()
	sessions, stopSessions := s.hub.Subscribe(snap.UserID)
	defer stopSessions()

	// Reads only serve to notice the client going away and to take pongs.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.write(conn, gin.H{"type": "snapshot", "items": s.queue.Items()}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.write(conn, ev); err != nil {
				return
			}
		case next, ok := <-sessions:
			if !ok {
				return
			}
			if state := gate.Update(next); state != auth.GateGranted {
				msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, string(state))
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
				s.logger.Info(ctx, "upload stream closed by session change", "user_id", snap.UserID, "state", state)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *UploadStream) write(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}
