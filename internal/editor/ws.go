package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/telemetry"
)

const (
	defaultWriteWait = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxFrameSize     = 64 << 10
	outboxSize       = 16
)

// stream upgrades to a WebSocket carrying commands in and snapshots out.
func (h *Handler) stream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.AllowsOrigin(h.AllowedOrigins, r.Header.Get("Origin"))
		},
	}

	ownerID := middleware.OwnerIDFromContext(c)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	snaps, unsubscribe, err := h.Svc.Subscribe(ctx, ownerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		telemetry.Warn("ws.upgrade_failed", map[string]any{
			"owner_id":   ownerID,
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
		c.Abort()
		return
	}

	client := &wsClient{
		svc:       h.Svc,
		conn:      conn,
		ownerID:   ownerID,
		snaps:     snaps,
		out:       make(chan Frame, outboxSize),
		writeWait: h.WSWriteTimeout,
		limiter:   h.Limiter,
		rule:      h.Limits.Commands,
	}
	streamClosed := metrics.StreamOpened()
	defer streamClosed()
	telemetry.Info("ws.connected", map[string]any{"owner_id": ownerID})

	go client.writePump(ctx)
	client.readPump(ctx)
	cancel()

	telemetry.Info("ws.disconnected", map[string]any{"owner_id": ownerID})
}

// wsClient is one live connection. Only writePump writes to conn.
type wsClient struct {
	svc       *Service
	conn      *websocket.Conn
	ownerID   string
	snaps     <-chan Snapshot
	out       chan Frame
	writeWait time.Duration
	limiter   *middleware.RateLimiter
	rule      middleware.RateLimitRule
}

func (w *wsClient) readPump(ctx context.Context) {
	defer w.conn.Close()

	w.conn.SetReadLimit(maxFrameSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				telemetry.Warn("ws.read_failed", map[string]any{"owner_id": w.ownerID, "error": err.Error()})
			}
			return
		}
		w.handleFrame(ctx, data)
	}
}

func (w *wsClient) handleFrame(ctx context.Context, data []byte) {
	var req CommandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		w.send(ctx, errorFrame(req.Seq, "validation_error", "invalid frame"))
		return
	}
	cmd, err := req.Command()
	if err != nil {
		w.send(ctx, errorFrame(req.Seq, "validation_error", err.Error()))
		return
	}
	// Same bucket as POST /commands.
	if ok, _ := w.limiter.Allow(w.ownerID+"|"+limitCommands, w.rule); !ok {
		w.send(ctx, errorFrame(req.Seq, "rate_limited", "too many commands"))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	snap, err := w.svc.Dispatch(reqCtx, w.ownerID, cmd)
	if err != nil {
		code := "internal_error"
		switch {
		case errors.Is(err, ErrSessionLimit):
			code = "session_limit"
		case errors.Is(err, ErrSessionClosed):
			code = "unavailable"
		case errors.Is(err, context.DeadlineExceeded):
			code = "timeout"
		}
		w.send(ctx, errorFrame(req.Seq, code, err.Error()))
		return
	}
	// Changes reach the client through the subscription; the ack carries
	// the outcome for the issuing client.
	w.send(ctx, Frame{Type: FrameAck, Seq: req.Seq, Version: snap.Version, Result: snap.Result})
}

func (w *wsClient) send(ctx context.Context, f Frame) {
	select {
	case w.out <- f:
	case <-ctx.Done():
	}
}

func (w *wsClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			w.writeClose(websocket.CloseNormalClosure, "")
			return
		case snap, ok := <-w.snaps:
			if !ok {
				w.writeClose(websocket.CloseGoingAway, "session ended")
				return
			}
			if err := w.writeJSON(snapshotFrame(snap)); err != nil {
				return
			}
		case f := <-w.out:
			if err := w.writeJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (w *wsClient) writeJSON(f Frame) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	if err := w.conn.WriteJSON(f); err != nil {
		telemetry.Warn("ws.write_failed", map[string]any{"owner_id": w.ownerID, "error": err.Error()})
		return err
	}
	return nil
}

func (w *wsClient) writeClose(code int, text string) {
	_ = w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(w.writeWait))
}

func errorFrame(seq int64, code, message string) Frame {
	return Frame{Type: FrameError, Seq: seq, Error: &StreamError{Code: code, Message: message}}
}
