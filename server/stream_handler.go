package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/game"
	"github.com/Digital-Creators-Team/lucky-draw-module/logging"
	"github.com/Digital-Creators-Team/lucky-draw-module/surface"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Frame types added by the stream on top of surface frames.
const (
	FrameConnected = "connected"
	FrameHeartbeat = "heartbeat"
)

// StreamHandler pushes the frames of a reel surface to viewers, over
// WebSocket or SSE.
type StreamHandler struct {
	app             *App
	logger          zerolog.Logger
	heartbeatPeriod time.Duration
	writeDeadline   time.Duration
	upgrader        websocket.Upgrader
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(app *App) *StreamHandler {
	return &StreamHandler{
		app:             app,
		logger:          logging.WithComponent(app.logger, "stream_handler"),
		heartbeatPeriod: 30 * time.Second,
		writeDeadline:   10 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// StreamWebSocket opens a WebSocket and streams surface frames.
// Route: GET /api/reels/{code}/stream
func (h *StreamHandler) StreamWebSocket(c *gin.Context) {
	entry := entryFrom(c)
	logger := h.logger.With().Str("reel_code", entry.Reel.Code()).Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The read loop only detects the close; viewers send nothing.
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(2 * h.heartbeatPeriod)) //nolint:errcheck
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(2 * h.heartbeatPeriod))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warn().Err(err).Msg("WebSocket connection closed unexpectedly")
				} else {
					logger.Debug().Err(err).Msg("WebSocket closed")
				}
				return
			}
		}
	}()

	sender := &wsSender{conn: conn, logger: logger, writeDeadline: h.writeDeadline}
	h.stream(ctx, entry, sender)
}

// StreamSSE streams surface frames as server-sent events.
// Route: GET /api/reels/{code}/stream/sse
func (h *StreamHandler) StreamSSE(c *gin.Context) {
	entry := entryFrom(c)

	// An event stream outlives server.write_timeout.
	if err := setWriteDeadline(c, time.Time{}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to clear write deadline")
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	h.stream(c.Request.Context(), entry, &sseSender{writer: c.Writer})
}

// stream sends a connected frame, the current children, then every frame
// of the reel's hub until ctx ends or a send fails.
func (h *StreamHandler) stream(ctx context.Context, entry *game.Entry, sender messageSender) {
	frames, cancel := entry.Broadcast.Hub().Listen(ctx)
	defer cancel()

	if err := sender.Send(&surface.Frame{Type: FrameConnected, Selector: entry.Config.ReelContainer, Timestamp: time.Now().UnixMilli()}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send connected frame, stopping stream")
		return
	}
	snapshot := entry.Broadcast.Snapshot()
	if err := sender.Send(&snapshot); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := sender.Send(&f); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sender.Send(&surface.Frame{Type: FrameHeartbeat, Timestamp: time.Now().UnixMilli()}); err != nil {
				return
			}
			if p, ok := sender.(pinger); ok {
				if err := p.Ping(); err != nil {
					return
				}
			}
		}
	}
}

// messageSender sends frames over SSE or WebSocket.
type messageSender interface {
	Send(*surface.Frame) error
}

type pinger interface {
	Ping() error
}

type sseSender struct {
	writer gin.ResponseWriter
}

func (s *sseSender) Send(f *surface.Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := s.writer.Write([]byte("event: " + f.Type + "\ndata: " + string(payload) + "\n\n")); err != nil {
		return err
	}
	s.writer.Flush()
	return nil
}

type wsSender struct {
	conn          *websocket.Conn
	logger        zerolog.Logger
	writeDeadline time.Duration
}

func (s *wsSender) Send(f *surface.Frame) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeDeadline)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set write deadline")
	}
	if err := s.conn.WriteJSON(f); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.logger.Debug().Err(err).Str("frame_type", f.Type).Msg("WebSocket closed during write")
		} else {
			s.logger.Warn().Err(err).Str("frame_type", f.Type).Msg("WebSocket write failed")
		}
		return err
	}
	return nil
}

func (s *wsSender) Ping() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}
