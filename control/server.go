// Package control carries note commands from the outside world to a
// running voice.
package control

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gordonklaus/fm"
	"github.com/gorilla/websocket"
)

const maxMessageSize = 4096

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server accepts control records over HTTP and WebSocket:
//
//	POST /note   one record per request, e.g. {"noteOn":{"key":69}}
//	GET  /ws     one record per text message
//	GET  /healthz
//
// An optional handler is mounted at /metrics.
type Server struct {
	sink    Sink
	logger  *slog.Logger
	metrics http.Handler
	engine  *gin.Engine
}

func NewServer(sink Sink, logger *slog.Logger, metrics http.Handler) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{sink: sink, logger: logger, metrics: metrics, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.logRequests)
	s.engine.POST("/note", s.handleNote)
	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(metrics))
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("control server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

func (s *Server) handleNote(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxMessageSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmds, err := fm.ParseMessage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	queued := send(s.sink, cmds, s.logger)
	status := http.StatusAccepted
	if queued < len(cmds) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"queued": queued})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxMessageSize)
	s.logger.Info("control client connected", "remote", c.Request.RemoteAddr)

	for {
		typ, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("control client disconnected", "error", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		cmds, err := fm.ParseMessage(data)
		if err != nil {
			if err := ws.WriteJSON(gin.H{"error": err.Error()}); err != nil {
				return
			}
			continue
		}
		send(s.sink, cmds, s.logger)
	}
}
