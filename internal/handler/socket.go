package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"genie/internal/logger"
	"genie/internal/model"
	"genie/internal/service"
)

// socketError is written back when a client frame cannot be processed
type socketError struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SocketHandler bridges a session to a WebSocket. Client frames are
// utterances; server frames are session events.
type SocketHandler struct {
	sessions       *service.SessionService
	logger         logger.Logger
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
}

// NewSocketHandler creates a WebSocket handler. An empty origin list allows any origin.
func NewSocketHandler(sessions *service.SessionService, allowedOrigins []string, log logger.Logger) *SocketHandler {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		if o != "" && o != "*" {
			origins[o] = true
		}
	}

	h := &SocketHandler{
		sessions:       sessions,
		logger:         log,
		allowedOrigins: origins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *SocketHandler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients
	}
	return h.allowedOrigins[origin]
}

// Serve handles GET /api/v1/sessions/:id/ws
func (h *SocketHandler) Serve(c *gin.Context) {
	id := c.Param("id")

	events, cancel, err := h.sessions.Subscribe(id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed", map[string]interface{}{"sessionId": id})
		return
	}
	defer conn.Close()

	log := h.logger.With(map[string]interface{}{"sessionId": id})
	log.Info("websocket connected", nil)

	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	ctx := c.Request.Context()
	readerDone := make(chan struct{})

	// Forward session events to the socket
	go func() {
		for {
			select {
			case <-readerDone:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := write(event); err != nil {
					log.WithError(err).Warn("failed to write websocket frame", nil)
					conn.Close()
					return
				}
			}
		}
	}()

	defer close(readerDone)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket closed unexpectedly", nil)
			}
			return
		}

		var frame model.SocketFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = write(socketError{Type: "error", Text: "Invalid message format. Send JSON with a 'text' field."})
			continue
		}

		if _, err := h.sessions.Submit(ctx, id, frame.Text); err != nil {
			_ = write(socketError{Type: "error", Text: err.Error()})
		}
	}
}
