package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"genie/internal/logger"
	"genie/internal/model"
	"genie/internal/service"
)

// SessionHandler handles conversation session HTTP requests
type SessionHandler struct {
	sessions *service.SessionService
	logger   logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   log,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	id, snapshot := h.sessions.Start()
	c.JSON(http.StatusCreated, model.SessionResponse{SessionID: id, ConversationSnapshot: snapshot})
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	snapshot, err := h.sessions.Snapshot(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SessionResponse{SessionID: id, ConversationSnapshot: snapshot})
}

// Submit handles POST /api/v1/sessions/:id/messages and waits for the turn to finish
func (h *SessionHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	turn, err := h.sessions.Submit(ctx, id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := turn.Wait(ctx); err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Turn did not finish: " + err.Error()})
		return
	}

	snapshot, err := h.sessions.Snapshot(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SubmitResponse{
		SessionID:   id,
		TurnID:      turn.ID,
		UserMessage: turn.UserMessage,
		Messages:    turn.Messages(),
		Cancelled:   turn.Cancelled(),
		Mode:        snapshot.Mode,
		State:       snapshot.State,
		Pending:     snapshot.Pending,
	})
}

// SubmitStream handles POST /api/v1/sessions/:id/messages/stream - SSE streaming of one turn
func (h *SessionHandler) SubmitStream(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	// Subscribe before submitting so no emission is missed
	events, cancel, err := h.sessions.Subscribe(id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	turn, err := h.sessions.Submit(ctx, id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"turn_id": turn.ID, "user_message": turn.UserMessage})
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case model.EventMessage:
				if event.TurnID != turn.ID || event.Message.Role != model.RoleAI {
					continue
				}
				sendSSE(c, "message", event.Message)
			case model.EventTyping, model.EventToast:
				sendSSE(c, string(event.Type), event)
			case model.EventReset:
				sendSSE(c, "reset", nil)
				flusher.Flush()
				return
			case model.EventDone:
				if event.TurnID != turn.ID {
					continue
				}
				sendSSE(c, "done", map[string]any{"turn_id": turn.ID})
				flusher.Flush()
				return
			}
			flusher.Flush()
		}
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}

// Reset handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Reset(id); err != nil {
		respondError(c, err)
		return
	}

	snapshot, err := h.sessions.Snapshot(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SessionResponse{SessionID: id, ConversationSnapshot: snapshot})
}

// AddToTrip handles POST /api/v1/sessions/:id/trip
func (h *SessionHandler) AddToTrip(c *gin.Context) {
	var req model.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	trip, err := h.sessions.AddToTrip(c.Request.Context(), id, req.PropertyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TripResponse{
		SessionID: id,
		Trip:      trip,
		Toast:     service.TripToast,
	})
}
