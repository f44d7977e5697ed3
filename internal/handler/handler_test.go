package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genie/internal/logger"
	"genie/internal/model"
	"genie/internal/repository"
	"genie/internal/service"
)

func setupRouter(t *testing.T, engine service.EngineOptions) (*gin.Engine, *service.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// socket goroutines can outlive the test
	log := logger.NewNoOpLogger()
	sessions := service.NewSessionService(repository.NewMemoryCatalog(nil), service.SessionConfig{
		DefaultLocation: "Nakuru",
		ResultLimit:     3,
		IdleTTL:         time.Minute,
		Engine:          engine,
	}, log)
	t.Cleanup(sessions.Close)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"),
		NewSessionHandler(sessions, log),
		NewListingHandler(sessions),
		NewSocketHandler(sessions, nil, log),
	)
	return router, sessions
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) model.SessionResponse {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_Create(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})

	resp := createSession(t, router)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.ModeDiscovery, resp.Mode)
	require.Len(t, resp.Transcript, 1)
	assert.Equal(t, model.RoleAI, resp.Transcript[0].Role)
	assert.False(t, resp.Busy)
}

func TestSessionHandler_Get_NotFound(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})

	w := doJSON(router, http.MethodGet, "/api/v1/sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), service.ErrSessionNotFound.Error())
}

func TestSessionHandler_Submit(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})
	session := createSession(t, router)

	w := doJSON(router, http.MethodPost, "/api/v1/sessions/"+session.SessionID+"/messages",
		model.SubmitRequest{Text: "I want to buy a house in Njoro"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "I want to buy a house in Njoro", resp.UserMessage.Text)
	assert.Equal(t, "Njoro", resp.State.Location)
	assert.Equal(t, model.IntentBuy, resp.State.Intent)
	assert.Equal(t, model.PropertyTypeHome, resp.State.PropertyType)
	assert.Nil(t, resp.Pending)
	require.Len(t, resp.Messages, 5)
	assert.Contains(t, resp.Messages[0].Text, "Njoro")
	for _, msg := range resp.Messages[1:4] {
		assert.Equal(t, model.MessageKindProperty, msg.Kind)
	}
	assert.Equal(t, model.MessageKindOptions, resp.Messages[4].Kind)
}

func TestSessionHandler_Submit_Errors(t *testing.T) {
	router, sessions := setupRouter(t, service.EngineOptions{ReplyDelay: time.Hour})
	session := createSession(t, router)
	path := "/api/v1/sessions/" + session.SessionID + "/messages"

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
	}{
		{name: "Missing text", path: path, body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "Blank text", path: path, body: model.SubmitRequest{Text: "   "}, wantStatus: http.StatusBadRequest},
		{name: "Unknown session", path: "/api/v1/sessions/missing/messages", body: model.SubmitRequest{Text: "hi"}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("Busy", func(t *testing.T) {
		_, err := sessions.Submit(context.Background(), session.SessionID, "find land in Lanet")
		require.NoError(t, err)

		w := doJSON(router, http.MethodPost, path, model.SubmitRequest{Text: "rent a house"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSessionHandler_SubmitStream(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})
	session := createSession(t, router)

	w := doJSON(router, http.MethodPost, "/api/v1/sessions/"+session.SessionID+"/messages/stream",
		model.SubmitRequest{Text: "I want to buy a house in Njoro"})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: start"))
	assert.Equal(t, 5, strings.Count(body, "event: message\n"))
	assert.Contains(t, body, "event: done")
	assert.Less(t, strings.Index(body, "Here are some home options"), strings.Index(body, "refine these results"))
}

func TestSessionHandler_Reset(t *testing.T) {
	router, sessions := setupRouter(t, service.EngineOptions{})
	session := createSession(t, router)

	turn, err := sessions.Submit(context.Background(), session.SessionID, "invest in Naivasha")
	require.NoError(t, err)
	require.NoError(t, turn.Wait(context.Background()))

	w := doJSON(router, http.MethodDelete, "/api/v1/sessions/"+session.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ModeDiscovery, resp.Mode)
	assert.Len(t, resp.Transcript, 1)
	assert.Nil(t, resp.Pending)
	assert.Equal(t, model.ConversationState{}, resp.State)
}

func TestSessionHandler_AddToTrip(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})
	session := createSession(t, router)
	path := "/api/v1/sessions/" + session.SessionID + "/trip"

	w := doJSON(router, http.MethodPost, path, model.TripRequest{PropertyID: "p-001"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.TripResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"p-001"}, resp.Trip)
	assert.Equal(t, "Added to trip", resp.Toast)

	w = doJSON(router, http.MethodPost, path, model.TripRequest{PropertyID: "p-999"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingHandler_Get(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})

	w := doJSON(router, http.MethodGet, "/api/v1/listings/p-001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price_label":"KES 8.5M"`)

	w = doJSON(router, http.MethodGet, "/api/v1/listings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSocketHandler_Serve(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})
	session := createSession(t, router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sessions/" + session.SessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(model.SocketFrame{Text: "I want to buy a house in Njoro"}))

	var aiMessages []model.Message
	sawTyping := false
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var event model.Event
		require.NoError(t, conn.ReadJSON(&event))
		if event.Type == model.EventTyping {
			sawTyping = true
		}
		if event.Type == model.EventMessage && event.Message.Role == model.RoleAI {
			aiMessages = append(aiMessages, *event.Message)
		}
		if event.Type == model.EventDone {
			break
		}
	}

	assert.True(t, sawTyping)
	assert.Len(t, aiMessages, 5)
}

func TestSocketHandler_InvalidFrame(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})
	session := createSession(t, router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sessions/" + session.SessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame socketError
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
}

func TestSocketHandler_UnknownSession(t *testing.T) {
	router, _ := setupRouter(t, service.EngineOptions{})

	w := doJSON(router, http.MethodGet, "/api/v1/sessions/missing/ws", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
