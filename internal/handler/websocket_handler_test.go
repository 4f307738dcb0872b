package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowedOrigins = []string{"http://localhost:3000", "https://fortuna.app"}

func TestWebSocketHandler_HandleWS_MissingWorkspace(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_InvalidWorkspace(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), testAllowedOrigins)

	for _, raw := range []string{"abc", "0", "-2"} {
		req := httptest.NewRequest(http.MethodGet, "/ws?workspace="+raw, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.HandleWS(c)

		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok, "workspace %q", raw)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}
}

func TestWebSocketHandler_HandleWS_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	// Valid workspace but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/ws?workspace=42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	// gorilla/websocket returns an error when the upgrade headers are missing
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount(42))
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), testAllowedOrigins)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin", "", true},
		{"allowed origin", "http://localhost:3000", true},
		{"second allowed origin", "https://fortuna.app", true},
		{"unknown origin", "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_PushesWorkspaceEvents(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)
	e.GET("/ws", h.HandleWS)

	server := httptest.NewServer(e)
	defer server.Close()
	defer hub.Shutdown()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?workspace=7"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(8, websocket.CardCreated(map[string]int{"id": 99}))
	hub.Publish(7, websocket.CardCreated(map[string]int{"id": 1}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "card.created", event.Type)
	assert.Equal(t, 1, event.Payload["id"], "events of other workspaces must not be delivered")
}
