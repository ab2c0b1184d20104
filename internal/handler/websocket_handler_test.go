package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/testutil"
	"github.com/dafibh/budget-ledger/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowedOrigins = []string{"http://localhost:5173", "https://ledger.example.com"}

func newTestResolver() *testutil.MockIdentityProvider {
	identities := testutil.NewMockIdentityProvider()
	identities.AddToken("valid-token", &domain.Identity{ID: "user-42", Email: "user@example.com"})
	return identities
}

func TestWebSocketHandler_HandleWS_MissingToken(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), newTestResolver(), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/budget-ledger/ws", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleWS(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestWebSocketHandler_HandleWS_InvalidToken(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), newTestResolver(), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/budget-ledger/ws?token=invalid-jwt", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleWS(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), newTestResolver(), testAllowedOrigins)

	// Valid token but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/budget-ledger/ws?token=valid-token", nil)
	rec := httptest.NewRecorder()

	err := h.HandleWS(e.NewContext(req, rec))

	// The upgrader rejects the request after auth has passed
	assert.Error(t, err)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), newTestResolver(), testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:5173", true},
		{"allowed origin https", "https://ledger.example.com", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (non-browser)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_ReceivesCollectionEvents(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.Shutdown()

	e := echo.New()
	e.GET("/ws", NewWebSocketHandler(hub, newTestResolver(), testAllowedOrigins).HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=valid-token"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount("user-42") == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast("user-42", websocket.CollectionReplaced(domain.CollectionReplaced{
		UserID:     "user-42",
		Kind:       domain.CollectionExpenses,
		Count:      3,
		ReplacedAt: time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type   string `json:"type"`
		Entity string `json:"entity"`
	}
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, "expenses.replaced", event.Type)
	assert.Equal(t, "expenses", event.Entity)
}
