// README: Router tests against an in-memory catalog and conversation store.
package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samanainn/internal/modules/catalog"
	"samanainn/internal/modules/conversation"
	"samanainn/internal/responders"
	"samanainn/internal/service"
)

func buildTestRouter(t *testing.T, perMinute, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := catalog.Sample()
	now := func() time.Time { return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC) }
	booking := responders.NewBooking("https://samanainn.com", nil)
	dispatcher := service.NewTurnDispatcher(
		service.NewCoordinator(nil),
		responders.NewQuery(gw, nil, now, nil),
		booking,
		responders.NewGeneric(nil, nil, 0, nil),
		[]responders.Responder{
			responders.NewLodging(gw, nil),
			responders.NewFood(gw, nil),
			responders.NewActivities(gw, now, nil),
			responders.NewTransport(gw, nil),
		},
		nil,
	)
	convs := conversation.NewService(conversation.NewMemoryStore(), nil, nil, nil)
	chatSvc := service.NewChatService(convs, dispatcher, nil, nil)

	return NewRouter(ServerDeps{
		Chat:           chatSvc,
		Booking:        booking,
		RequestTimeout: 5 * time.Second,
		RatePerMinute:  perMinute,
		RateBurst:      burst,
	})
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type messageBody struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	Response       struct {
		Message     string `json:"message"`
		Error       bool   `json:"error"`
		ValidatedBy string `json:"validatedBy"`
		UI          struct {
			ShowBookingButton bool     `json:"showBookingButton"`
			BookingButtonURL  string   `json:"bookingButtonUrl"`
			Questions         []string `json:"suggestedQuestions"`
		} `json:"ui"`
		Results []map[string]any `json:"results"`
		Context struct {
			ProcessingStage string `json:"processingStage"`
		} `json:"context"`
	} `json:"response"`
}

func TestHealth(t *testing.T) {
	r := buildTestRouter(t, 0, 0)
	w := doRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMessage_RequiresMessage(t *testing.T) {
	r := buildTestRouter(t, 0, 0)
	w := doRequest(r, http.MethodPost, "/api/chat/message", map[string]any{"sessionId": "s"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"message is required"}`, w.Body.String())
}

func TestMessage_ConversationFlow(t *testing.T) {
	r := buildTestRouter(t, 0, 0)

	w := doRequest(r, http.MethodPost, "/api/chat/message", map[string]any{
		"message":   "Busco un hotel barato cerca de la playa",
		"sessionId": "sess-http",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first messageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.True(t, first.Success)
	require.NotEmpty(t, first.ConversationID)
	assert.Equal(t, "ValidationAgent", first.Response.ValidatedBy)
	assert.Equal(t, "query", first.Response.Context.ProcessingStage)
	assert.NotEmpty(t, first.Response.Results)

	// client resets the stage, then asks to book
	w = doRequest(r, http.MethodPost, "/api/chat/message", map[string]any{
		"message":        "Quiero reservar un hotel, ¿hay disponibilidad?",
		"conversationId": first.ConversationID,
		"context":        map[string]any{"processingStage": "initial"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second messageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, "booking", second.Response.Context.ProcessingStage)
	assert.True(t, second.Response.UI.ShowBookingButton)
	assert.Equal(t, "https://samanainn.com/hotel/", second.Response.UI.BookingButtonURL)

	w = doRequest(r, http.MethodGet, "/api/chat/conversations/"+first.ConversationID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, 4, history.Count)

	w = doRequest(r, http.MethodGet, "/api/chat/conversations?sessionId=sess-http", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = doRequest(r, http.MethodPost, "/api/chat/conversations/"+first.ConversationID+"/close", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(r, http.MethodPost, "/api/chat/conversations/"+first.ConversationID+"/close", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConversationErrors(t *testing.T) {
	r := buildTestRouter(t, 0, 0)

	w := doRequest(r, http.MethodGet, "/api/chat/conversations", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/chat/conversations/missing/messages", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPost, "/api/chat/conversations/missing/close", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBanner(t *testing.T) {
	r := buildTestRouter(t, 0, 0)

	w := doRequest(r, http.MethodGet, "/api/chat/banner?type=gastronomy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Banner service.Banner `json:"banner"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Sabores de Samaná", body.Banner.Title)

	w = doRequest(r, http.MethodGet, "/api/chat/banner?type=unknown", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Descubre Samaná", body.Banner.Title)
}

func TestBookingURL(t *testing.T) {
	r := buildTestRouter(t, 0, 0)

	w := doRequest(r, http.MethodPost, "/api/chat/booking-url", map[string]any{
		"type": "accommodation", "slug": "hotel-x", "checkIn": "2026-03-01", "adults": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "https://samanainn.com/hotel/hotel-x?check_in=2026-03-01&adults=2", body.URL)
	assert.Equal(t, "accommodation", body.Type)

	w = doRequest(r, http.MethodPost, "/api/chat/booking-url", map[string]any{"slug": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := buildTestRouter(t, 1, 2)

	for i := 0; i < 2; i++ {
		w := doRequest(r, http.MethodGet, "/api/chat/banner", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doRequest(r, http.MethodGet, "/api/chat/banner", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	// health is outside the limited group
	w = doRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
