package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"medicalink-backend/internal/config"
	"medicalink-backend/internal/handlers"
	"medicalink-backend/internal/llm"
	"medicalink-backend/internal/models"
	"medicalink-backend/internal/services"
	"medicalink-backend/internal/store/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type scriptedCompleter struct {
	reply string
	err   error
}

func (c *scriptedCompleter) Complete(ctx context.Context, userText string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type testServer struct {
	handler   http.Handler
	store     *sqlite.SQLiteStore
	completer *scriptedCompleter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st, err := sqlite.NewSQLiteStore(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	completer := &scriptedCompleter{reply: "Stay hydrated."}
	cfg := &config.Config{
		LLMTimeout:     time.Second,
		AllowedOrigins: []string{"*"},
		MaxRequestBody: 1024,
	}

	conversation := services.NewConversationService(st, completer, cfg.LLMTimeout, logger)
	feedback := services.NewFeedbackService(st, logger)
	advice := services.NewAdviceService(completer, cfg.LLMTimeout, logger)

	router := NewRouter(RouterDependencies{
		ConversationHandler: handlers.NewConversationHandlers(conversation, logger),
		FeedbackHandler:     handlers.NewFeedbackHandlers(feedback, logger),
		AdviceHandler:       handlers.NewAdviceHandlers(advice, logger),
		HealthHandler:       handlers.NewHealthHandler(st, logger),
		Config:              cfg,
		Logger:              logger,
	})
	return &testServer{handler: router, store: st, completer: completer}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAskHistoryExportDeleteFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/ask", `{"message":"I have a cough"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	ask := decode[models.AskResponse](t, rec)
	assert.Equal(t, "Stay hydrated.", ask.Response)
	assert.Positive(t, ask.SessionID)
	assert.False(t, ask.Degraded)
	_, err := time.Parse(models.TimestampLayout, ask.Timestamp)
	assert.NoError(t, err)
	assert.NotContains(t, rec.Body.String(), "degraded")

	id := strconv.FormatInt(ask.SessionID, 10)
	rec = srv.do(t, http.MethodPost, "/ask", `{"message":"Still coughing","session_id":`+id+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ask.SessionID, decode[models.AskResponse](t, rec).SessionID)

	rec = srv.do(t, http.MethodGet, "/history/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]models.HistoryEntry](t, rec)
	require.Len(t, history, 4)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "I have a cough", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[3].Role)

	rec = srv.do(t, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[[]models.SessionInfo](t, rec)
	require.Len(t, sessions, 1)
	assert.EqualValues(t, 4, sessions[0].MessageCount)

	rec = srv.do(t, http.MethodGet, "/export/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	export := decode[models.SessionExport](t, rec)
	assert.Equal(t, ask.SessionID, export.SessionID)
	assert.Len(t, export.Messages, 4)
	assert.NotEmpty(t, export.ExportedAt)

	rec = srv.do(t, http.MethodDelete, "/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Session deleted successfully", decode[models.MessageResponse](t, rec).Message)

	rec = srv.do(t, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/history/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/export/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAskDegradedResponse(t *testing.T) {
	srv := newTestServer(t)
	srv.completer.err = &llm.UpstreamError{Provider: "OpenAI", StatusCode: 500, Body: "upstream exploded"}

	rec := srv.do(t, http.MethodPost, "/ask", `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ask := decode[models.AskResponse](t, rec)
	assert.True(t, ask.Degraded)
	assert.True(t, strings.HasPrefix(ask.Response, "Sorry, an error occurred while processing your question."))
	assert.Contains(t, ask.Response, "500")
}

func TestAskValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing message", `{}`, http.StatusBadRequest},
		{"empty message", `{"message":""}`, http.StatusBadRequest},
		{"blank message", `{"message":"   "}`, http.StatusBadRequest},
		{"wrong type", `{"message":42}`, http.StatusBadRequest},
		{"not json", `hello`, http.StatusBadRequest},
		{"negative session", `{"message":"hi","session_id":-3}`, http.StatusBadRequest},
		{"unknown session", `{"message":"hi","session_id":999}`, http.StatusNotFound},
		{"too large", `{"message":"` + strings.Repeat("a", 2048) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/ask", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[models.ErrorResponse](t, rec).Error)
		})
	}
}

func TestInvalidPathIDs(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/history/abc", "/export/1.5", "/feedback/x"} {
		rec := srv.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	rec := srv.do(t, http.MethodDelete, "/sessions/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/ask", `{"message":"question"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ask := decode[models.AskResponse](t, rec)

	rec = srv.do(t, http.MethodGet, "/history/"+strconv.FormatInt(ask.SessionID, 10), "")
	history := decode[[]models.HistoryEntry](t, rec)
	require.Len(t, history, 2)
	msgID := strconv.FormatInt(history[1].ID, 10)

	rec = srv.do(t, http.MethodPost, "/feedback", `{"message_id":`+msgID+`,"rating":4,"comment":"clear"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fb := decode[models.FeedbackResponse](t, rec)
	assert.Equal(t, 4, fb.Rating)
	require.NotNil(t, fb.Comment)
	assert.Equal(t, "clear", *fb.Comment)

	rec = srv.do(t, http.MethodPost, "/feedback", `{"message_id":`+msgID+`,"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/feedback", `{"message_id":4242,"rating":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/feedback/"+msgID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.FeedbackResponse](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, fb.ID, items[0].ID)
}

func TestAdviceEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/tips", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stay hydrated.", decode[models.AdviceResponse](t, rec).Response)

	rec = srv.do(t, http.MethodPost, "/symptoms", `{"symptoms":"runny nose"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/symptoms", `{"symptoms":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	srv.completer.err = &llm.TransportError{Provider: "OpenAI", Err: errors.New("dial tcp: connection refused")}
	rec = srv.do(t, http.MethodGet, "/tips", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.AdviceResponse](t, rec).Degraded)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[models.HealthCheck](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.DatabaseConnected)

	srv.store.Close()
	rec = srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	health = decode[models.HealthCheck](t, rec)
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.DatabaseConnected)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/sessions", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	assert.JSONEq(t, `[]`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode[models.ErrorResponse](t, rec).Error)
}
