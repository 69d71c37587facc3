// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filter-agent/internal/common/config"
	apperrors "filter-agent/internal/common/errors"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/models"
)

// ==========================
// Stub Collaborators
// ==========================

type stubProcessor struct {
	response       interface{}
	selectResponse interface{}
	lastRequest    *models.FilterRequest
}

func (s *stubProcessor) Process(_ context.Context, req *models.FilterRequest) interface{} {
	s.lastRequest = req
	return s.response
}

func (s *stubProcessor) SelectGroup(_ context.Context, _ *models.SelectGroupRequest) interface{} {
	return s.selectResponse
}

type stubConversations struct {
	stats    map[string]int64
	statsErr error
	cleared  []string
	clearErr error
}

func (s *stubConversations) Clear(_ context.Context, conversationID string) error {
	s.cleared = append(s.cleared, conversationID)
	return s.clearErr
}

func (s *stubConversations) Stats(_ context.Context) (map[string]int64, error) {
	return s.stats, s.statsErr
}

// ==========================
// Test Helper Functions
// ==========================

func newTestServer(t *testing.T, processor *stubProcessor, conversations *stubConversations) http.Handler {
	t.Helper()
	if conversations == nil {
		conversations = &stubConversations{}
	}
	srv := New(processor, conversations, nil, config.ServerConfig{Host: "127.0.0.1", Port: 8000}, logger.NewTestLogger(t))
	return srv.Router()
}

func validFilterBody() map[string]interface{} {
	return map[string]interface{}{
		"query": "add account type AP",
		"available_filters": []interface{}{
			map[string]interface{}{"name": "account_type", "label": "Account Type", "sourceType": "lens", "sourceId": "ds-1"},
		},
		"auth_session": "token",
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Routes
// ==========================

func TestServer_Health(t *testing.T) {
	handler := newTestServer(t, &stubProcessor{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_Metrics(t *testing.T) {
	handler := newTestServer(t, &stubProcessor{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_FilterRequest(t *testing.T) {
	processor := &stubProcessor{response: models.FilterResponse{
		Type:           models.ResponseTypeSuccess,
		Message:        "Added.",
		ConversationID: "conv-1",
	}}
	handler := newTestServer(t, processor, nil)

	rec := postJSON(t, handler, "/api/filters/natural-language", validFilterBody())

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.FilterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ResponseTypeSuccess, resp.Type)
	assert.Equal(t, "Added.", resp.Message)

	require.NotNil(t, processor.lastRequest)
	assert.Equal(t, "add account type AP", processor.lastRequest.Query)
	assert.Equal(t, "token", processor.lastRequest.AuthSession)
}

func TestServer_FilterRequest_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"not json", "{{"},
		{"missing query", map[string]interface{}{
			"available_filters": []interface{}{},
			"auth_session":      "token",
		}},
		{"empty query", func() interface{} {
			b := validFilterBody()
			b["query"] = ""
			return b
		}()},
		{"missing auth_session", map[string]interface{}{
			"query":             "add a filter",
			"available_filters": []interface{}{},
		}},
		{"filter entry missing sourceId", map[string]interface{}{
			"query": "add a filter",
			"available_filters": []interface{}{
				map[string]interface{}{"name": "account_type", "label": "Account Type", "sourceType": "lens"},
			},
			"auth_session": "token",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestServer(t, &stubProcessor{}, nil)
			rec := postJSON(t, handler, "/api/filters/natural-language", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, models.ResponseTypeError, resp.Type)
			assert.Equal(t, string(apperrors.ErrCodeInvalidRequest), resp.ErrorCode)
		})
	}
}

func TestServer_SelectGroup(t *testing.T) {
	processor := &stubProcessor{selectResponse: models.FilterResponse{
		Type:    models.ResponseTypeSuccess,
		Message: "Added to Budget Data.",
	}}
	handler := newTestServer(t, processor, nil)

	rec := postJSON(t, handler, "/api/filters/select-group", map[string]interface{}{
		"query":             "add account type AP",
		"column_group_name": "Budget Data",
		"available_filters": []interface{}{},
		"auth_session":      "token",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.FilterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Added to Budget Data.", resp.Message)
}

func TestServer_SelectGroup_RequiresGroupName(t *testing.T) {
	handler := newTestServer(t, &stubProcessor{}, nil)

	rec := postJSON(t, handler, "/api/filters/select-group", map[string]interface{}{
		"query":             "add account type AP",
		"available_filters": []interface{}{},
		"auth_session":      "token",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ConversationStats(t *testing.T) {
	conversations := &stubConversations{stats: map[string]int64{
		"total_conversations": 2,
		"total_messages":      7,
	}}
	handler := newTestServer(t, &stubProcessor{}, conversations)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(7), stats["total_messages"])
}

func TestServer_ConversationStats_Error(t *testing.T) {
	conversations := &stubConversations{statsErr: errors.New("redis down")}
	handler := newTestServer(t, &stubProcessor{}, conversations)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(apperrors.ErrCodeProcessingError), resp.ErrorCode)
}

func TestServer_ClearConversation(t *testing.T) {
	conversations := &stubConversations{}
	handler := newTestServer(t, &stubProcessor{}, conversations)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/conversations/conv-9", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"conv-9"}, conversations.cleared)
}

func TestServer_ClearConversation_Error(t *testing.T) {
	conversations := &stubConversations{clearErr: errors.New("redis down")}
	handler := newTestServer(t, &stubProcessor{}, conversations)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/conversations/conv-9", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
