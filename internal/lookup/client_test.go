// internal/lookup/client_test.go
package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"filter-agent/internal/common/config"
	"filter-agent/internal/common/logger"
)

func newTestLookup(t *testing.T, baseURL string, maxValues int) *Client {
	return NewClient(config.LookupConfig{
		BaseURL:   baseURL,
		Timeout:   2000,
		MaxValues: maxValues,
	}, logger.NewTestLogger(t))
}

func TestClient_FetchValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dataset/dim-42/column/fiscal_period/distinct", r.URL.Path)
		assert.Equal(t, "_session=token-123", r.Header.Get("Cookie"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{"10", "11", float64(12), nil},
		})
	}))
	defer srv.Close()

	values := newTestLookup(t, srv.URL, 50).FetchValues(context.Background(), "fiscal_period", "dim-42", "token-123")
	assert.Equal(t, []string{"10", "11", "12"}, values)
}

func TestClient_FetchValues_CappedAtMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{"a", "b", "c", "d", "e"},
		})
	}))
	defer srv.Close()

	values := newTestLookup(t, srv.URL, 2).FetchValues(context.Background(), "fund_type", "ds-1", "token")
	assert.Equal(t, []string{"a", "b"}, values)
}

func TestClient_FetchValues_FailuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-OK status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			values := newTestLookup(t, srv.URL, 50).FetchValues(context.Background(), "fund_type", "ds-1", "token")
			assert.Empty(t, values)
		})
	}
}

func TestClient_FetchValues_UnreachableServer(t *testing.T) {
	values := newTestLookup(t, "http://127.0.0.1:1", 50).FetchValues(context.Background(), "fund_type", "ds-1", "token")
	assert.Empty(t, values)
}
