package upstream

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"temperature": 21.5, "condition": "clear"}`))
	}))
	defer srv.Close()

	body, err := NewClient().FetchJSON(t.Context(), srv.URL)
	require.NoError(t, err)

	m, ok := body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "clear", m["condition"])
}

func TestFetchJSON_NotConfigured(t *testing.T) {
	_, err := NewClient().FetchJSON(t.Context(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFetchJSON_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient().FetchJSON(t.Context(), srv.URL)
	assert.Error(t, err)
}

func TestFetchJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := NewClient().FetchJSON(t.Context(), srv.URL)
	assert.Error(t, err)
}
