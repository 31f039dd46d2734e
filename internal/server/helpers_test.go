package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/reload"
	"github.com/MeKo-Tech/langid/internal/testutil"
)

// newTestServer builds a server over the test corpora profiles.
func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	s, err := NewServer(reload.Static(testutil.LoadStore(t)), cfg)
	require.NoError(t, err)
	return s
}

func newTestMux(t *testing.T, s *Server) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(path string, fields map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeIdentifyResponse(t *testing.T, w *httptest.ResponseRecorder) IdentifyResponse {
	t.Helper()

	var resp IdentifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
