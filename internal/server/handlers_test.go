package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/identify"
	"github.com/MeKo-Tech/langid/internal/testutil"
)

func TestNewServer_RequiresStore(t *testing.T) {
	_, err := NewServer(nil, Config{})
	require.Error(t, err)
}

func TestServer_HealthHandler(t *testing.T) {
	server := newTestServer(t, Config{Version: "1.2.3"})

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		checkResponse  bool
	}{
		{"GET request success", http.MethodGet, http.StatusOK, true},
		{"POST request not allowed", http.MethodPost, http.StatusMethodNotAllowed, false},
		{"PUT request not allowed", http.MethodPut, http.StatusMethodNotAllowed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			server.healthHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.checkResponse {
				return
			}

			var response HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "healthy", response.Status)
			assert.Equal(t, "1.2.3", response.Version)
			assert.NotEmpty(t, response.Time)
			assert.Equal(t, len(testutil.Samples()), response.Languages)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestServer_LanguagesHandler(t *testing.T) {
	server := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	server.languagesHandler(w, httptest.NewRequest(http.MethodGet, "/languages", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response LanguagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 6, response.Count)
	require.Len(t, response.Languages, 6)
	assert.Equal(t, "de", response.Languages[0].Code)
	assert.Positive(t, response.Languages[0].Ngrams)
	assert.Equal(t, 4, response.MaxLength)
	assert.InDelta(t, 0.10, response.HintMultiplier, 1e-12)

	w = httptest.NewRecorder()
	server.languagesHandler(w, httptest.NewRequest(http.MethodPost, "/languages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_IdentifyHandler_JSON(t *testing.T) {
	server := newTestServer(t, Config{})

	for _, sample := range testutil.Samples() {
		t.Run(sample.Language, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.identifyHandler(w, jsonRequest(t, "/identify", IdentifyRequest{Text: sample.Text, Top: 3}))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decodeIdentifyResponse(t, w)
			assert.True(t, resp.Success)
			assert.True(t, resp.Identified)
			assert.Equal(t, sample.Language, resp.Language)
			assert.LessOrEqual(t, len(resp.Results), 3)
		})
	}
}

func TestServer_IdentifyHandler_Form(t *testing.T) {
	server := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	server.identifyHandler(w, formRequest("/identify", map[string]string{
		"text":            testutil.Samples()[2].Text,
		"hint":            "en",
		"hint_multiplier": "0.05",
		"top":             "2",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeIdentifyResponse(t, w)
	assert.Equal(t, "en", resp.Language)
	assert.Len(t, resp.Results, 2)
}

func TestServer_IdentifyHandler_TextFormat(t *testing.T) {
	server := newTestServer(t, Config{})

	req := formRequest("/identify?format=text", map[string]string{"text": "Дети пошли в библиотеку"})
	w := httptest.NewRecorder()
	server.identifyHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "ru "), w.Body.String())
}

func TestServer_IdentifyHandler_Unidentified(t *testing.T) {
	server := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	server.identifyHandler(w, jsonRequest(t, "/identify", IdentifyRequest{Text: "1234 5678"}))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeIdentifyResponse(t, w)
	assert.True(t, resp.Success)
	assert.False(t, resp.Identified)
	assert.Empty(t, resp.Language)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestServer_IdentifyHandler_Errors(t *testing.T) {
	server := newTestServer(t, Config{MaxBodyKB: 1})

	tests := []struct {
		name           string
		req            *http.Request
		expectedStatus int
	}{
		{"wrong method", httptest.NewRequest(http.MethodGet, "/identify", nil), http.StatusMethodNotAllowed},
		{"empty text", jsonRequest(t, "/identify", IdentifyRequest{Text: "  "}), http.StatusBadRequest},
		{"missing text field", formRequest("/identify", map[string]string{"hint": "en"}), http.StatusBadRequest},
		{"negative top", jsonRequest(t, "/identify", IdentifyRequest{Text: "hello", Top: -1}), http.StatusBadRequest},
		{"bad multiplier", formRequest("/identify", map[string]string{"text": "a", "hint_multiplier": "x"}), http.StatusBadRequest},
		{"too large", jsonRequest(t, "/identify", IdentifyRequest{Text: strings.Repeat("a", 4096)}), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.identifyHandler(w, tt.req)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusMethodNotAllowed {
				resp := decodeIdentifyResponse(t, w)
				assert.False(t, resp.Success)
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestServer_Options(t *testing.T) {
	server := &Server{defaults: identify.Options{Hint: "en", HintMultiplier: 0.2, Top: 5}}

	opts := server.options(IdentifyRequest{})
	assert.Equal(t, identify.Options{Hint: "en", HintMultiplier: 0.2, Top: 5}, opts)

	opts = server.options(IdentifyRequest{Hint: "fr", HintMultiplier: 0.5, Top: 1})
	assert.Equal(t, "fr", opts.Hint)
	assert.InDelta(t, 0.5, opts.HintMultiplier, 1e-12)
	assert.Equal(t, 1, opts.Top)
}

func TestServer_Routes(t *testing.T) {
	mux := newTestMux(t, newTestServer(t, Config{}))

	for _, path := range []string{"/health", "/languages", "/metrics"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, jsonRequest(t, "/identify", IdentifyRequest{Text: testutil.Samples()[3].Text}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "es", decodeIdentifyResponse(t, w).Language)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "langid_identify_requests_total")
}
