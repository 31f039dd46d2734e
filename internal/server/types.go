// Package server exposes language identification over HTTP and WebSocket.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MeKo-Tech/langid/internal/identify"
	"github.com/MeKo-Tech/langid/internal/profile"
)

// StoreSource yields the profile store to identify against. A reload.Holder
// satisfies it, so a watched profile directory is picked up between requests.
type StoreSource interface {
	Current() *profile.Store
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	profiles    StoreSource
	corsOrigin  string
	maxBodyKB   int64
	defaults    identify.Options
	version     string
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// RateLimitConfig configures the per-client limiter. Zero limits are off.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxTextPerDay     int64 // bytes of request body
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxBodyKB  int64
	TimeoutSec int
	Defaults   identify.Options // applied when a request leaves a field unset
	RateLimit  RateLimitConfig
	Version    string
	Logger     *slog.Logger
}

// Response types for API endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Time      string `json:"time"`
	Languages int    `json:"languages"`
}

type LanguageInfo struct {
	Code      string `json:"code"`
	Ngrams    int    `json:"ngrams"`
	MaxLength int    `json:"max_length"`
	Source    string `json:"source,omitempty"`
}

type LanguagesResponse struct {
	Languages      []LanguageInfo `json:"languages"`
	Count          int            `json:"count"`
	MaxLength      int            `json:"max_length"`
	HintMultiplier float64        `json:"hint_multiplier"`
}

// IdentifyRequest is the body of POST /identify and of a WebSocket message.
type IdentifyRequest struct {
	ID             string  `json:"id,omitempty"`
	Text           string  `json:"text"`
	Hint           string  `json:"hint,omitempty"`
	HintMultiplier float64 `json:"hint_multiplier,omitempty"`
	Top            int     `json:"top,omitempty"`
}

type IdentifyResponse struct {
	Success    bool              `json:"success"`
	Identified bool              `json:"identified"`
	Language   string            `json:"language,omitempty"`
	Results    []identify.Result `json:"results"`
	Error      string            `json:"error,omitempty"`
}

// NewServer creates a server answering from profiles.
func NewServer(profiles StoreSource, config Config) (*Server, error) {
	if profiles == nil || profiles.Current() == nil {
		return nil, errors.New("server requires a loaded profile store")
	}
	if err := config.Defaults.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := config.MaxBodyKB
	if maxBody <= 0 {
		maxBody = 1024
	}
	corsOrigin := config.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	s := &Server{
		profiles:   profiles,
		corsOrigin: corsOrigin,
		maxBodyKB:  maxBody,
		defaults:   config.Defaults,
		version:    config.Version,
		logger:     logger,
	}
	if rl := config.RateLimit; rl.Enabled {
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay, rl.MaxTextPerDay)
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/languages", s.corsMiddleware(s.languagesHandler))
	mux.HandleFunc("/identify", s.corsMiddleware(s.rateLimitMiddleware(s.identifyHandler)))
	mux.HandleFunc("/ws/identify", s.rateLimitMiddleware(s.identifyWebSocketHandler))
	mux.Handle("/metrics", metricsHandler())
}
