package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/langid/internal/identify"
)

const (
	formatText = "text"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   s.version,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Languages: s.profiles.Current().Len(),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// languagesHandler lists the loaded profiles.
func (s *Server) languagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := s.profiles.Current()
	langs := store.Languages()
	infos := make([]LanguageInfo, len(langs))
	for i, lang := range langs {
		infos[i] = LanguageInfo{
			Code:      lang.Code(),
			Ngrams:    lang.Len(),
			MaxLength: lang.MaxLength(),
			Source:    lang.Source(),
		}
	}

	s.writeJSON(w, http.StatusOK, LanguagesResponse{
		Languages:      infos,
		Count:          len(infos),
		MaxLength:      store.MaxLength(),
		HintMultiplier: store.HintMultiplier(),
	})
}

// identifyHandler ranks the languages of the posted text.
func (s *Server) identifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyKB*1024)

	req, err := parseIdentifyRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeErrorResponse(w, "No text provided", http.StatusBadRequest)
		return
	}

	results, err := s.identify(req, "http")
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, identify.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	format := r.URL.Query().Get("format")
	if format == formatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := identify.WriteTable(w, results, identify.DefaultPrecision); err != nil {
			s.logger.Error("Error writing identify response", "error", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, newIdentifyResponse(results))
}

// parseIdentifyRequest reads a JSON body, or form and query fields otherwise.
func parseIdentifyRequest(r *http.Request) (IdentifyRequest, error) {
	var req IdentifyRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, err
			}
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Text = r.FormValue("text")
	req.Hint = r.FormValue("hint")
	if v := r.FormValue("hint_multiplier"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid hint_multiplier %q", v)
		}
		req.HintMultiplier = m
	}
	if v := r.FormValue("top"); v != "" {
		top, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid top %q", v)
		}
		req.Top = top
	}
	return req, nil
}

// options merges a request with the server defaults.
func (s *Server) options(req IdentifyRequest) identify.Options {
	opts := s.defaults
	if req.Hint != "" {
		opts.Hint = req.Hint
	}
	if req.HintMultiplier != 0 {
		opts.HintMultiplier = req.HintMultiplier
	}
	if req.Top != 0 {
		opts.Top = req.Top
	}
	return opts
}

// identify runs one request against the current store and records metrics
// under source.
func (s *Server) identify(req IdentifyRequest, source string) ([]identify.Result, error) {
	start := time.Now()
	results, err := identify.Identify(s.profiles.Current(), req.Text, s.options(req))
	if err != nil {
		identifyRequestsTotal.WithLabelValues(source, "error").Inc()
		return nil, err
	}

	status := "identified"
	if len(results) == 0 {
		status = "unmatched"
	}
	identifyRequestsTotal.WithLabelValues(source, status).Inc()
	identifyDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	identifyTextBytes.WithLabelValues(source).Observe(float64(len(req.Text)))
	return results, nil
}

func newIdentifyResponse(results []identify.Result) IdentifyResponse {
	resp := IdentifyResponse{Success: true, Results: results}
	if resp.Results == nil {
		resp.Results = []identify.Result{}
	}
	if len(results) > 0 {
		resp.Identified = true
		resp.Language = results[0].Language
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Log error, but can't send another response
		s.logger.Error("Error encoding response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, IdentifyResponse{
		Success: false,
		Results: []identify.Result{},
		Error:   message,
	})
}
