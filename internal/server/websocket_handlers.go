package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/langid/internal/identify"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketResponse is sent for every WebSocket request.
type WebSocketResponse struct {
	Type       string            `json:"type"`
	Status     string            `json:"status"` // "completed" or "error"
	RequestID  string            `json:"request_id,omitempty"`
	Identified bool              `json:"identified"`
	Language   string            `json:"language,omitempty"`
	Results    []identify.Result `json:"results,omitempty"`
	Error      string            `json:"error,omitempty"`
	ErrorType  string            `json:"error_type,omitempty"`
}

var wsRequestSeq atomic.Uint64

// identifyWebSocketHandler streams identification over a WebSocket. Every
// text message is one IdentifyRequest.
func (s *Server) identifyWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages until the client goes away.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	conn.SetReadLimit(s.maxBodyKB * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

// handleWebSocketMessage answers one request message.
func (s *Server) handleWebSocketMessage(conn WebSocketConnWriter, data []byte) {
	var req IdentifyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := req.ID
	if requestID == "" {
		requestID = strconv.FormatUint(wsRequestSeq.Add(1), 10)
	}

	if strings.TrimSpace(req.Text) == "" {
		s.sendWebSocketError(conn, requestID, "invalid_request", "No text provided")
		return
	}

	results, err := s.identify(req, "websocket")
	if err != nil {
		errorType := "processing_error"
		if errors.Is(err, identify.ErrInvalidInput) {
			errorType = "invalid_request"
		}
		s.sendWebSocketError(conn, requestID, errorType, err.Error())
		return
	}

	resp := newIdentifyResponse(results)
	s.sendWebSocketResponse(conn, WebSocketResponse{
		Type:       "identify_response",
		Status:     "completed",
		RequestID:  requestID,
		Identified: resp.Identified,
		Language:   resp.Language,
		Results:    resp.Results,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketResponse{
		Type:      "error",
		Status:    "error",
		RequestID: requestID,
		Error:     message,
		ErrorType: errorType,
	})
}
