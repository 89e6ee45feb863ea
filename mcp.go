package mcp12306

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/drfccv/mcp-server-12306/config"
)

const protocolVersion = "2025-03-26"

// JSON-RPC 2.0 error codes used by the transport.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInternalError  = -32603
	codeSessionError   = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func successResponse(id json.RawMessage, result any) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, msg string) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}}
}

// isNotification reports whether the request carries no id and therefore
// expects no response body.
func (r rpcRequest) isNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Server) initializeResult() initializeResult {
	return initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: serverInfo{Name: "mcp-server-12306", Version: Version},
	}
}

type toolsListResult struct {
	Tools []toolDef `json:"tools"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// dispatch routes a parsed JSON-RPC request to its handler. The returned
// sessionID is non-empty only for initialize, where the transport layer must
// surface it in the Mcp-Session-Id header.
func (s *Server) dispatch(ctx context.Context, req rpcRequest, userAgent, clientAddr string) (resp rpcResponse, sessionID string, handled bool) {
	switch req.Method {
	case "initialize":
		id := s.sessions.Create(userAgent, clientAddr, protocolVersion)
		log.Printf("session initialized: %s (%s)", id, clientAddr)
		return successResponse(req.ID, s.initializeResult()), id, true
	case "notifications/initialized":
		return rpcResponse{}, "", false
	case "ping":
		return successResponse(req.ID, map[string]any{}), "", true
	case "tools/list":
		return successResponse(req.ID, toolsListResult{Tools: mcpTools}), "", true
	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidRequest, "invalid tools/call params"), "", true
		}
		if params.Name == "" {
			return errorResponse(req.ID, codeInvalidRequest, "tool name is required"), "", true
		}
		if !knownTool(params.Name) {
			return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("unknown tool: %s", params.Name)), "", true
		}
		result := s.CallTool(ctx, params.Name, params.Arguments)
		return successResponse(req.ID, result), "", true
	default:
		if strings.HasPrefix(req.Method, "notifications/") {
			return rpcResponse{}, "", false
		}
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method)), "", true
	}
}

func knownTool(name string) bool {
	for _, t := range mcpTools {
		if t.Name == name {
			return true
		}
	}
	return false
}

func writeCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id, Last-Event-ID")
	h.Set("Access-Control-Expose-Headers", "Mcp-Session-Id")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// HandleMCP is the Streamable HTTP endpoint: POST carries JSON-RPC messages,
// GET opens an SSE keepalive stream, DELETE ends a session.
func (s *Server) HandleMCP(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		s.handleMCPPost(w, r)
	case http.MethodGet:
		s.handleMCPGet(w, r)
	case http.MethodDelete:
		s.handleMCPDelete(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed,
			errorResponse(nil, codeInvalidRequest, "method not allowed"))
	}
}

func (s *Server) handleMCPPost(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, codeParseError, "parse error"))
		return
	}
	if req.JSONRPC != "2.0" {
		writeJSON(w, http.StatusBadRequest, errorResponse(req.ID, codeInvalidRequest, "jsonrpc must be \"2.0\""))
		return
	}

	if req.Method != "initialize" {
		sessionID := r.Header.Get("Mcp-Session-Id")
		if sessionID == "" {
			writeJSON(w, http.StatusBadRequest,
				errorResponse(req.ID, codeSessionError, "missing Mcp-Session-Id header"))
			return
		}
		if !s.sessions.Exists(sessionID) {
			writeJSON(w, http.StatusNotFound,
				errorResponse(req.ID, codeSessionError, "session not found"))
			return
		}
		if req.Method == "notifications/initialized" {
			s.sessions.MarkInitialized(sessionID)
		}
	}

	resp, newSession, handled := s.dispatch(r.Context(), req, r.UserAgent(), r.RemoteAddr)
	if newSession != "" {
		w.Header().Set("Mcp-Session-Id", newSession)
	}
	if !handled || req.isNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMCPGet serves the SSE stream clients may open for server-initiated
// messages. No such messages exist yet, so the stream only sends keepalives.
func (s *Server) handleMCPGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" || !s.sessions.Exists(sessionID) {
		writeJSON(w, http.StatusNotFound,
			errorResponse(nil, codeSessionError, "session not found"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError,
			errorResponse(nil, codeInternalError, "streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(time.Duration(config.Config.Server.KeepaliveSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleMCPDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" || !s.sessions.Exists(sessionID) {
		writeJSON(w, http.StatusNotFound,
			errorResponse(nil, codeSessionError, "session not found"))
		return
	}
	s.sessions.Delete(sessionID)
	log.Printf("session terminated: %s", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
