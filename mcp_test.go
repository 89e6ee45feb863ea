package mcp12306

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drfccv/mcp-server-12306/station"
)

func testServer() *Server {
	provider := station.NewProvider()
	provider.Swap(station.NewIndex([]station.Station{
		{Name: "北京", Code: "BJP", Pinyin: "beijing", PyShort: "bj"},
		{Name: "上海", Code: "SHH", Pinyin: "shanghai", PyShort: "sh"},
	}))
	return &Server{stations: provider, sessions: newSessionStore()}
}

func postMCP(t *testing.T, s *Server, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	w := httptest.NewRecorder()
	s.HandleMCP(w, req)
	return w
}

func initialize(t *testing.T, s *Server) string {
	t.Helper()
	w := postMCP(t, s, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("initialize status = %d, want 200", w.Code)
	}
	id := w.Header().Get("Mcp-Session-Id")
	if id == "" {
		t.Fatal("initialize did not return an Mcp-Session-Id header")
	}
	return id
}

func TestInitializeHandshake(t *testing.T) {
	s := testServer()
	w := postMCP(t, s, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Result initializeResult `json:"result"`
		Error  *rpcError        `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result.ProtocolVersion != protocolVersion {
		t.Errorf("protocolVersion = %s, want %s", resp.Result.ProtocolVersion, protocolVersion)
	}
	if s.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.sessions.Len())
	}
}

func TestRequestWithoutSession(t *testing.T) {
	s := testServer()
	w := postMCP(t, s, "", `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = postMCP(t, s, "no-such-session", `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestToolsList(t *testing.T) {
	s := testServer()
	id := initialize(t, s)

	w := postMCP(t, s, id, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Result toolsListResult `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Result.Tools) != len(mcpTools) {
		t.Errorf("listed %d tools, want %d", len(resp.Result.Tools), len(mcpTools))
	}
	names := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"query-tickets", "query-transfer", "search-stations"} {
		if !names[want] {
			t.Errorf("tool %s missing from tools/list", want)
		}
	}
}

func TestToolsCallSearchStations(t *testing.T) {
	s := testServer()
	id := initialize(t, s)

	w := postMCP(t, s, id,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search-stations","arguments":{"query":"北京"}}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Result toolResult `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.IsError {
		t.Fatalf("tool errored: %s", resp.Result.Content[0].Text)
	}
	var payload struct {
		Success  bool             `json:"success"`
		Count    int              `json:"count"`
		Stations []stationPayload `json:"stations"`
	}
	if err := json.Unmarshal([]byte(resp.Result.Content[0].Text), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.Success || payload.Count != 1 || payload.Stations[0].Code != "BJP" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := testServer()
	id := initialize(t, s)

	w := postMCP(t, s, id,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"no-such-tool","arguments":{}}}`)
	var resp struct {
		Error *rpcError `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("error = %+v, want code %d", resp.Error, codeMethodNotFound)
	}
}

func TestUnknownMethod(t *testing.T) {
	s := testServer()
	id := initialize(t, s)

	w := postMCP(t, s, id, `{"jsonrpc":"2.0","id":5,"method":"resources/list"}`)
	var resp struct {
		Error *rpcError `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("error = %+v, want code %d", resp.Error, codeMethodNotFound)
	}
}

func TestNotificationAccepted(t *testing.T) {
	s := testServer()
	id := initialize(t, s)

	w := postMCP(t, s, id, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("notification got a body: %s", w.Body.String())
	}
}

func TestParseError(t *testing.T) {
	s := testServer()
	w := postMCP(t, s, "", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Error *rpcError `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Errorf("error = %+v, want code %d", resp.Error, codeParseError)
	}
}

func TestSessionDelete(t *testing.T) {
	s := testServer()
	id := initialize(t, s)

	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Header.Set("Mcp-Session-Id", id)
	w := httptest.NewRecorder()
	s.HandleMCP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	if s.sessions.Len() != 0 {
		t.Errorf("sessions = %d after delete, want 0", s.sessions.Len())
	}

	// The terminated session is gone for good.
	resp := postMCP(t, s, id, `{"jsonrpc":"2.0","id":6,"method":"tools/list"}`)
	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d after termination, want 404", resp.Code)
	}
}
