package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/config"
)

// newTestServer builds a server over real services with the heuristic OCR
// engine, an in-memory index and temporary directories.
func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.OCR.Engine = "heuristic"
	cfg.Index.Backend = "memory"
	cfg.Cache.Backend = "memory"
	cfg.Compositor.TemplateDir = filepath.Join(dir, "templates")
	cfg.Output.Dir = filepath.Join(dir, "out")

	svc, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return New(svc, nil, opts...)
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t, WithVersion("1.2.3"))
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if info["name"] != "memezap" || info["version"] != "1.2.3" {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})
	if resp != nil {
		t.Errorf("notification should get no response, got %+v", resp)
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})

	if resp == nil || resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error.Code: got %d, want -32601", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "resources/list") {
		t.Errorf("Error.Message: got %s", resp.Error.Message)
	}
}

func TestRun(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"index_stats"}}`,
	}, "\n")
	var out bytes.Buffer
	s := newTestServer(t, WithIO(strings.NewReader(in), &out))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var responses []MCPResponse
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("bad frame %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}

	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}
	if responses[0].ID != float64(1) || responses[0].Error != nil {
		t.Errorf("initialize response: %+v", responses[0])
	}
	if responses[1].Error == nil || responses[1].Error.Code != -32700 {
		t.Errorf("parse error response: %+v", responses[1])
	}
	if responses[2].ID != float64(2) || responses[2].Error != nil {
		t.Errorf("tools/call response: %+v", responses[2])
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	s := newTestServer(t, WithIO(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out))

	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("Run: got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %s", out.String())
	}
}
