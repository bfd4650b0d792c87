package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a3tai/pdf-speech-reader/internal/config"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/pdftest"
)

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// runSession feeds newline-delimited JSON-RPC messages through stdio mode
// and returns the responses keyed by id.
func runSession(t *testing.T, ts *testServer, messages ...string) map[int]rpcResponse {
	t.Helper()

	var out bytes.Buffer
	ts.stdin = strings.NewReader(strings.Join(messages, "\n") + "\n")
	ts.stdout = &out

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ts.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	responses := make(map[int]rpcResponse)
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp rpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("invalid response %q: %v", line, err)
		}
		responses[resp.ID] = resp
	}
	return responses
}

const initializeMessage = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":` +
	`{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

func TestServerIntegration_ToolsList(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)

	responses := runSession(t, ts,
		initializeMessage,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`,
	)

	initResp, ok := responses[1]
	if !ok || initResp.Error != nil {
		t.Fatalf("initialize failed: %+v", initResp)
	}
	if !strings.Contains(string(initResp.Result), `"test-server"`) {
		t.Errorf("initialize result missing server name: %s", initResp.Result)
	}

	listResp, ok := responses[2]
	if !ok || listResp.Error != nil {
		t.Fatalf("tools/list failed: %+v", listResp)
	}

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(listResp.Result, &list); err != nil {
		t.Fatalf("invalid tools/list result: %v", err)
	}

	got := make(map[string]bool)
	for _, tool := range list.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{
		"pdf_extract_text", "pdf_inspect", "pdf_search_directory",
		"speech_synthesize", "pdf_read_aloud", "server_info",
	} {
		if !got[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
	if len(list.Tools) != len(ts.tools()) {
		t.Errorf("registered %d tools, want %d", len(list.Tools), len(ts.tools()))
	}
}

func TestServerIntegration_ToolsCall(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)
	ts.writePDF(t, "doc.pdf", pdftest.Lines(72, 700, "first line", "second line"))

	responses := runSession(t, ts,
		initializeMessage,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"pdf_extract_text","arguments":{"path":"doc.pdf","primary":"fast"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"pdf_extract_text","arguments":{"path":"missing.pdf"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"speech_synthesize","arguments":{"text":"hello","speed":2}}}`,
	)

	type callResult struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	decode := func(id int) callResult {
		t.Helper()
		resp, ok := responses[id]
		if !ok || resp.Error != nil {
			t.Fatalf("call %d failed: %+v", id, resp)
		}
		var result callResult
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			t.Fatalf("invalid call result: %v", err)
		}
		if len(result.Content) == 0 {
			t.Fatalf("call %d returned no content", id)
		}
		return result
	}

	extract := decode(2)
	if extract.IsError {
		t.Fatalf("extract returned tool error: %s", extract.Content[0].Text)
	}
	if !strings.Contains(extract.Content[0].Text, "first line\nsecond line") {
		t.Errorf("extract text = %q, want both lines in order", extract.Content[0].Text)
	}

	if missing := decode(3); !missing.IsError {
		t.Error("expected tool error for missing file")
	}

	speak := decode(4)
	if speak.IsError {
		t.Fatalf("speech returned tool error: %s", speak.Content[0].Text)
	}
	if ts.edge.last.Speed != 2 {
		t.Errorf("speed = %v, want 2", ts.edge.last.Speed)
	}
}
