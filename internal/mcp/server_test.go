package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/pdf-speech-reader/internal/config"
	"github.com/a3tai/pdf-speech-reader/internal/pdf"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/pdftest"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/wrapper"
	"github.com/a3tai/pdf-speech-reader/internal/speech"
)

// recordingEngine writes a fixed payload and remembers the last request.
type recordingEngine struct {
	name  speech.EngineName
	calls int
	last  speech.Request
}

func (e *recordingEngine) Name() speech.EngineName { return e.name }
func (e *recordingEngine) Extension() string       { return ".mp3" }

func (e *recordingEngine) Synthesize(_ context.Context, req speech.Request, out string) error {
	e.calls++
	e.last = req
	return os.WriteFile(out, []byte("ID3"), 0o644)
}

type testServer struct {
	*Server
	dir    string
	edge   *recordingEngine
	google *recordingEngine
}

func newTestConfig(dir, mode string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mode = mode
	cfg.PDFDirectory = dir
	cfg.AudioDirectory = filepath.Join(dir, config.DefaultAudioSubdir)
	cfg.ServerName = "test-server"
	cfg.MaxFileSize = 1024 * 1024
	return cfg
}

func newTestServer(t *testing.T, mode string) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := newTestConfig(dir, mode)

	pdfService, err := pdf.NewService(pdf.ServiceConfig{
		Directory:   cfg.PDFDirectory,
		MaxFileSize: cfg.MaxFileSize,
		FastLibrary: wrapper.LibraryPDFCPU,
	})
	if err != nil {
		t.Fatalf("failed to create PDF service: %v", err)
	}

	edge := &recordingEngine{name: speech.EngineEdge}
	google := &recordingEngine{name: speech.EngineGoogle}
	synth, err := speech.NewSynthesizer(speech.SynthesizerConfig{AudioDir: cfg.AudioDir()}, edge, google)
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}

	server, err := NewServer(cfg, pdfService, synth, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	return &testServer{Server: server, dir: dir, edge: edge, google: google}
}

func (ts *testServer) writePDF(t *testing.T, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(ts.dir, name)
	if err := os.WriteFile(path, pdftest.Build(pages...), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText returns the text of a single-content tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result should not be nil")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return content.Text
}

func TestNewServer(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)

	if ts.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}
	if ts.stdin != os.Stdin || ts.stdout != os.Stdout {
		t.Error("stdio should default to the process streams")
	}

	cfg := newTestConfig(t.TempDir(), config.ModeStdio)
	if _, err := NewServer(nil, ts.pdfService, ts.synthesizer, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(cfg, nil, ts.synthesizer, nil); err == nil {
		t.Error("expected error for nil pdfService")
	}
	if _, err := NewServer(cfg, ts.pdfService, nil, nil); err == nil {
		t.Error("expected error for nil synthesizer")
	}
}

func TestServer_HandlePDFExtractText(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)
	ts.writePDF(t, "hello.pdf", pdftest.Text(72, 700, "Hello world"))

	tests := []struct {
		name         string
		args         map[string]any
		wantError    bool
		wantContains []string
	}{
		{
			name: "detailed default",
			args: map[string]any{"path": "hello.pdf"},
			wantContains: []string{
				"Strategy: detailed",
				"Fallback Used: false",
				"Language: en",
				"Content:\nworld Hello",
			},
		},
		{
			name:         "fast override",
			args:         map[string]any{"path": "hello.pdf", "primary": "fast"},
			wantContains: []string{"Strategy: fast", "Content:\nHello world"},
		},
		{
			name:      "missing path",
			args:      map[string]any{},
			wantError: true,
		},
		{
			name:      "missing file",
			args:      map[string]any{"path": "absent.pdf"},
			wantError: true,
		},
		{
			name:      "outside directory",
			args:      map[string]any{"path": "../../etc/passwd"},
			wantError: true,
		},
		{
			name:      "unknown strategy",
			args:      map[string]any{"path": "hello.pdf", "primary": "ocr"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ts.handlePDFExtractText(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantError, resultText(t, result))
			}

			text := resultText(t, result)
			for _, want := range tt.wantContains {
				if !strings.Contains(text, want) {
					t.Errorf("result does not contain %q\nGot: %s", want, text)
				}
			}
		})
	}
}

func TestServer_HandlePDFInspect(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)
	ts.writePDF(t, "two.pdf", pdftest.Text(72, 700, "one"), pdftest.Text(72, 700, "two"))

	result, err := ts.handlePDFInspect(context.Background(), callRequest(map[string]any{"path": "two.pdf"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"Pages: 2", "Encrypted: false", "two.pdf"} {
		if !strings.Contains(text, want) {
			t.Errorf("result does not contain %q\nGot: %s", want, text)
		}
	}

	result, _ = ts.handlePDFInspect(context.Background(), callRequest(map[string]any{}))
	if !result.IsError {
		t.Error("expected tool error for missing path")
	}
}

func TestServer_HandlePDFSearchDirectory(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)
	ts.writePDF(t, "arabic-grammar.pdf", pdftest.Text(72, 700, "a"))
	ts.writePDF(t, "invoice.pdf", pdftest.Text(72, 700, "b"))

	tests := []struct {
		name         string
		args         map[string]any
		wantContains []string
		wantMissing  []string
	}{
		{
			name:         "all files",
			args:         map[string]any{},
			wantContains: []string{"Found 2 PDF file(s)", "arabic-grammar.pdf", "invoice.pdf"},
		},
		{
			name:         "query",
			args:         map[string]any{"query": "grammar"},
			wantContains: []string{"Found 1 PDF file(s)", "Search query: grammar", "arabic-grammar.pdf"},
			wantMissing:  []string{"invoice.pdf"},
		},
		{
			name:         "limit",
			args:         map[string]any{"limit": float64(1)},
			wantContains: []string{"Found 1 PDF file(s)"},
		},
		{
			name:         "no match",
			args:         map[string]any{"query": "zzz"},
			wantContains: []string{"No PDF files found", "(searched for: zzz)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ts.handlePDFSearchDirectory(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			text := resultText(t, result)
			if result.IsError {
				t.Fatalf("unexpected tool error: %s", text)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(text, want) {
					t.Errorf("result does not contain %q\nGot: %s", want, text)
				}
			}
			for _, unwanted := range tt.wantMissing {
				if strings.Contains(text, unwanted) {
					t.Errorf("result should not contain %q\nGot: %s", unwanted, text)
				}
			}
		})
	}

	result, _ := ts.handlePDFSearchDirectory(context.Background(), callRequest(map[string]any{"directory": "/"}))
	if !result.IsError {
		t.Error("expected tool error for a directory outside the configured root")
	}
}

func TestServer_HandleSpeechSynthesize(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)

	result, err := ts.handleSpeechSynthesize(context.Background(), callRequest(map[string]any{
		"text":     "مرحبا بكم",
		"language": "ar-EG",
		"speed":    1.25,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}

	for _, want := range []string{"Engine: edge", "Language: ar", "Size: 3 bytes", ts.synthesizer.AudioDir()} {
		if !strings.Contains(text, want) {
			t.Errorf("result does not contain %q\nGot: %s", want, text)
		}
	}
	if strings.Contains(text, "Audio URL") {
		t.Error("stdio mode should not advertise an audio URL")
	}

	if ts.edge.last.Speed != 1.25 {
		t.Errorf("speed = %v, want 1.25", ts.edge.last.Speed)
	}
	if ts.google.calls != 0 {
		t.Errorf("google should not be called, got %d calls", ts.google.calls)
	}

	t.Run("explicit engine", func(t *testing.T) {
		result, _ := ts.handleSpeechSynthesize(context.Background(), callRequest(map[string]any{
			"text":   "hello",
			"engine": "google",
		}))
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", resultText(t, result))
		}
		if ts.google.calls != 1 {
			t.Errorf("google calls = %d, want 1", ts.google.calls)
		}
	})

	t.Run("errors", func(t *testing.T) {
		for _, args := range []map[string]any{
			{},
			{"text": "  "},
			{"text": "hello", "engine": "pyttsx3"},
			{"text": "hello", "engine": "system"},
		} {
			result, _ := ts.handleSpeechSynthesize(context.Background(), callRequest(args))
			if !result.IsError {
				t.Errorf("expected tool error for %v", args)
			}
		}
	})
}

func TestServer_HandlePDFReadAloud(t *testing.T) {
	ts := newTestServer(t, config.ModeServer)
	ts.writePDF(t, "hello.pdf", pdftest.Text(72, 700, "Hello world"))

	result, err := ts.handlePDFReadAloud(context.Background(), callRequest(map[string]any{
		"path":    "hello.pdf",
		"primary": "fast",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}

	for _, want := range []string{"Strategy: fast", "Engine: edge", "Audio URL: " + AudioRoute} {
		if !strings.Contains(text, want) {
			t.Errorf("result does not contain %q\nGot: %s", want, text)
		}
	}

	if ts.edge.last.Text != "Hello world" {
		t.Errorf("spoken text = %q, want %q", ts.edge.last.Text, "Hello world")
	}
	if ts.edge.last.Language != "en" {
		t.Errorf("language = %q, want detected %q", ts.edge.last.Language, "en")
	}

	result, _ = ts.handlePDFReadAloud(context.Background(), callRequest(map[string]any{"path": "absent.pdf"}))
	if !result.IsError {
		t.Error("expected tool error for missing file")
	}
	if ts.edge.calls != 1 {
		t.Errorf("edge calls = %d, want 1", ts.edge.calls)
	}
}

func TestServer_HandleServerInfo(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)

	result, err := ts.handleServerInfo(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := resultText(t, result)

	expected := []string{
		"test-server v1.0.0",
		"Mode: stdio",
		"Primary Strategy: detailed",
		"Default Speech Engine: edge",
		"Registered Speech Engines: edge, google",
		"Audio Directory: " + ts.synthesizer.AudioDir(),
	}
	for _, tool := range ts.tools() {
		expected = append(expected, "- "+tool.tool.Name+":")
	}

	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("result does not contain %q\nGot: %s", want, text)
		}
	}
}
