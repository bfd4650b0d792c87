package mcp

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-speech-reader/internal/config"
)

func TestServer_Run_StdioMode_EOF(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)
	ts.stdin = strings.NewReader("")
	ts.stdout = &bytes.Buffer{}

	done := make(chan error, 1)
	go func() {
		done <- ts.Run(context.Background())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on closed input", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after input closed")
	}
}

func TestServer_Run_StdioMode_ContextCancellation(t *testing.T) {
	ts := newTestServer(t, config.ModeStdio)

	// A pipe that is never written keeps the reader blocked.
	reader, writer := io.Pipe()
	defer writer.Close()
	ts.stdin = reader
	ts.stdout = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ts.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestServer_Run_ServerMode_GracefulShutdown(t *testing.T) {
	ts := newTestServer(t, config.ModeServer)
	ts.config.Host = "127.0.0.1"
	ts.config.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ts.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after shutdown", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestServer_Run_ServerMode_AddressInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	ts := newTestServer(t, config.ModeServer)
	ts.config.Host = "127.0.0.1"
	ts.config.Port = listener.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = ts.Run(ctx)
	if err == nil {
		t.Fatal("Run() expected error for an address in use")
	}
	if !strings.Contains(err.Error(), "failed to serve SSE") {
		t.Errorf("Run() error = %v, want SSE serve error", err)
	}
}

func TestServer_HTTPHandler(t *testing.T) {
	ts := newTestServer(t, config.ModeServer)

	sse := server.NewSSEServer(ts.mcpServer)
	httpServer := httptest.NewServer(ts.httpHandler(sse))
	defer httpServer.Close()

	t.Run("serves audio files", func(t *testing.T) {
		if err := os.MkdirAll(ts.synthesizer.AudioDir(), 0o755); err != nil {
			t.Fatalf("failed to create audio dir: %v", err)
		}
		name := "clip.mp3"
		if err := os.WriteFile(filepath.Join(ts.synthesizer.AudioDir(), name), []byte("ID3audio"), 0o644); err != nil {
			t.Fatalf("failed to write audio: %v", err)
		}

		resp, err := http.Get(httpServer.URL + AudioRoute + name)
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || string(body) != "ID3audio" {
			t.Errorf("GET audio = %d %q, want 200 %q", resp.StatusCode, body, "ID3audio")
		}
	})

	t.Run("missing audio", func(t *testing.T) {
		resp, err := http.Get(httpServer.URL + AudioRoute + "missing.mp3")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("announces the message endpoint", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpServer.URL+"/sse", nil)
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /sse failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data:") {
				if !strings.Contains(line, "sessionId=") {
					t.Errorf("endpoint event = %q, want a session endpoint", line)
				}
				return
			}
		}
		t.Fatalf("no endpoint event received: %v", scanner.Err())
	})
}
