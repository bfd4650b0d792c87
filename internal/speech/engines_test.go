package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeArgs(t *testing.T) {
	args := edgeArgs("ar-EG-SalmaNeural", "+0%", "/tmp/out.mp3")
	assert.Equal(t, []string{"--voice", "ar-EG-SalmaNeural", "--file", "-", "--write-media", "/tmp/out.mp3"}, args)

	args = edgeArgs("en-US-ChristopherNeural", "-20%", "/tmp/out.mp3")
	assert.Contains(t, args, "--rate=-20%")
}

func TestSystemArgs(t *testing.T) {
	assert.Equal(t, []string{"-v", "ar", "-s", "175", "-w", "/tmp/a.wav", "--stdin"}, systemArgs("ar", 0, "/tmp/a.wav"))
	assert.Equal(t, []string{"-v", "en-us", "-s", "263", "-w", "/tmp/a.wav", "--stdin"}, systemArgs("en-us", 1.5, "/tmp/a.wav"))
}

// writeScript installs an executable shell script that copies stdin to the
// file following outFlag.
func writeScript(t *testing.T, outFlag string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unsupported")
	}

	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "` + outFlag + `" ]; then shift; out="$1"; fi
  shift
done
cat > "$out"
`
	path := filepath.Join(t.TempDir(), "fake-tts")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestEdgeEngine_Synthesize(t *testing.T) {
	engine := NewEdgeEngine(writeScript(t, "--write-media"))
	out := filepath.Join(t.TempDir(), "out.mp3")

	err := engine.Synthesize(context.Background(), Request{Text: "hello", Language: "en", Speed: 1}, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSystemEngine_Synthesize(t *testing.T) {
	engine := NewSystemEngine(writeScript(t, "-w"))
	assert.True(t, engine.Available())

	out := filepath.Join(t.TempDir(), "out.wav")
	err := engine.Synthesize(context.Background(), Request{Text: "مرحبا", Language: "ar"}, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", string(data))
}

func TestExecEngines_Unavailable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-binary")

	err := NewEdgeEngine(missing).Synthesize(context.Background(), Request{Text: "x"}, filepath.Join(t.TempDir(), "a.mp3"))
	assert.ErrorIs(t, err, ErrEngineUnavailable)

	system := NewSystemEngine(missing)
	assert.False(t, system.Available())
	err = system.Synthesize(context.Background(), Request{Text: "x"}, filepath.Join(t.TempDir(), "a.wav"))
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestGoogleEngine_Synthesize(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
		langs   []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		langs = append(langs, r.URL.Query().Get("tl"))
		mu.Unlock()

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("MP3:" + r.URL.Query().Get("idx") + ";"))
	}))
	defer server.Close()

	engine := NewGoogleEngine(server.URL, 5*time.Second)
	out := filepath.Join(t.TempDir(), "out.mp3")

	text := strings.Repeat("word ", 50) // 249 runes once trimmed
	err := engine.Synthesize(context.Background(), Request{Text: text, Language: "zh-Hans"}, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "MP3:0;MP3:1;MP3:2;", string(data))

	require.Len(t, queries, 3)
	for _, q := range queries {
		assert.LessOrEqual(t, len([]rune(q)), GoogleChunkSize)
	}
	assert.Equal(t, []string{"zh-CN", "zh-CN", "zh-CN"}, langs)
}

func TestGoogleEngine_Errors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		err := NewGoogleEngine(server.URL, time.Second).
			Synthesize(context.Background(), Request{Text: "hi"}, filepath.Join(t.TempDir(), "a.mp3"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "google tts returned status 429")
	})

	t.Run("empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := NewGoogleEngine(server.URL, time.Second).
			Synthesize(context.Background(), Request{Text: "hi"}, filepath.Join(t.TempDir(), "a.mp3"))
		assert.ErrorIs(t, err, ErrEmptyAudio)
	})

	t.Run("empty text", func(t *testing.T) {
		err := NewGoogleEngine("", 0).
			Synthesize(context.Background(), Request{Text: "  "}, filepath.Join(t.TempDir(), "a.mp3"))
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}
