package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
	"unicode/utf8"
)

const (
	// DefaultGoogleURL is the translate speech endpoint.
	DefaultGoogleURL = "https://translate.google.com/translate_tts"
	// GoogleChunkSize is the longest text, in runes, accepted per request.
	GoogleChunkSize = 100
	// maxChunkBytes bounds a single audio response.
	maxChunkBytes = 16 << 20
)

// GoogleEngine fetches MP3 audio from the translate speech endpoint. Long
// text is split on word boundaries and the MP3 parts are concatenated.
type GoogleEngine struct {
	BaseURL    string
	httpClient *http.Client
}

// NewGoogleEngine creates a Google engine; an empty baseURL means DefaultGoogleURL.
func NewGoogleEngine(baseURL string, timeout time.Duration) *GoogleEngine {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleEngine{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns EngineGoogle
func (g *GoogleEngine) Name() EngineName { return EngineGoogle }

// Extension returns ".mp3"
func (g *GoogleEngine) Extension() string { return ".mp3" }

// Synthesize writes MP3 audio for req to out.
func (g *GoogleEngine) Synthesize(ctx context.Context, req Request, out string) (err error) {
	chunks := ChunkText(req.Text, GoogleChunkSize)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	lang := BaseLanguage(req.Language)
	if l, ok := googleLanguages[lang]; ok {
		lang = l
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close audio file: %w", cerr)
		}
	}()

	for i, chunk := range chunks {
		if err := g.fetch(ctx, f, chunk, lang, i, len(chunks)); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	return nil
}

func (g *GoogleEngine) fetch(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	u, err := url.Parse(g.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid google tts url: %w", err)
	}

	q := u.Query()
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("ttsspeed", "1")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("google tts returned status %d: %s", resp.StatusCode, string(body))
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, maxChunkBytes))
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}
	if n == 0 {
		return ErrEmptyAudio
	}

	return nil
}
