package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single engine run.
const DefaultTimeout = 2 * time.Minute

// SynthesizerConfig configures a Synthesizer.
type SynthesizerConfig struct {
	// AudioDir receives the generated files. It is created on demand.
	AudioDir string
	// DefaultEngine is used when a request names none. Empty means EngineEdge.
	DefaultEngine EngineName
	// Timeout bounds each engine run. Zero means DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Synthesizer routes requests to engines. The edge engine falls back to
// google when it fails or writes an empty file; google and system run alone.
type Synthesizer struct {
	engines       map[EngineName]Engine
	audioDir      string
	defaultEngine EngineName
	timeout       time.Duration
	logger        *slog.Logger
}

// NewSynthesizer creates a Synthesizer over the given engines.
func NewSynthesizer(cfg SynthesizerConfig, engines ...Engine) (*Synthesizer, error) {
	if strings.TrimSpace(cfg.AudioDir) == "" {
		return nil, fmt.Errorf("audio directory cannot be empty")
	}

	defaultEngine, err := ParseEngineName(string(cfg.DefaultEngine))
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{
		engines:       make(map[EngineName]Engine, len(engines)),
		audioDir:      cfg.AudioDir,
		defaultEngine: defaultEngine,
		timeout:       cfg.Timeout,
		logger:        cfg.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, e := range engines {
		if e != nil {
			s.engines[e.Name()] = e
		}
	}

	return s, nil
}

// AudioDir returns the directory audio files are written to
func (s *Synthesizer) AudioDir() string {
	return s.audioDir
}

// DefaultEngine returns the engine used when a request names none
func (s *Synthesizer) DefaultEngine() EngineName {
	return s.defaultEngine
}

// Engines lists the registered engine names
func (s *Synthesizer) Engines() []EngineName {
	names := make([]EngineName, 0, len(s.engines))
	for _, n := range []EngineName{EngineEdge, EngineGoogle, EngineSystem} {
		if _, ok := s.engines[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// Synthesize produces an audio file for req.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	req.Text = strings.TrimSpace(strings.ReplaceAll(req.Text, "\x00", ""))
	if req.Text == "" {
		return nil, ErrEmptyText
	}

	name := req.Engine
	if name == "" {
		name = s.defaultEngine
	}
	name, err := ParseEngineName(string(name))
	if err != nil {
		return nil, err
	}
	req.Engine = name

	if strings.TrimSpace(req.Language) == "" {
		req.Language = DetectLanguage(req.Text)
	} else {
		req.Language = BaseLanguage(req.Language)
	}
	if req.Speed <= 0 {
		req.Speed = 1
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	log := s.logger.With("engine", string(name), "language", req.Language, "runes", len([]rune(req.Text)))

	result, err := s.run(ctx, name, req)
	if err == nil {
		log.Debug("speech synthesized", "file", result.FileName, "bytes", result.Bytes)
		return result, nil
	}
	if name != EngineEdge {
		return nil, err
	}

	log.Warn("primary speech engine failed, switching to google", "error", err)

	result, fallbackErr := s.run(ctx, EngineGoogle, req)
	if fallbackErr != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", errors.Join(err, fallbackErr))
	}
	result.Fallback = true
	return result, nil
}

// run executes one engine and verifies that it wrote audio.
func (s *Synthesizer) run(ctx context.Context, name EngineName, req Request) (*Result, error) {
	engine, ok := s.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, name)
	}

	fileName := uuid.NewString() + engine.Extension()
	out := filepath.Join(s.audioDir, fileName)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := engine.Synthesize(ctx, req, out); err != nil {
		os.Remove(out)
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		os.Remove(out)
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyAudio)
	}

	return &Result{
		Path:     out,
		FileName: fileName,
		Engine:   name,
		Language: req.Language,
		Bytes:    info.Size(),
	}, nil
}
