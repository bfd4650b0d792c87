package pdf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/pdf-speech-reader/internal/langdetect"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/extraction"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/quality"
)

// FallbackReasonError is recorded when the primary strategy returned an error.
const FallbackReasonError = "error"

// PipelineConfig holds the policy of an extraction pipeline.
type PipelineConfig struct {
	// Primary is the strategy tried first; the other one is the fallback.
	Primary extraction.StrategyName
	// Gate decides whether the primary output is acceptable. The zero value
	// means quality.DefaultGate.
	Gate quality.Gate
	// MaxFileSize rejects larger documents up front. Zero disables the check.
	MaxFileSize int64
	// Logger receives cascade decisions. Nil discards them.
	Logger *slog.Logger
}

// ExtractionResult describes one completed extraction.
type ExtractionResult struct {
	Path           string                  `json:"path"`
	Text           string                  `json:"text"`
	Strategy       extraction.StrategyName `json:"strategy"`
	FallbackUsed   bool                    `json:"fallback_used"`
	FallbackReason string                  `json:"fallback_reason,omitempty"`
	Verdict        quality.Verdict         `json:"verdict"`
	Attempts       int                     `json:"attempts"`
	Duration       time.Duration           `json:"duration"`
	Language       string                  `json:"language"`
}

// Pipeline runs the primary strategy, gates its output and falls back to
// the other strategy at most once. It holds no per-document state and may
// be shared across goroutines.
type Pipeline struct {
	primary   extraction.Strategy
	fallback  extraction.Strategy
	gate      quality.Gate
	validator *Validator
	logger    *slog.Logger
}

// NewPipeline wires one fast and one detailed strategy under cfg.
func NewPipeline(cfg PipelineConfig, strategies ...extraction.Strategy) (*Pipeline, error) {
	byName := make(map[extraction.StrategyName]extraction.Strategy, len(strategies))
	for _, s := range strategies {
		if s == nil {
			continue
		}
		if _, dup := byName[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate %s strategy", s.Name())
		}
		byName[s.Name()] = s
	}

	primaryName, err := extraction.ParseStrategyName(string(cfg.Primary))
	if err != nil {
		return nil, fmt.Errorf("invalid primary strategy: %w", err)
	}

	primary, ok := byName[primaryName]
	if !ok {
		return nil, fmt.Errorf("no %s strategy configured", primaryName)
	}
	fallback, ok := byName[primaryName.Other()]
	if !ok {
		return nil, fmt.Errorf("no %s strategy configured", primaryName.Other())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gate := cfg.Gate
	if gate == (quality.Gate{}) {
		gate = quality.DefaultGate()
	}

	return &Pipeline{
		primary:   primary,
		fallback:  fallback,
		gate:      gate,
		validator: NewValidator(cfg.MaxFileSize),
		logger:    logger,
	}, nil
}

// Primary returns the name of the strategy tried first.
func (p *Pipeline) Primary() extraction.StrategyName {
	return p.primary.Name()
}

// ExtractText returns the normalized text of the document at path.
func (p *Pipeline) ExtractText(path string) (string, error) {
	result, err := p.Extract(path)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// Extract runs the cascade and reports how the text was obtained.
func (p *Pipeline) Extract(path string) (*ExtractionResult, error) {
	start := time.Now()

	if err := p.validator.CheckFile(path); err != nil {
		return nil, err
	}

	result := &ExtractionResult{Path: path}
	log := p.logger.With("path", path)

	text, primaryErr := p.primary.Extract(path)
	result.Attempts = 1

	if primaryErr != nil {
		log.Warn("primary extraction failed, switching to fallback",
			"strategy", p.primary.Name(), "error", primaryErr)
		result.FallbackReason = FallbackReasonError
	} else {
		result.Verdict = p.gate.Evaluate(text)
		if !result.Verdict.Rejected() {
			return p.finish(result, p.primary.Name(), text, start)
		}
		log.Info("primary extraction rejected, switching to fallback",
			"strategy", p.primary.Name(),
			"reason", result.Verdict.Reason(),
			"placeholder_ratio", result.Verdict.Ratio)
		result.FallbackReason = result.Verdict.Reason()
	}

	result.FallbackUsed = true
	text, fallbackErr := p.fallback.Extract(path)
	result.Attempts = 2

	if fallbackErr != nil {
		log.Error("fallback extraction failed",
			"strategy", p.fallback.Name(), "error", fallbackErr)
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, errors.Join(primaryErr, fallbackErr))
	}

	// The fallback output is accepted as is; the verdict is informational.
	result.Verdict = p.gate.Evaluate(text)
	return p.finish(result, p.fallback.Name(), text, start)
}

func (p *Pipeline) finish(result *ExtractionResult, name extraction.StrategyName, text string, start time.Time) (*ExtractionResult, error) {
	text = norm.NFKC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", ErrExtractionFailed, result.Path)
	}

	result.Text = text
	result.Strategy = name
	result.Language = langdetect.Detect(text)
	result.Duration = time.Since(start)

	p.logger.Debug("extraction complete",
		"path", result.Path,
		"strategy", name,
		"attempts", result.Attempts,
		"fallback", result.FallbackUsed,
		"runes", len([]rune(text)),
		"duration", result.Duration)

	return result, nil
}
