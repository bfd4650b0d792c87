package extraction

import (
	"fmt"
	"strings"

	"github.com/a3tai/pdf-speech-reader/internal/pdf/bidi"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/layout"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/wrapper"
)

// FastStrategy reads whole lines straight from a text source. Its backend
// returns RTL lines in visual order, so correction is applied per line.
type FastStrategy struct {
	Source wrapper.TextSource
}

// NewFastStrategy creates a fast strategy over source
func NewFastStrategy(source wrapper.TextSource) *FastStrategy {
	return &FastStrategy{Source: source}
}

// Name returns StrategyFast
func (s *FastStrategy) Name() StrategyName {
	return StrategyFast
}

// Extract returns the non-empty pages joined by newlines.
func (s *FastStrategy) Extract(path string) (text string, err error) {
	defer recoverBackend(StrategyFast, s.Source.Library(), &err)

	pages, err := s.Source.ReadPages(path)
	if err != nil {
		return "", &BackendError{Strategy: StrategyFast, Library: s.Source.Library(), Err: err}
	}

	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if page == "" {
			continue
		}
		kept = append(kept, bidi.ReverseRTLLines(page))
	}

	return strings.Join(kept, "\n"), nil
}

// DetailedStrategy rebuilds lines from positioned words. Its backend returns
// each RTL word in visual order, so correction is applied per word before the
// words are placed on a line.
type DetailedStrategy struct {
	Source    wrapper.WordSource
	BandWidth float64
	BandMode  layout.BandMode
}

// NewDetailedStrategy creates a detailed strategy over source
func NewDetailedStrategy(source wrapper.WordSource, bandWidth float64) *DetailedStrategy {
	return &DetailedStrategy{Source: source, BandWidth: bandWidth, BandMode: layout.BandRound}
}

// Name returns StrategyDetailed
func (s *DetailedStrategy) Name() StrategyName {
	return StrategyDetailed
}

// Extract returns every page, empty ones included, joined by newlines.
func (s *DetailedStrategy) Extract(path string) (text string, err error) {
	defer recoverBackend(StrategyDetailed, s.Source.Library(), &err)

	pages, err := s.Source.ReadPages(path)
	if err != nil {
		return "", &BackendError{Strategy: StrategyDetailed, Library: s.Source.Library(), Err: err}
	}

	r := &layout.Reconstructor{
		BandWidth: s.BandWidth,
		Mode:      s.BandMode,
		Normalize: bidi.ReverseIfRTL,
	}

	out := make([]string, len(pages))
	for i, words := range pages {
		out[i] = r.Page(words)
	}

	return strings.Join(out, "\n"), nil
}

func recoverBackend(name StrategyName, lib wrapper.LibraryType, err *error) {
	if r := recover(); r != nil {
		*err = &BackendError{
			Strategy: name,
			Library:  lib,
			Err:      fmt.Errorf("%w: %v", wrapper.ErrPanic, r),
		}
	}
}
