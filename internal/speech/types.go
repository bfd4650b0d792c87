// Package speech turns extracted text into audio files through a cascade of
// text-to-speech engines.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// EngineName identifies a text-to-speech engine.
type EngineName string

const (
	// EngineEdge streams neural voices through the edge-tts CLI.
	EngineEdge EngineName = "edge"
	// EngineGoogle calls the Google Translate speech endpoint over HTTP.
	EngineGoogle EngineName = "google"
	// EngineSystem uses the offline espeak-ng synthesizer.
	EngineSystem EngineName = "system"
)

// ParseEngineName converts a configuration string into an EngineName. An
// empty string selects EngineEdge.
func ParseEngineName(name string) (EngineName, error) {
	switch e := EngineName(strings.ToLower(strings.TrimSpace(name))); e {
	case "":
		return EngineEdge, nil
	case EngineEdge, EngineGoogle, EngineSystem:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

var (
	// ErrEmptyText is returned when there is nothing left to speak after sanitizing.
	ErrEmptyText = errors.New("no text provided")
	// ErrEngineUnavailable is returned when an engine cannot run on this host.
	ErrEngineUnavailable = errors.New("speech engine unavailable")
	// ErrUnknownEngine is returned for an engine name outside edge, google and system.
	ErrUnknownEngine = errors.New("unknown speech engine")
	// ErrEmptyAudio is returned when an engine reports success but writes no audio.
	ErrEmptyAudio = errors.New("speech engine produced empty audio")
)

// Engine synthesizes one request into the file at out.
type Engine interface {
	Name() EngineName
	// Extension is the file extension, with dot, of the audio the engine writes.
	Extension() string
	Synthesize(ctx context.Context, req Request, out string) error
}

// Request describes a synthesis job.
type Request struct {
	Text string `json:"text"`
	// Language is a BCP 47 code; only its base language is used. Empty means
	// detect from the text.
	Language string `json:"language,omitempty"`
	// Speed is a multiplier of the normal speaking rate. Zero means 1.
	Speed  float64    `json:"speed,omitempty"`
	Engine EngineName `json:"engine,omitempty"`
}

// Result describes a produced audio file.
type Result struct {
	Path     string     `json:"path"`
	FileName string     `json:"file_name"`
	Engine   EngineName `json:"engine"`
	Language string     `json:"language"`
	Fallback bool       `json:"fallback"`
	Bytes    int64      `json:"bytes"`
}
