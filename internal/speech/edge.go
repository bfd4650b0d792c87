package speech

import (
	"context"
	"strings"
)

// DefaultEdgeBinary is the edge-tts executable looked up on PATH.
const DefaultEdgeBinary = "edge-tts"

// EdgeEngine drives the edge-tts command line client. Text is passed on
// stdin so that long documents are not limited by argv size.
type EdgeEngine struct {
	Binary string
}

// NewEdgeEngine creates an edge-tts engine; an empty binary means DefaultEdgeBinary.
func NewEdgeEngine(binary string) *EdgeEngine {
	if binary == "" {
		binary = DefaultEdgeBinary
	}
	return &EdgeEngine{Binary: binary}
}

// Name returns EngineEdge
func (e *EdgeEngine) Name() EngineName { return EngineEdge }

// Extension returns ".mp3"
func (e *EdgeEngine) Extension() string { return ".mp3" }

// Synthesize writes MP3 audio for req to out.
func (e *EdgeEngine) Synthesize(ctx context.Context, req Request, out string) error {
	bin, err := lookBinary(e.Binary)
	if err != nil {
		return err
	}

	args := edgeArgs(EdgeVoice(BaseLanguage(req.Language)), RateString(req.Speed), out)
	return runCommand(ctx, bin, args, strings.NewReader(req.Text))
}

// edgeArgs builds the edge-tts command line. The rate flag is left out at
// the normal speed.
func edgeArgs(voice, rate, out string) []string {
	args := []string{"--voice", voice, "--file", "-", "--write-media", out}
	if rate != "+0%" {
		args = append(args, "--rate="+rate)
	}
	return args
}
