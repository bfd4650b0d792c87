package speech

import (
	"context"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultSystemBinary is the espeak-ng executable looked up on PATH.
	DefaultSystemBinary = "espeak-ng"
	// systemWordsPerMinute is espeak-ng's normal speaking rate.
	systemWordsPerMinute = 175
)

// SystemEngine synthesizes offline with espeak-ng. It is only available on
// hosts where the binary is installed.
type SystemEngine struct {
	Binary string
}

// NewSystemEngine creates an espeak-ng engine; an empty binary means DefaultSystemBinary.
func NewSystemEngine(binary string) *SystemEngine {
	if binary == "" {
		binary = DefaultSystemBinary
	}
	return &SystemEngine{Binary: binary}
}

// Name returns EngineSystem
func (e *SystemEngine) Name() EngineName { return EngineSystem }

// Extension returns ".wav"
func (e *SystemEngine) Extension() string { return ".wav" }

// Available reports whether the espeak-ng binary can be found.
func (e *SystemEngine) Available() bool {
	_, err := lookBinary(e.Binary)
	return err == nil
}

// Synthesize writes WAV audio for req to out.
func (e *SystemEngine) Synthesize(ctx context.Context, req Request, out string) error {
	bin, err := lookBinary(e.Binary)
	if err != nil {
		return err
	}

	args := systemArgs(SystemVoice(BaseLanguage(req.Language)), req.Speed, out)
	return runCommand(ctx, bin, args, strings.NewReader(req.Text))
}

func systemArgs(voice string, speed float64, out string) []string {
	if speed <= 0 {
		speed = 1
	}
	wpm := int(math.Round(systemWordsPerMinute * speed))
	return []string{"-v", voice, "-s", strconv.Itoa(wpm), "-w", out, "--stdin"}
}
