// Package quality scores extracted text for corruption signatures.
//
// Some PDF font encodings collapse most glyphs onto one fallback letter when
// read by a low-fidelity backend. An unusually high share of a placeholder
// letter is a cheap, backend-agnostic signal that the extraction went wrong.
// The gate is a heuristic: it can be fooled both ways.
package quality

import "strings"

const (
	// DefaultMinChars is the clean length a text must exceed before the
	// placeholder ratio is considered meaningful.
	DefaultMinChars = 50
	// DefaultMaxRatio is the placeholder ratio above which a text is garbage.
	DefaultMaxRatio = 0.4
	// DefaultPlaceholders lists the fallback letters counted by the gate.
	DefaultPlaceholders = "nN"
)

// Reason values reported by Verdict.Reason.
const (
	ReasonEmpty   = "empty"
	ReasonGarbage = "garbage"
)

// Verdict is the gate's decision for one extraction attempt.
type Verdict struct {
	IsGarbage bool    `json:"is_garbage"`
	IsEmpty   bool    `json:"is_empty"`
	Ratio     float64 `json:"placeholder_ratio"`
	CleanLen  int     `json:"clean_length"`
}

// Rejected reports whether the attempt should be replaced by the fallback.
func (v Verdict) Rejected() bool {
	return v.IsEmpty || v.IsGarbage
}

// Reason names the rejection cause, or returns "" for an accepted text.
// Emptiness wins over garbage.
func (v Verdict) Reason() string {
	switch {
	case v.IsEmpty:
		return ReasonEmpty
	case v.IsGarbage:
		return ReasonGarbage
	default:
		return ""
	}
}

// Gate holds the tunable thresholds of the heuristic.
type Gate struct {
	MinChars     int     `json:"min_chars"`
	MaxRatio     float64 `json:"max_ratio"`
	Placeholders string  `json:"placeholders"`
}

// DefaultGate returns the gate with its standard thresholds.
func DefaultGate() Gate {
	return Gate{
		MinChars:     DefaultMinChars,
		MaxRatio:     DefaultMaxRatio,
		Placeholders: DefaultPlaceholders,
	}
}

// Evaluate scores text. Only spaces and newlines are stripped before
// counting; lengths are in runes.
func (g Gate) Evaluate(text string) Verdict {
	v := Verdict{IsEmpty: strings.TrimSpace(text) == ""}

	placeholders := g.Placeholders
	if placeholders == "" {
		placeholders = DefaultPlaceholders
	}

	hits := 0
	for _, r := range text {
		if r == ' ' || r == '\n' {
			continue
		}
		v.CleanLen++
		if strings.ContainsRune(placeholders, r) {
			hits++
		}
	}

	if v.CleanLen > g.MinChars {
		v.Ratio = float64(hits) / float64(v.CleanLen)
		v.IsGarbage = v.Ratio > g.MaxRatio
	}

	return v
}
