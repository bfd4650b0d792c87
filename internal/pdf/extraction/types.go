package extraction

import (
	"fmt"
	"strings"

	"github.com/a3tai/pdf-speech-reader/internal/pdf/wrapper"
)

// StrategyName identifies an extraction strategy.
type StrategyName string

const (
	StrategyFast     StrategyName = "fast"
	StrategyDetailed StrategyName = "detailed"
)

// ParseStrategyName converts a configuration string into a StrategyName.
func ParseStrategyName(name string) (StrategyName, error) {
	switch s := StrategyName(strings.ToLower(strings.TrimSpace(name))); s {
	case StrategyFast, StrategyDetailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown extraction strategy %q (want %q or %q)", name, StrategyFast, StrategyDetailed)
	}
}

// Other returns the strategy used as fallback for s.
func (s StrategyName) Other() StrategyName {
	if s == StrategyFast {
		return StrategyDetailed
	}
	return StrategyFast
}

// Strategy turns a document into extracted text.
type Strategy interface {
	Name() StrategyName
	Extract(path string) (string, error)
}

// BackendError reports that the PDF library behind a strategy could not
// produce text.
type BackendError struct {
	Strategy StrategyName        `json:"strategy"`
	Library  wrapper.LibraryType `json:"library"`
	Err      error               `json:"error"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s extraction via %s failed: %v", e.Strategy, e.Library, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
