package wrapper

import (
	"fmt"
	"log/slog"
	"strings"
)

// Factory creates text and word sources backed by the supported libraries.
type Factory struct {
	config FactoryConfig
}

// FactoryConfig contains configuration options for the factory
type FactoryConfig struct {
	// GapFactor is passed to word sources; zero means DefaultGapFactor.
	GapFactor float64 `json:"gap_factor"`

	// Logger receives debug output about source selection. Nil disables it.
	Logger *slog.Logger `json:"-"`
}

// NewFactory creates a factory with default configuration
func NewFactory() *Factory {
	return NewFactoryWithConfig(FactoryConfig{GapFactor: DefaultGapFactor})
}

// NewFactoryWithConfig creates a factory with custom configuration
func NewFactoryWithConfig(config FactoryConfig) *Factory {
	if config.GapFactor <= 0 {
		config.GapFactor = DefaultGapFactor
	}
	return &Factory{config: config}
}

// ParseLibrary converts a configuration string into a LibraryType.
func ParseLibrary(name string) (LibraryType, error) {
	switch lib := LibraryType(strings.ToLower(strings.TrimSpace(name))); lib {
	case LibraryPDFCPU, LibraryLedongthuc:
		return lib, nil
	default:
		return "", &WrapperError{
			Library: lib,
			Op:      "parse",
			Err:     fmt.Errorf("%w: %q", ErrUnsupportedLibrary, name),
		}
	}
}

// TextSource returns the plain-text source for libType.
func (f *Factory) TextSource(libType LibraryType) (TextSource, error) {
	f.debug("creating text source", libType)

	switch libType {
	case LibraryLedongthuc:
		return NewLedongthucTextSource(), nil
	case LibraryPDFCPU:
		return NewPDFCPUTextSource(), nil
	default:
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     fmt.Errorf("%w: %s", ErrUnsupportedLibrary, libType),
		}
	}
}

// WordSource returns the positioned-word source for libType. Only
// ledongthuc exposes glyph positions.
func (f *Factory) WordSource(libType LibraryType) (WordSource, error) {
	f.debug("creating word source", libType)

	switch libType {
	case LibraryLedongthuc:
		return NewLedongthucWordSource(f.config.GapFactor), nil
	case LibraryPDFCPU:
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     ErrUnsupportedSource,
		}
	default:
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     fmt.Errorf("%w: %s", ErrUnsupportedLibrary, libType),
		}
	}
}

// Inspector returns the metadata inspector.
func (f *Factory) Inspector() *Inspector {
	return NewInspector()
}

// SupportedLibraries lists every library the factory can create sources for.
func (f *Factory) SupportedLibraries() []LibraryType {
	return []LibraryType{LibraryLedongthuc, LibraryPDFCPU}
}

func (f *Factory) debug(msg string, libType LibraryType) {
	if f.config.Logger != nil {
		f.config.Logger.Debug(msg, "library", string(libType))
	}
}
