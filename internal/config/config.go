package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultPrimary         = "detailed"
	DefaultFastLibrary     = "ledongthuc"
	DefaultBandWidth       = 8.0
	DefaultBandMode        = "round"
	DefaultGarbageRatio    = 0.4
	DefaultGarbageMinChars = 50
	DefaultTTSEngine       = "edge"
	DefaultEdgeTTSBinary   = "edge-tts"
	DefaultEspeakBinary    = "espeak-ng"
	DefaultGoogleTTSURL    = "https://translate.google.com/translate_tts"
	DefaultTTSTimeout      = 2 * time.Minute

	// DefaultAudioSubdir is created under the PDF directory when no audio
	// directory is configured.
	DefaultAudioSubdir = "audio_cache"

	// EnvPrefix is prepended to every environment variable.
	EnvPrefix = "PDF_SPEECH"
)

// Config holds all configuration for the PDF speech server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directories
	PDFDirectory   string
	AudioDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Extraction
	Primary         string  // "fast" or "detailed"
	FastLibrary     string  // "ledongthuc" or "pdfcpu"
	BandWidth       float64 // line band height in PDF units
	BandMode        string  // "round" or "floor"
	GarbageRatio    float64
	GarbageMinChars int

	// Speech
	TTSEngine     string // "edge", "google" or "system"
	EdgeTTSBinary string
	EspeakBinary  string
	GoogleTTSURL  string
	TTSTimeout    time.Duration
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		PDFDirectory:    currentDir,
		Version:         "1.0.0",
		ServerName:      "pdf-speech-reader",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
		Primary:         DefaultPrimary,
		FastLibrary:     DefaultFastLibrary,
		BandWidth:       DefaultBandWidth,
		BandMode:        DefaultBandMode,
		GarbageRatio:    DefaultGarbageRatio,
		GarbageMinChars: DefaultGarbageMinChars,
		TTSEngine:       DefaultTTSEngine,
		EdgeTTSBinary:   DefaultEdgeTTSBinary,
		EspeakBinary:    DefaultEspeakBinary,
		GoogleTTSURL:    DefaultGoogleTTSURL,
		TTSTimeout:      DefaultTTSTimeout,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.resolvePaths()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// flagNames lists every key shared by flags, environment and viper.
var flagNames = []string{
	"mode", "host", "port", "dir", "audiodir", "loglevel", "maxfilesize",
	"primary", "fastlib", "bandwidth", "bandmode", "garbageratio", "garbageminchars",
	"ttsengine", "edgettsbin", "espeakbin", "googlettsurl", "ttstimeout",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("audiodir", cfg.AudioDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("primary", cfg.Primary)
	viper.SetDefault("fastlib", cfg.FastLibrary)
	viper.SetDefault("bandwidth", cfg.BandWidth)
	viper.SetDefault("bandmode", cfg.BandMode)
	viper.SetDefault("garbageratio", cfg.GarbageRatio)
	viper.SetDefault("garbageminchars", cfg.GarbageMinChars)
	viper.SetDefault("ttsengine", cfg.TTSEngine)
	viper.SetDefault("edgettsbin", cfg.EdgeTTSBinary)
	viper.SetDefault("espeakbin", cfg.EspeakBinary)
	viper.SetDefault("googlettsurl", cfg.GoogleTTSURL)
	viper.SetDefault("ttstimeout", cfg.TTSTimeout)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("audiodir", cfg.AudioDirectory, "Directory for generated audio (default <dir>/audio_cache)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("primary", cfg.Primary, "Primary extraction strategy: 'fast' or 'detailed'")
	pflag.String("fastlib", cfg.FastLibrary, "Library behind the fast strategy: 'ledongthuc' or 'pdfcpu'")
	pflag.Float64("bandwidth", cfg.BandWidth, "Vertical tolerance, in PDF units, for grouping words into lines")
	pflag.String("bandmode", cfg.BandMode, "Line band quantization: 'round' or 'floor'")
	pflag.Float64("garbageratio", cfg.GarbageRatio, "Placeholder ratio above which extracted text is rejected")
	pflag.Int("garbageminchars", cfg.GarbageMinChars, "Text length below which the placeholder ratio is ignored")
	pflag.String("ttsengine", cfg.TTSEngine, "Default speech engine: 'edge', 'google' or 'system'")
	pflag.String("edgettsbin", cfg.EdgeTTSBinary, "Path or name of the edge-tts executable")
	pflag.String("espeakbin", cfg.EspeakBinary, "Path or name of the espeak-ng executable")
	pflag.String("googlettsurl", cfg.GoogleTTSURL, "Google Translate speech endpoint")
	pflag.Duration("ttstimeout", cfg.TTSTimeout, "Timeout for a single speech engine run")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Speech Reader - extracts text from mixed LTR/RTL PDFs and reads it aloud over MCP\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/pdfs --primary=fast      "+
			"# try the fast strategy first\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/pdfs       # SSE server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --ttsengine=google                      # skip edge-tts\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, name := range flagNames {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, strings.ToUpper(name))
		}
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.AudioDirectory = viper.GetString("audiodir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Primary = viper.GetString("primary")
	cfg.FastLibrary = viper.GetString("fastlib")
	cfg.BandWidth = viper.GetFloat64("bandwidth")
	cfg.BandMode = viper.GetString("bandmode")
	cfg.GarbageRatio = viper.GetFloat64("garbageratio")
	cfg.GarbageMinChars = viper.GetInt("garbageminchars")
	cfg.TTSEngine = viper.GetString("ttsengine")
	cfg.EdgeTTSBinary = viper.GetString("edgettsbin")
	cfg.EspeakBinary = viper.GetString("espeakbin")
	cfg.GoogleTTSURL = viper.GetString("googlettsurl")
	cfg.TTSTimeout = viper.GetDuration("ttstimeout")
}

// resolvePaths makes directories absolute and derives the audio directory.
func (c *Config) resolvePaths() {
	if c.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(c.PDFDirectory); err == nil {
			c.PDFDirectory = expandedPath
		}
	}

	if c.AudioDirectory == "" && c.PDFDirectory != "" {
		c.AudioDirectory = filepath.Join(c.PDFDirectory, DefaultAudioSubdir)
	}
	if c.AudioDirectory != "" {
		if expandedPath, err := filepath.Abs(c.AudioDirectory); err == nil {
			c.AudioDirectory = expandedPath
		}
	}
}

// Validate checks if the configuration is valid. Directories are not
// required to exist; the audio directory is created on first use.
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if err := c.validateExtraction(); err != nil {
		return err
	}

	return c.validateSpeech()
}

func (c *Config) validateExtraction() error {
	if c.Primary != "fast" && c.Primary != "detailed" {
		return fmt.Errorf("invalid primary strategy: %s (must be 'fast' or 'detailed')", c.Primary)
	}

	if c.FastLibrary != "ledongthuc" && c.FastLibrary != "pdfcpu" {
		return fmt.Errorf("invalid fast library: %s (must be 'ledongthuc' or 'pdfcpu')", c.FastLibrary)
	}

	if c.BandWidth <= 0 || math.IsNaN(c.BandWidth) || math.IsInf(c.BandWidth, 0) {
		return errors.New("band width must be a positive number")
	}

	if c.BandMode != "round" && c.BandMode != "floor" {
		return fmt.Errorf("invalid band mode: %s (must be 'round' or 'floor')", c.BandMode)
	}

	if c.GarbageRatio <= 0 || c.GarbageRatio > 1 || math.IsNaN(c.GarbageRatio) {
		return errors.New("garbage ratio must be in (0, 1]")
	}

	if c.GarbageMinChars < 0 {
		return errors.New("garbage minimum length cannot be negative")
	}

	return nil
}

func (c *Config) validateSpeech() error {
	switch c.TTSEngine {
	case "edge", "google", "system":
	default:
		return fmt.Errorf("invalid speech engine: %s (must be one of: edge, google, system)", c.TTSEngine)
	}

	if c.TTSTimeout <= 0 {
		return errors.New("speech timeout must be positive")
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// SlogLevel maps LogLevel onto a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AudioDir returns the audio directory, deriving it from the PDF directory
// when unset.
func (c *Config) AudioDir() string {
	if c.AudioDirectory != "" {
		return c.AudioDirectory
	}
	return filepath.Join(c.PDFDirectory, DefaultAudioSubdir)
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, AudioDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, Primary: %s, FastLibrary: %s, TTSEngine: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.AudioDir(),
		c.LogLevel, c.MaxFileSize, c.Primary, c.FastLibrary, c.TTSEngine)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
