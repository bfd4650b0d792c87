package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdf-speech-reader/internal/config"
	"github.com/a3tai/pdf-speech-reader/internal/mcp"
	"github.com/a3tai/pdf-speech-reader/internal/pdf"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/extraction"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/layout"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/quality"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/wrapper"
	"github.com/a3tai/pdf-speech-reader/internal/speech"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger writes text logs to w. Stdout carries the protocol in stdio
// mode, so callers pass stderr.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     cfg.SlogLevel(),
		AddSource: cfg.IsDebug(),
	}))
}

// newService builds the extraction service from the configuration.
func newService(cfg *config.Config, logger *slog.Logger) (*pdf.Service, error) {
	primary, err := extraction.ParseStrategyName(cfg.Primary)
	if err != nil {
		return nil, err
	}
	library, err := wrapper.ParseLibrary(cfg.FastLibrary)
	if err != nil {
		return nil, err
	}

	return pdf.NewService(pdf.ServiceConfig{
		Directory:   cfg.PDFDirectory,
		MaxFileSize: cfg.MaxFileSize,
		Primary:     primary,
		FastLibrary: library,
		BandWidth:   cfg.BandWidth,
		BandMode:    layout.BandMode(cfg.BandMode),
		Gate: quality.Gate{
			MinChars:     cfg.GarbageMinChars,
			MaxRatio:     cfg.GarbageRatio,
			Placeholders: quality.DefaultPlaceholders,
		},
		Logger: logger.With("component", "pdf"),
	})
}

// newSynthesizer registers every speech engine. Engines whose binaries are
// missing stay registered and fail at call time with ErrEngineUnavailable.
func newSynthesizer(cfg *config.Config, logger *slog.Logger) (*speech.Synthesizer, error) {
	engines := []speech.Engine{
		speech.NewEdgeEngine(cfg.EdgeTTSBinary),
		speech.NewGoogleEngine(cfg.GoogleTTSURL, cfg.TTSTimeout),
	}

	system := speech.NewSystemEngine(cfg.EspeakBinary)
	if !system.Available() {
		logger.Warn("offline speech engine not found", "binary", cfg.EspeakBinary)
	}
	engines = append(engines, system)

	return speech.NewSynthesizer(speech.SynthesizerConfig{
		AudioDir:      cfg.AudioDir(),
		DefaultEngine: speech.EngineName(cfg.TTSEngine),
		Timeout:       cfg.TTSTimeout,
		Logger:        logger.With("component", "speech"),
	}, engines...)
}

// newServer wires the services behind the MCP server.
func newServer(cfg *config.Config, logger *slog.Logger) (*mcp.Server, error) {
	pdfService, err := newService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF service: %w", err)
	}

	synthesizer, err := newSynthesizer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService, synthesizer, logger.With("component", "mcp"))
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server, nil
}

func run() int {
	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("starting", "config", cfg.String())

	server, err := newServer(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}

	logger.Info("server stopped")
	return 0
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	os.Exit(run())
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Speech Reader\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
