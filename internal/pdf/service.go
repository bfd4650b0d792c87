package pdf

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/a3tai/pdf-speech-reader/internal/pdf/extraction"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/layout"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/quality"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/security"
	"github.com/a3tai/pdf-speech-reader/internal/pdf/wrapper"
)

// ServiceConfig configures the document service.
type ServiceConfig struct {
	Directory   string
	MaxFileSize int64
	Primary     extraction.StrategyName
	FastLibrary wrapper.LibraryType
	BandWidth   float64
	BandMode    layout.BandMode
	GapFactor   float64
	Gate        quality.Gate
	Logger      *slog.Logger
}

// Service handles PDF file operations by orchestrating the extraction
// pipelines, the inspector and directory search behind a path validator.
type Service struct {
	maxFileSize    int64
	defaultPrimary extraction.StrategyName
	pipelines      map[extraction.StrategyName]*Pipeline
	inspector      *wrapper.Inspector
	validator      *Validator
	search         *Search
	pathValidator  *security.PathValidator
}

// NewService creates a new PDF service with all components
func NewService(cfg ServiceConfig) (*Service, error) {
	pathValidator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.FastLibrary == "" {
		cfg.FastLibrary = wrapper.LibraryLedongthuc
	}
	if cfg.Primary == "" {
		cfg.Primary = extraction.StrategyDetailed
	}

	factory := wrapper.NewFactoryWithConfig(wrapper.FactoryConfig{
		GapFactor: cfg.GapFactor,
		Logger:    logger,
	})

	textSource, err := factory.TextSource(cfg.FastLibrary)
	if err != nil {
		return nil, fmt.Errorf("failed to create text source: %w", err)
	}
	wordSource, err := factory.WordSource(wrapper.LibraryLedongthuc)
	if err != nil {
		return nil, fmt.Errorf("failed to create word source: %w", err)
	}

	fast := extraction.NewFastStrategy(textSource)
	detailed := extraction.NewDetailedStrategy(wordSource, cfg.BandWidth)
	if cfg.BandMode != "" {
		detailed.BandMode = cfg.BandMode
	}

	// One pipeline per primary so that callers can override the policy per
	// request without rebuilding the strategies.
	pipelines := make(map[extraction.StrategyName]*Pipeline, 2)
	for _, primary := range []extraction.StrategyName{extraction.StrategyFast, extraction.StrategyDetailed} {
		p, err := NewPipeline(PipelineConfig{
			Primary:     primary,
			Gate:        cfg.Gate,
			MaxFileSize: cfg.MaxFileSize,
			Logger:      logger.With("primary", string(primary)),
		}, fast, detailed)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s pipeline: %w", primary, err)
		}
		pipelines[primary] = p
	}

	if _, ok := pipelines[cfg.Primary]; !ok {
		return nil, fmt.Errorf("invalid primary strategy %q", cfg.Primary)
	}

	return &Service{
		maxFileSize:    cfg.MaxFileSize,
		defaultPrimary: cfg.Primary,
		pipelines:      pipelines,
		inspector:      factory.Inspector(),
		validator:      NewValidator(cfg.MaxFileSize),
		search:         NewSearch(cfg.MaxFileSize),
		pathValidator:  pathValidator,
	}, nil
}

// PDFExtractText extracts the normalized text of a document
func (s *Service) PDFExtractText(req PDFExtractTextRequest) (*ExtractionResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	pipeline, err := s.Pipeline(req.Primary)
	if err != nil {
		return nil, err
	}

	return pipeline.Extract(path)
}

// PDFInspect returns page count, version and encryption state of a document
func (s *Service) PDFInspect(req PDFInspectRequest) (*wrapper.DocumentInfo, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	if err := s.validator.CheckFile(path); err != nil {
		return nil, err
	}

	return s.inspector.Inspect(path)
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	// If no directory specified, use configured directory
	if req.Directory == "" {
		req.Directory = s.pathValidator.ConfiguredDirectory()
	}

	dir, err := s.pathValidator.Resolve(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Directory = dir

	return s.search.SearchDirectory(req)
}

// Pipeline returns the pipeline for the named primary strategy. An empty
// name selects the configured default.
func (s *Service) Pipeline(primary string) (*Pipeline, error) {
	if primary == "" {
		return s.pipelines[s.defaultPrimary], nil
	}

	name, err := extraction.ParseStrategyName(primary)
	if err != nil {
		return nil, err
	}
	return s.pipelines[name], nil
}

// DefaultPrimary returns the configured primary strategy
func (s *Service) DefaultPrimary() extraction.StrategyName {
	return s.defaultPrimary
}

// ConfiguredDirectory returns the directory documents are confined to
func (s *Service) ConfiguredDirectory() string {
	return s.pathValidator.ConfiguredDirectory()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}
