package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a3tai/pdf-speech-reader/internal/config"
	"github.com/a3tai/pdf-speech-reader/internal/descriptions"
	"github.com/a3tai/pdf-speech-reader/internal/pdf"
	"github.com/a3tai/pdf-speech-reader/internal/speech"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// AudioRoute serves generated audio files in server mode.
	AudioRoute = "/audio/"

	shutdownTimeout = 5 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	pdfService  *pdf.Service
	synthesizer *speech.Synthesizer
	mcpServer   *server.MCPServer
	logger      *slog.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, synthesizer *speech.Synthesizer, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if synthesizer == nil {
		return nil, fmt.Errorf("synthesizer cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
		server.WithRecovery(),
	)

	s := &Server{
		config:      cfg,
		pdfService:  pdfService,
		synthesizer: synthesizer,
		mcpServer:   mcpServer,
		logger:      logger,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// toolSpec pairs a tool definition with its handler so that server_info can
// describe exactly what is registered.
type toolSpec struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

func (s *Server) tools() []toolSpec {
	return []toolSpec{
		{
			tool: mcp.NewTool(
				"pdf_extract_text",
				mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_text")),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
				),
				mcp.WithString("primary",
					mcp.Description("Strategy tried first (uses the configured default if empty)"),
					mcp.Enum("fast", "detailed"),
				),
			),
			handler: s.handlePDFExtractText,
		},
		{
			tool: mcp.NewTool(
				"pdf_inspect",
				mcp.WithDescription(descriptions.GetToolDescription("pdf_inspect")),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
				),
			),
			handler: s.handlePDFInspect,
		},
		{
			tool: mcp.NewTool(
				"pdf_search_directory",
				mcp.WithDescription(descriptions.GetToolDescription("pdf_search_directory")),
				mcp.WithString("directory",
					mcp.Description("Directory path to search (uses default if empty)"),
				),
				mcp.WithString("query",
					mcp.Description("Optional search query for fuzzy matching"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of files to return (0 means no limit)"),
					mcp.Min(0),
				),
			),
			handler: s.handlePDFSearchDirectory,
		},
		{
			tool: mcp.NewTool(
				"speech_synthesize",
				mcp.WithDescription(descriptions.GetToolDescription("speech_synthesize")),
				mcp.WithString("text",
					mcp.Required(),
					mcp.Description("Text to read aloud"),
				),
				mcp.WithString("language",
					mcp.Description("Language code such as 'ar' or 'en-US' (detected from the text if empty)"),
				),
				mcp.WithNumber("speed",
					mcp.Description("Speaking rate multiplier, 1.0 is normal speed"),
					mcp.DefaultNumber(1),
					mcp.Min(0.1),
					mcp.Max(4),
				),
				mcp.WithString("engine",
					mcp.Description("Speech engine (uses the configured default if empty)"),
					mcp.Enum(string(speech.EngineEdge), string(speech.EngineGoogle), string(speech.EngineSystem)),
				),
			),
			handler: s.handleSpeechSynthesize,
		},
		{
			tool: mcp.NewTool(
				"pdf_read_aloud",
				mcp.WithDescription(descriptions.GetToolDescription("pdf_read_aloud")),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
				),
				mcp.WithString("primary",
					mcp.Description("Extraction strategy tried first (uses the configured default if empty)"),
					mcp.Enum("fast", "detailed"),
				),
				mcp.WithString("language",
					mcp.Description("Language code (detected from the extracted text if empty)"),
				),
				mcp.WithNumber("speed",
					mcp.Description("Speaking rate multiplier, 1.0 is normal speed"),
					mcp.DefaultNumber(1),
					mcp.Min(0.1),
					mcp.Max(4),
				),
				mcp.WithString("engine",
					mcp.Description("Speech engine (uses the configured default if empty)"),
					mcp.Enum(string(speech.EngineEdge), string(speech.EngineGoogle), string(speech.EngineSystem)),
				),
			),
			handler: s.handlePDFReadAloud,
		},
		{
			tool: mcp.NewTool(
				"server_info",
				mcp.WithDescription(descriptions.GetToolDescription("server_info")),
			),
			handler: s.handleServerInfo,
		},
	}
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	for _, t := range s.tools() {
		s.mcpServer.AddTool(t.tool, t.handler)
	}
}

// Handler functions
func (s *Server) handlePDFExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFExtractTextRequest{
		Path:    path,
		Primary: request.GetString("primary", ""),
	}
	result, err := s.pdfService.PDFExtractText(req)
	if err != nil {
		s.logger.Warn("text extraction failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatExtractionResult(result)
	responseText += "\nContent:\n"
	responseText += result.Text

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.pdfService.PDFInspect(pdf.PDFInspectRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := "PDF File Information\n"
	text += fmt.Sprintf("File: %s\n", info.Path)
	text += fmt.Sprintf("Size: %d bytes\n", info.Size)
	text += fmt.Sprintf("Pages: %d\n", info.Pages)
	if info.Version != "" {
		text += fmt.Sprintf("Version: %s\n", info.Version)
	}
	text += fmt.Sprintf("Encrypted: %t\n", info.Encrypted)

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	req := pdf.PDFSearchDirectoryRequest{
		Directory: request.GetString("directory", ""),
		Query:     request.GetString("query", ""),
		Limit:     request.GetInt("limit", 0),
	}

	result, err := s.pdfService.PDFSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatPDFSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSpeechSynthesize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.synthesize(ctx, request, text, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatSpeechResult(result)), nil
}

func (s *Server) handlePDFReadAloud(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	extracted, err := s.pdfService.PDFExtractText(pdf.PDFExtractTextRequest{
		Path:    path,
		Primary: request.GetString("primary", ""),
	})
	if err != nil {
		s.logger.Warn("text extraction failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	audio, err := s.synthesize(ctx, request, extracted.Text, extracted.Language)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatExtractionResult(extracted)
	responseText += "\n" + s.formatSpeechResult(audio)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Mode: %s\n", s.config.Mode)
	text += fmt.Sprintf("PDF Directory: %s\n", s.pdfService.ConfiguredDirectory())
	text += fmt.Sprintf("Audio Directory: %s\n", s.synthesizer.AudioDir())
	text += fmt.Sprintf("Max File Size: %d MB\n", s.pdfService.GetMaxFileSize()/(1024*1024))
	text += fmt.Sprintf("Primary Strategy: %s\n", s.pdfService.DefaultPrimary())

	engines := make([]string, 0, 3)
	for _, e := range s.synthesizer.Engines() {
		engines = append(engines, string(e))
	}
	text += fmt.Sprintf("Default Speech Engine: %s\n", s.synthesizer.DefaultEngine())
	text += fmt.Sprintf("Registered Speech Engines: %s\n", strings.Join(engines, ", "))

	text += "\nAvailable Tools:\n"
	for _, t := range s.tools() {
		text += fmt.Sprintf("- %s: %s\n", t.tool.Name, descriptions.Summary(t.tool.Name))
	}

	return mcp.NewToolResultText(text), nil
}

// synthesize builds a speech request from the shared tool arguments.
// fallbackLanguage applies when the caller names none.
func (s *Server) synthesize(ctx context.Context, request mcp.CallToolRequest, text, fallbackLanguage string) (*speech.Result, error) {
	req := speech.Request{
		Text:     text,
		Language: request.GetString("language", fallbackLanguage),
		Speed:    request.GetFloat("speed", 1),
		Engine:   speech.EngineName(request.GetString("engine", "")),
	}

	result, err := s.synthesizer.Synthesize(ctx, req)
	if err != nil {
		s.logger.Warn("speech synthesis failed", "engine", string(req.Engine), "error", err)
		return nil, err
	}
	return result, nil
}

// Formatting methods
func (s *Server) formatExtractionResult(result *pdf.ExtractionResult) string {
	text := fmt.Sprintf("Successfully extracted text from PDF: %s\n", result.Path)
	text += fmt.Sprintf("Strategy: %s\n", result.Strategy)
	text += fmt.Sprintf("Fallback Used: %t\n", result.FallbackUsed)
	if result.FallbackReason != "" {
		text += fmt.Sprintf("Fallback Reason: %s\n", result.FallbackReason)
	}
	text += fmt.Sprintf("Language: %s\n", result.Language)
	text += fmt.Sprintf("Characters: %d\n", len([]rune(result.Text)))
	return text
}

func (s *Server) formatSpeechResult(result *speech.Result) string {
	text := fmt.Sprintf("Audio File: %s\n", result.Path)
	if s.config.IsServerMode() {
		text += fmt.Sprintf("Audio URL: %s%s\n", AudioRoute, result.FileName)
	}
	text += fmt.Sprintf("Engine: %s\n", result.Engine)
	if result.Fallback {
		text += "Fallback: edge engine failed, google was used\n"
	}
	text += fmt.Sprintf("Language: %s\n", result.Language)
	text += fmt.Sprintf("Size: %d bytes\n", result.Bytes)
	return text
}

func (s *Server) formatPDFSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves JSON-RPC over stdin/stdout until the input closes or
// ctx is canceled.
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Info("starting MCP server in stdio mode",
		"pdf_dir", s.pdfService.ConfiguredDirectory(),
		"audio_dir", s.synthesizer.AudioDir())

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// httpHandler routes the SSE transport and the generated audio files.
func (s *Server) httpHandler(sse http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(AudioRoute, http.StripPrefix(AudioRoute, http.FileServer(http.Dir(s.synthesizer.AudioDir()))))
	mux.Handle("/", sse)
	return mux
}

// runServerMode serves the SSE transport on the configured address until
// ctx is canceled.
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()

	httpServer := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	sse := server.NewSSEServer(s.mcpServer,
		server.WithBaseURL("http://"+addr),
		server.WithHTTPServer(httpServer),
	)
	httpServer.Handler = s.httpHandler(sse)

	s.logger.Info("starting MCP server in SSE mode",
		"address", addr,
		"pdf_dir", s.pdfService.ConfiguredDirectory(),
		"audio_dir", s.synthesizer.AudioDir())

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve SSE: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down SSE server: %w", err)
	}
	s.logger.Info("SSE server stopped")
	return nil
}
