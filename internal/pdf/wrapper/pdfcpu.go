package wrapper

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPUTextSource reads page text by decoding each page content stream with
// pdfcpu and interpreting its text-showing operators.
type PDFCPUTextSource struct{}

// NewPDFCPUTextSource creates a new pdfcpu text source
func NewPDFCPUTextSource() *PDFCPUTextSource {
	return &PDFCPUTextSource{}
}

// Library returns the library type
func (s *PDFCPUTextSource) Library() LibraryType {
	return LibraryPDFCPU
}

// ReadPages returns the text of every page.
func (s *PDFCPUTextSource) ReadPages(path string) ([]string, error) {
	ctx, err := readContext(path, "open_file")
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		text, err := s.readPage(ctx, pageNr)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}

	return pages, nil
}

func (s *PDFCPUTextSource) readPage(ctx *model.Context, pageNr int) (text string, err error) {
	defer recoverPage(LibraryPDFCPU, "extract_text", pageNr, &err)

	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return "", &WrapperError{Library: LibraryPDFCPU, Op: "extract_text", Page: pageNr, Err: err}
	}
	if r == nil {
		return "", nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &WrapperError{Library: LibraryPDFCPU, Op: "extract_text", Page: pageNr, Err: err}
	}

	return ContentText(data), nil
}

// Inspector reports document metadata using pdfcpu.
type Inspector struct{}

// NewInspector creates a new inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect returns the page count, header version and encryption state of the
// document at path.
func (i *Inspector) Inspect(path string) (*DocumentInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "inspect", Err: err}
	}

	ctx, err := readContext(path, "inspect")
	if err != nil {
		return nil, err
	}

	info := &DocumentInfo{
		Path:      path,
		Size:      stat.Size(),
		Pages:     ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}

	return info, nil
}

// readContext opens path and builds a relaxed pdfcpu context with its page
// count resolved.
func readContext(path, op string) (ctx *model.Context, err error) {
	defer recoverPage(LibraryPDFCPU, op, 0, &err)

	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err = api.ReadContext(file, conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	return ctx, nil
}
