package wrapper

import (
	"errors"
	"fmt"

	"github.com/a3tai/pdf-speech-reader/internal/pdf/layout"
)

// TextSource reads the plain text of every page, without positions.
type TextSource interface {
	Library() LibraryType
	ReadPages(path string) ([]string, error)
}

// WordSource reads every page as a sequence of positioned words.
type WordSource interface {
	Library() LibraryType
	ReadPages(path string) ([][]layout.Word, error)
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// DocumentInfo summarizes a document as seen by the inspector.
type DocumentInfo struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Pages     int    `json:"pages"`
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted"`
}

// WrapperError reports a failure inside one of the PDF libraries.
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Page    int         `json:"page,omitempty"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("PDF %s library error in %s (page %d): %v", e.Library, e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrUnsupportedLibrary = errors.New("unsupported library type")
	ErrUnsupportedSource  = errors.New("library cannot provide this source")
	ErrPanic              = errors.New("library panicked")
)

// recoverPage turns a panic raised by a PDF library while reading a page into
// a *WrapperError assigned to err.
func recoverPage(lib LibraryType, op string, page int, err *error) {
	if r := recover(); r != nil {
		*err = &WrapperError{
			Library: lib,
			Op:      op,
			Page:    page,
			Err:     fmt.Errorf("%w: %v", ErrPanic, r),
		}
	}
}
