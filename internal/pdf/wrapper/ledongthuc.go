package wrapper

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/pdf-speech-reader/internal/pdf/layout"
)

const (
	// DefaultPageTop is the upper MediaBox edge used when a page has no
	// readable MediaBox (US Letter).
	DefaultPageTop = 792.0
	// DefaultGapFactor is the horizontal gap, relative to the font size, that
	// separates two words.
	DefaultGapFactor = 0.3
	// defaultFontSize stands in for glyphs that report no size.
	defaultFontSize = 12.0
)

// LedongthucTextSource reads page text with ledongthuc/pdf's plain-text
// extractor. Lines come back in content-stream order, RTL runs in visual order.
type LedongthucTextSource struct{}

// NewLedongthucTextSource creates a new ledongthuc text source
func NewLedongthucTextSource() *LedongthucTextSource {
	return &LedongthucTextSource{}
}

// Library returns the library type
func (s *LedongthucTextSource) Library() LibraryType {
	return LibraryLedongthuc
}

// ReadPages returns the text of every page. Null pages yield "".
func (s *LedongthucTextSource) ReadPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		text, err := s.readPage(reader, pageNum)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}

	return pages, nil
}

func (s *LedongthucTextSource) readPage(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer recoverPage(LibraryLedongthuc, "extract_text", pageNum, &err)

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "extract_text",
			Page:    pageNum,
			Err:     err,
		}
	}
	return text, nil
}

// LedongthucWordSource builds positioned words from the glyphs reported by
// ledongthuc/pdf. Top offsets are measured from the top of the MediaBox.
type LedongthucWordSource struct {
	// GapFactor times the font size is the horizontal gap that starts a new word.
	GapFactor float64
}

// NewLedongthucWordSource creates a new ledongthuc word source
func NewLedongthucWordSource(gapFactor float64) *LedongthucWordSource {
	if gapFactor <= 0 {
		gapFactor = DefaultGapFactor
	}
	return &LedongthucWordSource{GapFactor: gapFactor}
}

// Library returns the library type
func (s *LedongthucWordSource) Library() LibraryType {
	return LibraryLedongthuc
}

// ReadPages returns the words of every page, in content-stream order.
func (s *LedongthucWordSource) ReadPages(path string) ([][]layout.Word, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}
	defer f.Close()

	pages := make([][]layout.Word, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		words, err := s.readPage(reader, pageNum)
		if err != nil {
			return nil, err
		}
		pages = append(pages, words)
	}

	return pages, nil
}

func (s *LedongthucWordSource) readPage(reader *pdf.Reader, pageNum int) (words []layout.Word, err error) {
	defer recoverPage(LibraryLedongthuc, "extract_words", pageNum, &err)

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	return s.assembleWords(content.Text, pageTop(page)), nil
}

// glyph is the subset of a ledongthuc text run needed for word assembly.
type glyph struct {
	s        string
	x, y, w  float64
	fontSize float64
}

// assembleWords groups glyphs into words. A word ends at a whitespace glyph,
// at a baseline change of more than half the font size, or at a horizontal
// gap wider than GapFactor times the font size. Glyphs may arrive left to
// right or right to left; the gap is measured against both edges.
func (s *LedongthucWordSource) assembleWords(texts []pdf.Text, top float64) []layout.Word {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		size := t.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		glyphs = append(glyphs, glyph{s: t.S, x: t.X, y: t.Y, w: t.W, fontSize: size})
	}
	return groupGlyphs(glyphs, top, s.GapFactor)
}

func groupGlyphs(glyphs []glyph, pageTop, gapFactor float64) []layout.Word {
	var (
		words   []layout.Word
		text    strings.Builder
		x0, x1  float64
		baseY   float64
		size    float64
		started bool
	)

	flush := func() {
		if started && strings.TrimSpace(text.String()) != "" {
			words = append(words, layout.Word{
				Text: text.String(),
				Top:  pageTop - (baseY + size),
				X0:   x0,
				X1:   x1,
			})
		}
		text.Reset()
		started = false
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.s, unicode.IsSpace) == "" {
			flush()
			continue
		}

		if started {
			gap := math.Max(g.x-x1, x0-(g.x+g.w))
			if math.Abs(g.y-baseY) > size/2 || gap > gapFactor*size {
				flush()
			}
		}

		if !started {
			x0, x1 = g.x, g.x+g.w
			baseY, size = g.y, g.fontSize
			started = true
		} else {
			x0 = math.Min(x0, g.x)
			x1 = math.Max(x1, g.x+g.w)
			size = math.Max(size, g.fontSize)
		}
		text.WriteString(g.s)
	}
	flush()

	return words
}

// pageTop returns the upper edge of the page MediaBox, following /Parent for
// inherited boxes. Top offsets are measured down from it, so boxes whose
// origin is not at zero keep their bands.
func pageTop(page pdf.Page) float64 {
	v := page.V
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			lly, ury := box.Index(1).Float64(), box.Index(3).Float64()
			if ury > lly {
				return ury
			}
		}
		v = v.Key("Parent")
	}
	return DefaultPageTop
}
