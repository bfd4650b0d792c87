// Package pdftest builds small, well-formed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FontSize is the size used by Text.
const FontSize = 12

// GlyphWidth is the advance, in thousandths of an em, of every glyph.
const GlyphWidth = 500

// Text returns a content stream that shows s at (x, y) in 12pt Helvetica.
func Text(x, y float64, s string) string {
	return fmt.Sprintf("BT /F1 %d Tf %g %g Td (%s) Tj ET", FontSize, x, y, escape(s))
}

// Lines returns a content stream showing each string on its own line,
// starting at (x, y) and moving down by 20 units.
func Lines(x, y float64, lines ...string) string {
	parts := make([]string, 0, len(lines))
	for i, l := range lines {
		parts = append(parts, Text(x, y-float64(20*i), l))
	}
	return strings.Join(parts, "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// LetterBox is the MediaBox used by Build.
var LetterBox = [4]float64{0, 0, 612, 792}

// Build assembles a PDF with one page per content stream. The MediaBox is
// declared on the page tree and inherited by every page.
func Build(pages ...string) []byte {
	return BuildWithBox(LetterBox, pages...)
}

// BuildWithBox is Build with an explicit MediaBox [llx lly urx ury].
func BuildWithBox(box [4]float64, pages ...string) []byte {
	var (
		buf     bytes.Buffer
		offsets []int
	)

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Objects 1-3 are fixed; pages start at 4 as (page, content) pairs.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	widths := strings.TrimSpace(strings.Repeat(fmt.Sprintf("%d ", GlyphWidth), 126-32+1))

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [%g %g %g %g] >>",
		strings.Join(kids, " "), len(pages), box[0], box[1], box[2], box[3]))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding" +
		" /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>")

	for i, content := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// Write builds a PDF and stores it under the test's temporary directory.
func Write(tb testing.TB, pages ...string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "fixture.pdf")
	if err := os.WriteFile(path, Build(pages...), 0o600); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteWithBox is Write with an explicit MediaBox.
func WriteWithBox(tb testing.TB, box [4]float64, pages ...string) string {
	tb.Helper()
	return WriteFile(tb, "fixture.pdf", BuildWithBox(box, pages...))
}

// WriteFile stores arbitrary bytes under the test's temporary directory.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
	return path
}
