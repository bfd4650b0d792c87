package wrapper

import (
	"strconv"
	"strings"
)

// tjSpaceThreshold is the TJ displacement, in thousandths of an em, beyond
// which an adjustment is read as a word space.
const tjSpaceThreshold = -250

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokName
	tokArrayStart
	tokArrayEnd
	tokOperator
	tokOther
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// operand is a value left on the operand stack for the next operator.
type operand struct {
	kind tokenKind
	text string
	num  float64
	arr  []operand
}

// lexer splits a content stream into tokens.
type lexer struct {
	data []byte
	pos  int
}

func isWhite(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhite(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() token {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{kind: tokEOF}
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		return token{kind: tokString, text: l.literal()}
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		l.pos += 2
		return token{kind: tokOther, text: "<<"}
	case c == '>' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '>':
		l.pos += 2
		return token{kind: tokOther, text: ">>"}
	case c == '<':
		return token{kind: tokString, text: l.hex()}
	case c == '[':
		l.pos++
		return token{kind: tokArrayStart}
	case c == ']':
		l.pos++
		return token{kind: tokArrayEnd}
	case c == '/':
		l.pos++
		return token{kind: tokName, text: l.regular()}
	case isDelim(c):
		l.pos++
		return token{kind: tokOther, text: string(c)}
	}

	word := l.regular()
	if n, err := strconv.ParseFloat(word, 64); err == nil {
		return token{kind: tokNumber, num: n, text: word}
	}
	if word == "ID" {
		l.skipInlineImage()
	}
	return token{kind: tokOperator, text: word}
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal reads a parenthesized string, honoring nesting and escapes.
func (l *lexer) literal() string {
	var b []byte
	depth := 0
	l.pos++ // (
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			b = append(b, c)
		case ')':
			if depth == 0 {
				return string(b)
			}
			depth--
			b = append(b, c)
		case '\\':
			if l.pos >= len(l.data) {
				return string(b)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && l.pos < len(l.data); k++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						val = val*8 + int(d-'0')
						l.pos++
					}
					b = append(b, byte(val))
				} else {
					b = append(b, e)
				}
			}
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

// hex reads a <...> string. A trailing odd digit is padded with zero.
func (l *lexer) hex() string {
	l.pos++ // <
	var b []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if half {
			b = append(b, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		b = append(b, hi<<4)
	}
	return string(b)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage moves past binary inline image data up to and including
// the EI keyword.
func (l *lexer) skipInlineImage() {
	if l.pos < len(l.data) && isWhite(l.data[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isWhite(l.data[i-1])
		after := i+2 >= len(l.data) || isWhite(l.data[i+2]) || isDelim(l.data[i+2])
		if before && after {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}

// textWriter accumulates shown text, collapsing redundant separators.
type textWriter struct {
	b strings.Builder
}

func (w *textWriter) show(s string) {
	for i := 0; i < len(s); i++ {
		// Single-byte fonts are read as Latin-1.
		w.b.WriteRune(rune(s[i]))
	}
}

func (w *textWriter) last() byte {
	s := w.b.String()
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func (w *textWriter) newline() {
	if l := w.last(); l != 0 && l != '\n' {
		w.b.WriteByte('\n')
	}
}

func (w *textWriter) space() {
	if l := w.last(); l != 0 && l != '\n' && l != ' ' {
		w.b.WriteByte(' ')
	}
}

// ContentText interprets the text operators of a decoded page content stream
// and returns the shown text. Line moves become newlines; horizontal moves
// and wide TJ adjustments become spaces.
func ContentText(data []byte) string {
	lx := &lexer{data: data}
	w := &textWriter{}

	var (
		stack  []operand
		arrays [][]operand
		lastY  float64
		haveY  bool
	)

	push := func(op operand) {
		if n := len(arrays); n > 0 {
			arrays[n-1] = append(arrays[n-1], op)
			return
		}
		stack = append(stack, op)
	}

	num := func(i int) float64 {
		if i < 0 || i >= len(stack) || stack[i].kind != tokNumber {
			return 0
		}
		return stack[i].num
	}

	lastString := func() (string, bool) {
		if n := len(stack); n > 0 && stack[n-1].kind == tokString {
			return stack[n-1].text, true
		}
		return "", false
	}

	for {
		tok := lx.next()
		switch tok.kind {
		case tokEOF:
			return strings.TrimRight(w.b.String(), " \n")
		case tokNumber, tokString, tokName:
			push(operand{kind: tok.kind, text: tok.text, num: tok.num})
			continue
		case tokArrayStart:
			arrays = append(arrays, nil)
			continue
		case tokArrayEnd:
			if n := len(arrays); n > 0 {
				arr := arrays[n-1]
				arrays = arrays[:n-1]
				push(operand{kind: tokArrayStart, arr: arr})
			}
			continue
		case tokOther:
			continue
		}

		n := len(stack)
		switch tok.text {
		case "Tj":
			if s, ok := lastString(); ok {
				w.show(s)
			}
		case "'", "\"":
			w.newline()
			if s, ok := lastString(); ok {
				w.show(s)
			}
		case "TJ":
			if n > 0 && stack[n-1].kind == tokArrayStart {
				for _, el := range stack[n-1].arr {
					switch el.kind {
					case tokString:
						w.show(el.text)
					case tokNumber:
						if el.num < tjSpaceThreshold {
							w.space()
						}
					}
				}
			}
		case "T*":
			w.newline()
		case "Td", "TD":
			tx, ty := num(n-2), num(n-1)
			if ty != 0 {
				w.newline()
			} else if tx > 0 {
				w.space()
			}
			if haveY {
				lastY += ty
			}
		case "Tm":
			y := num(n - 1)
			if haveY && y != lastY {
				w.newline()
			}
			lastY, haveY = y, true
		case "BT":
			haveY = false
		}

		stack = stack[:0]
		arrays = arrays[:0]
	}
}
