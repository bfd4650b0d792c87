// Package layout rebuilds reading-order lines from positioned words.
//
// Words are clustered into horizontal bands by quantizing their top offset,
// then ordered right-to-left inside a band so that RTL lines read in logical
// order once their words have been corrected.
package layout

import (
	"math"
	"sort"
	"strings"
)

// DefaultBandWidth is the vertical tolerance, in PDF units, used to put
// words with slightly different baselines on the same line.
const DefaultBandWidth = 8.0

// BandMode selects how a top offset is quantized into a band.
type BandMode string

const (
	// BandRound snaps to the nearest multiple of the band width, ties to even.
	BandRound BandMode = "round"
	// BandFloor snaps down to the enclosing multiple of the band width.
	BandFloor BandMode = "floor"
)

// Word is a positioned word as returned by a PDF backend. Top is measured
// from the top of the page, X0/X1 span the word horizontally.
type Word struct {
	Text string  `json:"text"`
	Top  float64 `json:"top"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
}

// Valid reports whether the word geometry can take part in line assembly.
func (w Word) Valid() bool {
	return isFinite(w.Top) && isFinite(w.X1)
}

// Reconstructor assembles words into lines.
type Reconstructor struct {
	// BandWidth is the height of a line band. Zero means DefaultBandWidth.
	BandWidth float64

	// Mode is the quantization rule. Empty means BandRound.
	Mode BandMode

	// Normalize, when set, rewrites each word's text once before it is
	// placed on a line.
	Normalize func(string) string
}

// NewReconstructor returns a Reconstructor using the given band width.
func NewReconstructor(bandWidth float64) *Reconstructor {
	return &Reconstructor{BandWidth: bandWidth, Mode: BandRound}
}

// Band returns the quantized vertical band for a top offset.
func (r *Reconstructor) Band(top float64) float64 {
	width := r.bandWidth()
	q := top / width
	if r.Mode == BandFloor {
		q = math.Floor(q)
	} else {
		q = math.RoundToEven(q)
	}
	return q * width
}

// Lines returns the text lines of a page, top to bottom. The input slice is
// not modified. Words with NaN or infinite coordinates are skipped.
func (r *Reconstructor) Lines(words []Word) []string {
	type banded struct {
		word Word
		band float64
	}

	items := make([]banded, 0, len(words))
	for _, w := range words {
		if !w.Valid() {
			continue
		}
		items = append(items, banded{word: w, band: r.Band(w.Top)})
	}
	if len(items) == 0 {
		return nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].band != items[j].band {
			return items[i].band < items[j].band
		}
		return items[i].word.X1 > items[j].word.X1
	})

	var lines []string
	current := make([]string, 0, 16)
	currentBand := items[0].band

	for _, it := range items {
		text := it.word.Text
		if r.Normalize != nil {
			text = r.Normalize(text)
		}

		if it.band != currentBand {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
			currentBand = it.band
		}
		current = append(current, text)
	}
	lines = append(lines, strings.Join(current, " "))

	return lines
}

// Page returns the newline-joined lines of a page.
func (r *Reconstructor) Page(words []Word) string {
	return strings.Join(r.Lines(words), "\n")
}

func (r *Reconstructor) bandWidth() float64 {
	if r.BandWidth <= 0 || !isFinite(r.BandWidth) {
		return DefaultBandWidth
	}
	return r.BandWidth
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
