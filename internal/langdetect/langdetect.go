// Package langdetect guesses the base language of extracted text, limited to
// the languages the speech engines have voices for.
package langdetect

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

const (
	// Default is returned when no supported language can be told apart.
	Default = "en"
	// SampleSize is the number of leading runes inspected by Detect.
	SampleSize = 500
	// MinLatinLetters is the least number of letters a Latin-script sample
	// needs before its trigram profile is trusted.
	MinLatinLetters = 40
)

// codes maps the detector's languages to base language codes.
var codes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Cmn: "zh",
	whatlanggo.Ita: "it",
	whatlanggo.Por: "pt",
	whatlanggo.Arb: "ar",
}

var options = whatlanggo.Options{Whitelist: whitelist()}

func whitelist() map[whatlanggo.Lang]bool {
	w := make(map[whatlanggo.Lang]bool, len(codes))
	for lang := range codes {
		w[lang] = true
	}
	return w
}

// Supported lists the base language codes Detect can return.
func Supported() []string {
	return []string{"ar", "de", "en", "es", "fr", "it", "pt", "zh"}
}

// Detect returns the base language code of the first SampleSize runes of
// text, or Default when the sample is too short or in another language.
func Detect(text string) string {
	sample := leading(text, SampleSize)

	info := whatlanggo.DetectWithOptions(sample, options)
	if info.Script == nil {
		return Default
	}
	if info.Script == unicode.Latin && countLetters(sample) < MinLatinLetters {
		return Default
	}

	if code, ok := codes[info.Lang]; ok {
		return code
	}
	return Default
}

func leading(text string, n int) string {
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
