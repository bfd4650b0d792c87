package speech

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/a3tai/pdf-speech-reader/internal/langdetect"
)

// DefaultLanguage is used when a language code cannot be parsed.
const DefaultLanguage = "en"

// DefaultEdgeVoice is used for languages without an entry in EdgeVoices.
const DefaultEdgeVoice = "en-US-ChristopherNeural"

// EdgeVoices maps base languages to edge-tts neural voices.
var EdgeVoices = map[string]string{
	"en": "en-US-ChristopherNeural",
	"es": "es-ES-AlvaroNeural",
	"fr": "fr-FR-HenriNeural",
	"de": "de-DE-ConradNeural",
	"zh": "zh-CN-YunxiNeural",
	"it": "it-IT-DiegoNeural",
	"pt": "pt-BR-AntonioNeural",
	"ar": "ar-EG-SalmaNeural",
}

// SystemVoices maps base languages to espeak-ng voice names.
var SystemVoices = map[string]string{
	"ar": "ar",
	"en": "en-us",
	"es": "es",
	"fr": "fr-fr",
	"de": "de",
	"zh": "cmn",
	"it": "it",
	"pt": "pt-br",
}

// googleLanguages overrides base languages the translate endpoint spells differently.
var googleLanguages = map[string]string{
	"zh": "zh-CN",
}

// BaseLanguage reduces a BCP 47 code to its base language ("ar-EG" -> "ar").
// Unparseable codes yield DefaultLanguage.
func BaseLanguage(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return DefaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLanguage
	}
	return base.String()
}

// DetectLanguage guesses the base language of text from its leading runes.
// Text too short to tell apart is treated as DefaultLanguage.
func DetectLanguage(text string) string {
	return langdetect.Detect(text)
}

// EdgeVoice returns the edge-tts voice for a base language.
func EdgeVoice(lang string) string {
	if v, ok := EdgeVoices[lang]; ok {
		return v
	}
	return DefaultEdgeVoice
}

// SystemVoice returns the espeak-ng voice for a base language.
func SystemVoice(lang string) string {
	if v, ok := SystemVoices[lang]; ok {
		return v
	}
	return SystemVoices[DefaultLanguage]
}

// RateString converts a speed multiplier into an edge-tts rate such as
// "+25%" or "-10%".
func RateString(speed float64) string {
	pct := int(math.Round((speed - 1) * 100))
	return fmt.Sprintf("%+d%%", pct)
}

// ChunkText splits text into pieces of at most limit runes, breaking on
// whitespace. Words longer than limit are cut.
func ChunkText(text string, limit int) []string {
	if limit <= 0 {
		limit = 1
	}

	var (
		chunks  []string
		current strings.Builder
		n       int
	)

	flush := func() {
		if n > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			n = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wl := utf8.RuneCountInString(word)

		for wl > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
			wl -= limit
		}

		if n > 0 && n+1+wl > limit {
			flush()
		}
		if n > 0 {
			current.WriteByte(' ')
			n++
		}
		current.WriteString(word)
		n += wl
	}
	flush()

	return chunks
}
