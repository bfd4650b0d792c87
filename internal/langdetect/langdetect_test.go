package langdetect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "The quick brown fox jumps over the lazy dog while the children are playing in the garden.",
			want: "en",
		},
		{
			name: "french",
			text: "Bonjour, je voudrais réserver une table pour deux personnes ce soir au restaurant près de la gare.",
			want: "fr",
		},
		{
			name: "spanish",
			text: "Buenos días, me gustaría saber dónde está la estación de tren y cuánto cuesta el billete para mañana.",
			want: "es",
		},
		{
			name: "german",
			text: "Guten Morgen, ich möchte wissen, wo der Bahnhof ist und wie viel die Fahrkarte für morgen kostet.",
			want: "de",
		},
		{
			name: "italian",
			text: "Buongiorno, vorrei sapere dove si trova la stazione e quanto costa il biglietto per domani mattina.",
			want: "it",
		},
		{name: "chinese", text: "今天天气很好，我们一起去公园散步吧。", want: "zh"},
		{name: "arabic", text: "مرحبا بكم في هذا البرنامج", want: "ar"},
		{name: "arabic dominates mixed line", text: "سلام عليكم and hi", want: "ar"},
		{name: "short latin text", text: "Bonjour tout le monde", want: Default},
		{name: "unsupported script", text: "こんにちは、元気ですか", want: Default},
		{name: "empty", text: "", want: Default},
		{name: "digits only", text: "12345", want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetect_OnlyLeadingSample(t *testing.T) {
	text := strings.Repeat("س", SampleSize) +
		strings.Repeat(" The quick brown fox jumps over the lazy dog.", 40)
	assert.Equal(t, "ar", Detect(text))
}

func TestSupported(t *testing.T) {
	supported := Supported()
	assert.Len(t, supported, len(codes))
	for _, code := range codes {
		assert.Contains(t, supported, code)
	}
}
