package descriptions

import (
	"sort"
	"strings"
)

// Tool descriptions with practical examples and use cases

const (
	// Extraction Tools
	PDFExtractTextDescription = `Extract reading-order text from PDF documents, including Arabic and other right-to-left scripts.

**When to use:** Need the text of a PDF in the order a person would read it, especially when the document mixes Arabic and Latin text.

**Why it's useful:** Many PDFs store right-to-left text in visual order, so naive extraction returns reversed words. Words are regrouped into lines from their page positions, reversed back where needed and normalized (NFKC) so presentation forms and ligatures become plain letters. Output that looks corrupted is rejected and the other strategy is tried automatically.

**Examples:**
• Read an Arabic lecture: "Get the text of lecture-03.pdf"
• Force the quick path: "Extract invoice.pdf with primary=fast"

**Strategies:**
• detailed: word positions regrouped into lines, right-to-left ordering (default)
• fast: plain page text with right-to-left lines reversed

**Best practices:** The response reports the strategy that produced the text, whether the fallback was used and the detected language. Pass that language to speech_synthesize.`

	PDFInspectDescription = `Report page count, PDF version and encryption state of a PDF document.

**When to use:** Check a document before extracting it, or explain why extraction returned nothing.

**Examples:**
• "How many pages does thesis.pdf have?"
• "Is contract.pdf encrypted?"

**Best practices:** Encrypted documents usually yield no text. Scanned documents have pages but no extractable text.`

	PDFSearchDirectoryDescription = `Discover and filter PDF files in the configured directory with fuzzy name search.

**When to use:** Find the file to read when only part of its name is known.

**Examples:**
• List everything: call with no arguments
• Narrow down: "Find PDFs matching 'grammar'"

**Best practices:** Results are limited to the configured directory. Use the returned path with pdf_extract_text or pdf_read_aloud.`

	// Speech Tools
	SpeechSynthesizeDescription = `Convert text to an audio file using a neural, online or offline voice.

**When to use:** Read text aloud, for example a passage returned by pdf_extract_text.

**Engines:**
• edge: neural voices (default), falls back to google if it fails or produces no audio
• google: online voices, text is sent in short chunks
• system: offline espeak-ng voices, robotic but needs no network

**Examples:**
• "Read 'مرحبا بكم' aloud in Arabic"
• "Speak this paragraph at speed 1.25"

**Best practices:** Leave language empty to detect it from the text. Speed 1.0 is normal; 0.5 is half speed and 2.0 double.`

	PDFReadAloudDescription = `Extract the text of a PDF and convert it to an audio file in one step.

**When to use:** Turn a whole document into audio without handling the text yourself.

**Examples:**
• "Read lecture-03.pdf aloud"
• "Read invoice.pdf with the system engine at speed 0.9"

**Best practices:** The language detected during extraction is used unless one is given. Long documents take a while to synthesize.`

	// Server Tools
	ServerInfoDescription = `Get server configuration, directories, extraction policy and available speech engines.

**When to use:** Find the configured PDF directory, where audio files are written, or which engines are registered.

**Best practices:** Call first in a new session to learn where documents live.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_extract_text":     PDFExtractTextDescription,
	"pdf_inspect":          PDFInspectDescription,
	"pdf_search_directory": PDFSearchDirectoryDescription,
	"speech_synthesize":    SpeechSynthesizeDescription,
	"pdf_read_aloud":       PDFReadAloudDescription,
	"server_info":          ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// Summary returns the first line of a tool's description.
func Summary(toolName string) string {
	desc := GetToolDescription(toolName)
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		return desc[:i]
	}
	return desc
}

// GetAllToolNames returns the sorted names of all described tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
