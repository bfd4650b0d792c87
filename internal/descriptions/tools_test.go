package descriptions

import (
	"strings"
	"testing"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		desc := GetToolDescription(name)
		if desc == "" || desc == "Tool description not available" {
			t.Errorf("tool %s has no description", name)
		}
	}

	if got := GetToolDescription("pdf_read_file"); got != "Tool description not available" {
		t.Errorf("unknown tool description = %q", got)
	}
}

func TestSummary(t *testing.T) {
	got := Summary("pdf_inspect")
	if got != "Report page count, PDF version and encryption state of a PDF document." {
		t.Errorf("Summary() = %q", got)
	}
	if strings.Contains(Summary("speech_synthesize"), "\n") {
		t.Error("Summary() should be a single line")
	}
}

func TestGetAllToolNames(t *testing.T) {
	names := GetAllToolNames()
	if len(names) != len(ToolDescriptions) {
		t.Fatalf("got %d names, want %d", len(names), len(ToolDescriptions))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}
