package turn

import (
	"reflect"
	"testing"
)

func TestExtractSentences(t *testing.T) {
	tests := []struct {
		name          string
		buffer        string
		wantSentences []string
		wantRemaining string
	}{
		{
			name:          "empty buffer",
			buffer:        "",
			wantSentences: nil,
			wantRemaining: "",
		},
		{
			name:          "no terminator",
			buffer:        "still thinking about",
			wantSentences: nil,
			wantRemaining: "still thinking about",
		},
		{
			name:          "terminator without trailing whitespace stays buffered",
			buffer:        "I ship small changes.",
			wantSentences: nil,
			wantRemaining: "I ship small changes.",
		},
		{
			name:          "single complete sentence",
			buffer:        "I ship small changes. And then",
			wantSentences: []string{"I ship small changes."},
			wantRemaining: "And then",
		},
		{
			name:          "mixed terminators",
			buffer:        "Really? Yes! It works. mostly",
			wantSentences: []string{"Really?", "Yes!", "It works."},
			wantRemaining: "mostly",
		},
		{
			name:          "newline counts as whitespace",
			buffer:        "First line.\nsecond",
			wantSentences: []string{"First line."},
			wantRemaining: "second",
		},
		{
			name:          "trailing whitespace leaves empty remainder",
			buffer:        "Done. ",
			wantSentences: []string{"Done."},
			wantRemaining: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentences, remaining := ExtractSentences(tt.buffer)
			if !reflect.DeepEqual(sentences, tt.wantSentences) {
				t.Errorf("sentences = %q, want %q", sentences, tt.wantSentences)
			}
			if remaining != tt.wantRemaining {
				t.Errorf("remaining = %q, want %q", remaining, tt.wantRemaining)
			}
		})
	}
}

func TestExtractSentencesRescanIsStable(t *testing.T) {
	// Re-scanning the remainder of a previous scan must not invent new
	// sentences until more text arrives.
	_, remaining := ExtractSentences("It compiles. It even runs. but")
	sentences, remaining := ExtractSentences(remaining)
	if len(sentences) != 0 {
		t.Fatalf("rescan produced sentences %q", sentences)
	}

	sentences, remaining = ExtractSentences(remaining + " slowly. ")
	if len(sentences) != 1 || sentences[0] != "but slowly." {
		t.Fatalf("sentences = %q, want [but slowly.]", sentences)
	}
	if remaining != "" {
		t.Fatalf("remaining = %q, want empty", remaining)
	}
}
