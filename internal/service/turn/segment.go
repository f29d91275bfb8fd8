package turn

import (
	"regexp"
	"strings"
)

// A sentence ends at '.', '!' or '?' followed by whitespace. Punctuation at
// end-of-buffer is treated as incomplete until whitespace arrives or the
// stream ends.
var sentenceEnders = regexp.MustCompile(`([.!?])\s+`)

// ExtractSentences splits the buffer accumulated so far into complete
// sentences and the unconsumed suffix. Each call scans the whole current
// buffer, so callers deduplicate sentences already emitted by an earlier
// call.
func ExtractSentences(buffer string) ([]string, string) {
	matches := sentenceEnders.FindAllStringIndex(buffer, -1)

	var sentences []string
	last := 0
	for _, m := range matches {
		sentence := strings.TrimSpace(buffer[last : m[0]+1])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		last = m[1]
	}

	return sentences, buffer[last:]
}
