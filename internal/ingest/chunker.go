package ingest

import (
	"regexp"
	"strings"
)

// sentenceEnd finds sentence boundaries: terminal punctuation followed by
// whitespace. Abbreviations will occasionally over-split; that only moves a
// chunk boundary, it never loses text.
var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// SplitSentences splits text into sentences, keeping terminal punctuation.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Chunks splits text into overlapping chunks of at most size characters,
// breaking on sentence boundaries where possible. Consecutive chunks share
// trailing sentences up to overlap characters so retrieval does not lose
// context at the seams. A single sentence longer than size becomes its own
// oversized chunk rather than being cut mid-sentence.
func Chunks(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var (
		chunks  []string
		current []string
		length  int
		fresh   bool
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences up to the overlap.
		var (
			kept     []string
			keptSize int
		)
		for i := len(current) - 1; i >= 0; i-- {
			s := current[i]
			if keptSize+len(s) > overlap {
				break
			}
			kept = append([]string{s}, kept...)
			keptSize += len(s) + 1
		}
		current = kept
		length = keptSize
		fresh = false
	}

	for _, sentence := range sentences {
		if length > 0 && length+len(sentence) > size {
			flush()
			// The overlap itself may already fill the budget.
			if length > 0 && length+len(sentence) > size {
				current = nil
				length = 0
			}
		}
		current = append(current, sentence)
		length += len(sentence) + 1
		fresh = true
	}
	if fresh && len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
