package ingest

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic",
			in:   "First sentence. Second one! Third?",
			want: []string{"First sentence.", "Second one!", "Third?"},
		},
		{
			name: "no terminal punctuation",
			in:   "a fragment without punctuation",
			want: []string{"a fragment without punctuation"},
		},
		{
			name: "newlines between sentences",
			in:   "One.\nTwo.",
			want: []string{"One.", "Two."},
		},
		{
			name: "empty",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunksRespectSizeAndCoverText(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %d carries some course material. ", i)
	}
	text := b.String()

	chunks := Chunks(text, 800, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if len(c) > 800 {
			t.Errorf("chunk %d is %d chars, over the 800 limit", i, len(c))
		}
	}

	// Every sentence appears in at least one chunk.
	joined := strings.Join(chunks, " ")
	for i := 0; i < 40; i++ {
		if !strings.Contains(joined, fmt.Sprintf("Sentence number %d ", i)) {
			t.Errorf("sentence %d missing from chunks", i)
		}
	}
}

func TestChunksOverlap(t *testing.T) {
	text := "Alpha alpha alpha alpha. Beta beta beta beta. Gamma gamma gamma gamma. Delta delta delta delta."

	chunks := Chunks(text, 56, 30)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each boundary repeats the previous chunk's trailing sentence.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		lastSentence := prev[strings.LastIndex(strings.TrimRight(prev, "."), ". ")+1:]
		if !strings.Contains(chunks[i], strings.TrimSpace(strings.TrimSuffix(lastSentence, "."))) {
			t.Errorf("chunk %d does not overlap with its predecessor:\nprev: %q\nnext: %q", i, prev, chunks[i])
		}
	}
}

func TestChunksOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 50) + "end."
	chunks := Chunks(long, 100, 20)
	if len(chunks) != 1 {
		t.Fatalf("oversized sentence split into %d chunks, want 1", len(chunks))
	}
	if chunks[0] != strings.TrimSpace(long) {
		t.Error("oversized sentence was not kept whole")
	}
}

func TestChunksZeroSize(t *testing.T) {
	if got := Chunks("Some text.", 0, 0); got != nil {
		t.Errorf("Chunks() with zero size = %q, want nil", got)
	}
}

func TestChunksShortText(t *testing.T) {
	got := Chunks("Only one short sentence.", 800, 100)
	if len(got) != 1 || got[0] != "Only one short sentence." {
		t.Errorf("Chunks() = %q", got)
	}
}
