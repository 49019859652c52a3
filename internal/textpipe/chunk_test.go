package textpipe

import (
	"strings"
	"testing"
)

func TestHeuristicCounter(t *testing.T) {
	counter := NewHeuristicCounter()
	if got := counter.CountTokens(""); got != 0 {
		t.Fatalf("empty text = %d tokens, want 0", got)
	}
	if got := counter.CountTokens("one two three"); got != 4 {
		t.Fatalf("three words = %d tokens, want 4", got)
	}
}

func TestSplitChunksShortTextSingleChunk(t *testing.T) {
	chunks := splitChunks("A short entry. Nothing much happened.", 480, NewHeuristicCounter())
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Text != "A short entry. Nothing much happened." {
		t.Fatalf("unexpected chunk text %q", chunks[0].Text)
	}
}

func TestSplitChunksEmpty(t *testing.T) {
	if chunks := splitChunks("   ", 480, NewHeuristicCounter()); chunks != nil {
		t.Fatalf("expected nil chunks, got %+v", chunks)
	}
}

func TestSplitChunksSentenceBoundaries(t *testing.T) {
	// Each sentence is 6 words (8 estimated tokens); a 20-token budget fits
	// two sentences per chunk.
	sentence := "Today I felt a bit better."
	text := strings.TrimSpace(strings.Repeat(sentence+" ", 5))
	chunks := splitChunks(text, 20, NewHeuristicCounter())
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Tokens > 20 {
			t.Fatalf("chunk %d has %d tokens, over budget", i, c.Tokens)
		}
		if !strings.HasSuffix(c.Text, ".") {
			t.Fatalf("chunk %d does not end at a sentence boundary: %q", i, c.Text)
		}
	}
}

func TestSplitChunksWordFallback(t *testing.T) {
	// One giant unpunctuated sentence must still be split under budget.
	text := strings.TrimSpace(strings.Repeat("word ", 100))
	chunks := splitChunks(text, 20, NewHeuristicCounter())
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want several", len(chunks))
	}
	var rebuilt []string
	for i, c := range chunks {
		if c.Tokens > 20 {
			t.Fatalf("chunk %d has %d tokens, over budget", i, c.Tokens)
		}
		rebuilt = append(rebuilt, c.Text)
	}
	if strings.Join(rebuilt, " ") != text {
		t.Fatal("word fallback lost content")
	}
}

func TestSplitSentencesKeepsPunctuation(t *testing.T) {
	sentences := splitSentences("Really?! I had no idea... That explains it.")
	want := []string{"Really?!", "I had no idea...", "That explains it."}
	if len(sentences) != len(want) {
		t.Fatalf("sentences = %v, want %v", sentences, want)
	}
	for i := range want {
		if sentences[i] != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, sentences[i], want[i])
		}
	}
}

func TestSplitSentencesDecimalNotBoundary(t *testing.T) {
	sentences := splitSentences("I slept 7.5 hours. It helped.")
	if len(sentences) != 2 {
		t.Fatalf("sentences = %v, want 2 entries", sentences)
	}
	if sentences[0] != "I slept 7.5 hours." {
		t.Fatalf("first sentence = %q", sentences[0])
	}
}
