package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(2000, 100)

	chunks := s.Split("a short paragraph")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short paragraph" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(2000, 100)

	if chunks := s.Split(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := s.Split("   \n\n  "); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace text, got %d", len(chunks))
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := NewSplitter(100, 20)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("some words in a sentence. ")
	}

	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s := NewSplitter(60, 0)

	first := strings.Repeat("a", 40)
	second := strings.Repeat("b", 40)
	chunks := s.Split(first + "\n\n" + second)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if strings.Contains(chunks[0], "b") {
		t.Errorf("first chunk crosses the paragraph boundary: %q", chunks[0])
	}
	if strings.Contains(chunks[1], "a") {
		t.Errorf("second chunk crosses the paragraph boundary: %q", chunks[1])
	}
}

func TestSplitOverlapCarriesTrailingText(t *testing.T) {
	s := NewSplitter(50, 20)

	words := make([]string, 30)
	for i := range words {
		words[i] = "word"
	}
	chunks := s.Split(strings.Join(words, " "))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The tail of each chunk must reappear at the start of the next one.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-4:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the previous tail %q: %q", i, tail, chunks[i])
		}
	}
}

func TestSplitNeverBreaksRunes(t *testing.T) {
	s := NewSplitter(10, 2)

	text := strings.Repeat("héllo wörld ", 20) + strings.Repeat("日本語テキスト", 30)
	for i, c := range s.Split(text) {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d contains a broken rune: %q", i, c)
		}
	}
}

func TestHardSplitUnbrokenText(t *testing.T) {
	s := NewSplitter(50, 10)

	chunks := s.Split(strings.Repeat("x", 200))
	if len(chunks) < 4 {
		t.Fatalf("expected at least 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 50 {
			t.Errorf("chunk %d has %d runes, want <= 50", i, n)
		}
	}
}

func TestSplitPagesKeepsPageNumbers(t *testing.T) {
	s := NewSplitter(2000, 100)

	pages := []PageText{
		{Page: 0, Text: "first page text"},
		{Page: 1, Text: ""},
		{Page: 2, Text: "third page text"},
	}

	chunks := s.SplitPages(pages)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Page != 0 || chunks[1].Page != 2 {
		t.Errorf("unexpected page numbers: %d, %d", chunks[0].Page, chunks[1].Page)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(80, 20)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 10)

	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
