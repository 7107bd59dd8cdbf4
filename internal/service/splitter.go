package service

import (
	"strings"
	"unicode/utf8"
)

// Split boundaries in priority order: paragraph, line, sentence, word.
// The empty separator is the hard fallback for unbroken runs of text.
var splitSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into overlapping chunks, preferring natural boundaries.
// All offsets are rune-based so a chunk never ends inside a multi-byte
// character.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// PageText is the extracted text of one PDF page (0-based page number).
type PageText struct {
	Page int
	Text string
}

// SplitChunk is one produced chunk with its originating page.
type SplitChunk struct {
	Text string
	Page int
}

// SplitPages splits each page independently so every chunk keeps an exact
// page number.
func (s *Splitter) SplitPages(pages []PageText) []SplitChunk {
	var out []SplitChunk
	for _, page := range pages {
		for _, text := range s.Split(page.Text) {
			out = append(out, SplitChunk{Text: text, Page: page.Page})
		}
	}
	return out
}

// Split returns the non-empty chunks of text.
func (s *Splitter) Split(text string) []string {
	var out []string
	for _, c := range s.splitText(text, splitSeparators) {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s *Splitter) splitText(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= s.ChunkSize {
		return []string{text}
	}

	// Pick the highest-priority separator that occurs in this text.
	sep := ""
	rest := seps
	for i, cand := range seps {
		if cand == "" {
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	parts := strings.SplitAfter(text, sep)

	var chunks []string
	var pending []string
	pendingLen := 0

	flush := func() {
		if pendingLen == 0 {
			return
		}
		chunks = append(chunks, strings.Join(pending, ""))
		pending, pendingLen = s.overlapTail(pending)
	}

	for _, part := range parts {
		partLen := utf8.RuneCountInString(part)
		if partLen > s.ChunkSize {
			// This piece is itself oversized: emit what we have and recurse
			// with the lower-priority separators.
			flush()
			pending, pendingLen = nil, 0
			chunks = append(chunks, s.splitText(part, rest)...)
			continue
		}
		if pendingLen+partLen > s.ChunkSize && pendingLen > 0 {
			flush()
		}
		pending = append(pending, part)
		pendingLen += partLen
	}
	if pendingLen > 0 {
		chunks = append(chunks, strings.Join(pending, ""))
	}
	return chunks
}

// overlapTail keeps the trailing parts of the just-emitted chunk, up to
// ChunkOverlap runes, as the start of the next chunk.
func (s *Splitter) overlapTail(parts []string) ([]string, int) {
	if s.ChunkOverlap == 0 {
		return nil, 0
	}
	total := 0
	start := len(parts)
	for start > 0 {
		n := utf8.RuneCountInString(parts[start-1])
		if total+n > s.ChunkOverlap {
			break
		}
		total += n
		start--
	}
	if start == len(parts) {
		return nil, 0
	}
	tail := make([]string, len(parts)-start)
	copy(tail, parts[start:])
	return tail, total
}

// hardSplit cuts rune windows of ChunkSize with ChunkOverlap when no
// separator is available.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.ChunkOverlap
	if step <= 0 {
		step = s.ChunkSize
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
