package internal

import (
	"strings"
	"unicode/utf8"

	"legalrag/types"
)

// Boundary preference for recursive splitting: paragraphs first, then
// lines, sentences, words, and only then a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter subdivides long chunks into bounded overlapping windows. The
// same input always produces the same boundaries, which stable chunk
// identity depends on.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split expands each oversized chunk into windows; windows keep the
// source chunk's context path and source reference.
func (s *Splitter) Split(chunks []types.TextChunk) []types.TextChunk {
	out := make([]types.TextChunk, 0, len(chunks))
	for _, c := range chunks {
		for _, window := range s.split(c.Content, 0) {
			window = strings.TrimSpace(window)
			if window == "" {
				continue
			}
			out = append(out, types.TextChunk{
				Content:     window,
				ContextPath: c.ContextPath,
				SourceRef:   c.SourceRef,
			})
		}
	}
	return out
}

func (s *Splitter) split(text string, sepIdx int) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	return s.merge(s.fragments(text, sepIdx))
}

// fragments recursively subdivides text into pieces no longer than
// chunkSize, without overlap. Overlap is introduced only once, by merge,
// so a deeper recursion level can never duplicate it inside a window.
func (s *Splitter) fragments(text string, sepIdx int) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIdx >= len(separators) {
		return s.hardCut(text)
	}

	parts := strings.SplitAfter(text, separators[sepIdx])
	if len(parts) < 2 {
		return s.fragments(text, sepIdx+1)
	}

	var pieces []string
	for _, p := range parts {
		if len(p) > s.chunkSize {
			pieces = append(pieces, s.fragments(p, sepIdx+1)...)
		} else {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// merge packs fragments into windows up to chunkSize, carrying an
// overlap tail from each flushed window into the next so that concepts
// spanning a boundary stay retrievable on both sides.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var cur string

	for _, p := range pieces {
		if cur != "" && len(cur)+len(p) > s.chunkSize {
			out = append(out, cur)
			tail := overlapTail(cur, s.overlap)
			if len(tail)+len(p) > s.chunkSize {
				tail = ""
			}
			cur = tail
		}
		cur += p
	}
	if strings.TrimSpace(cur) != "" {
		out = append(out, cur)
	}
	return out
}

// hardCut slices text that has no usable boundary into stride-sized
// fragments for merge to pack; the stride leaves room for the overlap
// merge will add back.
func (s *Splitter) hardCut(text string) []string {
	stride := s.chunkSize - s.overlap
	var out []string
	for start := 0; start < len(text); {
		end := start + stride
		if end >= len(text) {
			end = len(text)
		} else {
			end = runeAlign(text, end)
		}
		out = append(out, text[start:end])
		start = end
	}
	return out
}

func overlapTail(s string, overlap int) string {
	if overlap <= 0 || len(s) <= overlap {
		return ""
	}
	return s[runeAlign(s, len(s)-overlap):]
}

// runeAlign moves a byte offset forward to the next rune boundary so a
// cut never lands inside a multi-byte character.
func runeAlign(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
