package internal

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrag/types"
)

func TestSplitterPassesShortChunksThrough(t *testing.T) {
	s := NewSplitter(100, 20)
	in := []types.TextChunk{{Content: "short provision", ContextPath: []string{"Act"}, SourceRef: "a.json"}}

	out := s.Split(in)
	require.Len(t, out, 1)
	assert.Equal(t, "short provision", out[0].Content)
	assert.Equal(t, []string{"Act"}, out[0].ContextPath)
	assert.Equal(t, "a.json", out[0].SourceRef)
}

func TestSplitterWindowsStayWithinBudget(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("Every person shall be liable to punishment under this code. ")
	}
	s := NewSplitter(200, 40)

	out := s.Split([]types.TextChunk{{Content: b.String(), SourceRef: "a.json"}})
	require.Greater(t, len(out), 1)
	for _, c := range out {
		assert.LessOrEqual(t, len(c.Content), 200)
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestSplitterDeterministic(t *testing.T) {
	text := strings.Repeat("The court may impose a fine.\n\nThe fine shall not exceed the limit. ", 30)
	s := NewSplitter(150, 30)
	in := []types.TextChunk{{Content: text, SourceRef: "a.json"}}

	first := s.Split(in)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, s.Split(in))
	}
}

func TestSplitterPrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 80)
	para2 := strings.Repeat("b", 80)
	s := NewSplitter(100, 0)

	out := s.Split([]types.TextChunk{{Content: para1 + "\n\n" + para2, SourceRef: "a.json"}})
	require.Len(t, out, 2)
	assert.Equal(t, para1, out[0].Content)
	assert.Equal(t, para2, out[1].Content)
}

func TestSplitterHardCutOverlap(t *testing.T) {
	text := strings.Repeat("x", 1000)
	s := NewSplitter(100, 20)

	out := s.Split([]types.TextChunk{{Content: text, SourceRef: "a.json"}})
	require.Greater(t, len(out), 2)
	for i := 0; i < len(out)-1; i++ {
		cur := out[i].Content
		next := out[i+1].Content
		assert.Equal(t, cur[len(cur)-20:], next[:20])
	}
}

func TestSplitterNeverCutsInsideRune(t *testing.T) {
	text := strings.Repeat("धारा का पाठ ", 200)
	s := NewSplitter(100, 20)

	out := s.Split([]types.TextChunk{{Content: text, SourceRef: "a.json"}})
	require.NotEmpty(t, out)
	for _, c := range out {
		assert.True(t, utf8.ValidString(c.Content))
	}
}

func TestSplitterGuardsDegenerateOverlap(t *testing.T) {
	s := NewSplitter(100, 100)
	out := s.Split([]types.TextChunk{{Content: strings.Repeat("y", 300), SourceRef: "a.json"}})
	require.NotEmpty(t, out)
	for _, c := range out {
		assert.LessOrEqual(t, len(c.Content), 100)
	}
}

func TestSplitterOverlapNotDuplicatedAcrossLevels(t *testing.T) {
	s1 := strings.Repeat("a", 38) + ". "
	s2 := strings.Repeat("b", 38) + ". "
	s3 := strings.Repeat("c", 30)
	text := s1 + s2 + s3 + "\n\nclosing paragraph"
	s := NewSplitter(100, 20)

	out := s.Split([]types.TextChunk{{Content: text, SourceRef: "a.json"}})
	require.Greater(t, len(out), 1)
	for _, c := range out {
		assert.LessOrEqual(t, strings.Count(c.Content, "b. "), 1)
	}
}

func TestSplitterDropsWhitespaceOnlyWindows(t *testing.T) {
	s := NewSplitter(100, 0)
	out := s.Split([]types.TextChunk{{Content: "   \n\n   ", SourceRef: "a.json"}})
	assert.Empty(t, out)
}
