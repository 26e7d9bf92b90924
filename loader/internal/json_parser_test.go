package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrag/types"
)

const actJSON = `{
	"Act Title": "Test Penal Act",
	"Parts": [
		{
			"ID": "Part I",
			"Name": "Preliminary",
			"Sections": [
				{"heading": "1. Short title", "text": "This Act may be called the Test Penal Act."},
				{"heading": "2. Reserved"},
				{"heading": "3. Extent", "text": "It extends to the whole territory."}
			]
		}
	]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHierarchicalParserSupports(t *testing.T) {
	p := NewHierarchicalParser()
	assert.True(t, p.Supports(".json"))
	assert.False(t, p.Supports(".csv"))
	assert.False(t, p.Supports(".pdf"))
	assert.Equal(t, types.FormatHierarchical, p.Format())
}

func TestHierarchicalParserEmitsEveryTextNodeOnce(t *testing.T) {
	path := writeFile(t, t.TempDir(), "act.json", actJSON)

	chunks, err := NewHierarchicalParser().Parse(path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, []string{"Test Penal Act", "Part I Preliminary", "Section 1. Short title"}, chunks[0].ContextPath)
	assert.Equal(t, []string{"Test Penal Act", "Part I Preliminary", "Section 3. Extent"}, chunks[1].ContextPath)
}

func TestHierarchicalParserContentCarriesContextPrefix(t *testing.T) {
	path := writeFile(t, t.TempDir(), "act.json", actJSON)

	chunks, err := NewHierarchicalParser().Parse(path)
	require.NoError(t, err)

	want := "Test Penal Act" + types.ContextSeparator +
		"Part I Preliminary" + types.ContextSeparator +
		"Section 1. Short title" + types.ContextSeparator +
		"This Act may be called the Test Penal Act."
	assert.Equal(t, want, chunks[0].Content)
	assert.Equal(t, path, chunks[0].SourceRef)
}

func TestHierarchicalParserDeterministicOrder(t *testing.T) {
	nested := `{
		"Act Title": "Order Act",
		"Parts": {
			"zeta": {"ID": "Z", "text": "zeta text"},
			"alpha": {"ID": "A", "text": "alpha text"},
			"mid": {"ID": "M", "text": "mid text"}
		}
	}`
	path := writeFile(t, t.TempDir(), "order.json", nested)

	first, err := NewHierarchicalParser().Parse(path)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := NewHierarchicalParser().Parse(path)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	require.Len(t, first, 3)
	assert.Contains(t, first[0].Content, "alpha text")
	assert.Contains(t, first[1].Content, "mid text")
	assert.Contains(t, first[2].Content, "zeta text")
}

func TestHierarchicalParserTitleFallsBackToFilename(t *testing.T) {
	path := writeFile(t, t.TempDir(), "motor_vehicles.json", `{"Parts": [{"text": "rule body"}]}`)

	chunks, err := NewHierarchicalParser().Parse(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "motor_vehicles", chunks[0].ContextPath[0])
}

func TestHierarchicalParserMalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", `{"Act Title": `)

	_, err := NewHierarchicalParser().Parse(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode"))
}

func TestHierarchicalParserSkipsEmptyText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.json",
		`{"Act Title": "Empty Act", "Parts": [{"ID": "P1", "text": "   "}]}`)

	chunks, err := NewHierarchicalParser().Parse(path)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
