package internal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"legalrag/types"
)

// TabularParser reads CSV statute tables. Each row identifies a
// hierarchical position (chapter, section) plus a free-text description;
// one chunk is emitted per row with a non-empty description.
type TabularParser struct{}

func NewTabularParser() *TabularParser {
	return &TabularParser{}
}

func (p *TabularParser) Supports(ext string) bool {
	return ext == ".csv"
}

func (p *TabularParser) Format() types.SourceFormat {
	return types.FormatTabular
}

func (p *TabularParser) Parse(path string) ([]types.TextChunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := columnIndex(records[0])

	var chunks []types.TextChunk
	for _, row := range records[1:] {
		description := CleanText(cell(row, header, "description"))
		if description == "" {
			continue
		}

		contextPath := []string{
			fmt.Sprintf("Chapter %s: %s", cell(row, header, "chapter"), cell(row, header, "chapter_name")),
			fmt.Sprintf("Section %s: %s", cell(row, header, "section"), cell(row, header, "section_name")),
		}

		chunks = append(chunks, types.TextChunk{
			Content:     chunkContent(contextPath, description),
			ContextPath: contextPath,
			SourceRef:   path,
		})
	}
	return chunks, nil
}

// columnIndex maps normalized header names to positions. Header cells in
// the source data carry stray whitespace ("Section _name"), so names are
// lowercased with all spaces removed before lookup.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// cell returns the trimmed value of a named column, or "" when the
// column is missing or the row is short. Missing position columns
// degrade to empty context segments, never an error.
func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
