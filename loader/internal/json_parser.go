package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"legalrag/types"
)

// HierarchicalParser reads nested JSON statute files. Each record may
// carry an ID, Name, heading and/or literal text; the walk accumulates a
// context path from the identifying fields and emits one chunk per
// record that carries text.
type HierarchicalParser struct{}

func NewHierarchicalParser() *HierarchicalParser {
	return &HierarchicalParser{}
}

func (p *HierarchicalParser) Supports(ext string) bool {
	return ext == ".json"
}

func (p *HierarchicalParser) Format() types.SourceFormat {
	return types.FormatHierarchical
}

func (p *HierarchicalParser) Parse(path string) ([]types.TextChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	title, _ := doc["Act Title"].(string)
	title = CleanText(title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var chunks []types.TextChunk
	walkRecord(doc["Parts"], []string{title}, path, &chunks)
	return chunks, nil
}

// Fields consumed to build the context; everything else is recursed into.
var consumedKeys = map[string]bool{
	"ID":      true,
	"Name":    true,
	"heading": true,
	"text":    true,
}

func walkRecord(node any, contextPath []string, source string, out *[]types.TextChunk) {
	switch v := node.(type) {
	case map[string]any:
		path := contextPath

		id, _ := v["ID"].(string)
		name, _ := v["Name"].(string)
		if label := CleanText(id + " " + name); label != "" {
			path = append(append([]string{}, path...), label)
		}
		if heading, _ := v["heading"].(string); CleanText(heading) != "" {
			path = append(append([]string{}, path...), "Section "+CleanText(heading))
		}

		if text, ok := v["text"].(string); ok {
			if body := CleanText(text); body != "" {
				emit(out, path, body, source)
			}
		}

		// Map iteration order is random; sort keys so the chunk
		// sequence is stable run-over-run.
		keys := make([]string, 0, len(v))
		for k := range v {
			if !consumedKeys[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkRecord(v[k], path, source, out)
		}

	case []any:
		for _, item := range v {
			walkRecord(item, contextPath, source, out)
		}

	case string:
		if body := CleanText(v); body != "" {
			emit(out, contextPath, body, source)
		}
	}
}

func emit(out *[]types.TextChunk, contextPath []string, body, source string) {
	path := append([]string{}, contextPath...)
	*out = append(*out, types.TextChunk{
		Content:     chunkContent(path, body),
		ContextPath: path,
		SourceRef:   source,
	})
}
