package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"legalrag/types"
)

// Parser is one source-format variant. Adding a format means adding a
// Parser, not touching the dispatch below.
type Parser interface {
	Supports(ext string) bool
	Format() types.SourceFormat
	Parse(path string) ([]types.TextChunk, error)
}

// DefaultParsers returns the closed set of recognized formats.
func DefaultParsers() []Parser {
	return []Parser{
		NewHierarchicalParser(),
		NewTabularParser(),
		NewPDFParser(),
	}
}

// LoadDirectory walks dir and parses every recognized file into one
// Document per source file. Unrecognized extensions are skipped. A
// malformed file is logged and skipped; it never aborts the run, so the
// result may cover fewer files than the directory holds.
func LoadDirectory(dir string, parsers []Parser) ([]types.Document, error) {
	var docs []types.Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		parser := selectParser(parsers, ext)
		if parser == nil {
			return nil
		}

		chunks, err := parser.Parse(path)
		if err != nil {
			slog.Error("failed to parse file, skipping", "path", path, "error", err)
			return nil
		}
		if len(chunks) == 0 {
			return nil
		}

		docs = append(docs, types.Document{
			ID:         types.DocumentID(path),
			Title:      documentTitle(path, chunks),
			Format:     parser.Format(),
			SourcePath: path,
			Chunks:     chunks,
			ParsedAt:   time.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return docs, nil
}

// FlattenChunks concatenates the chunks of all documents in walk order.
func FlattenChunks(docs []types.Document) []types.TextChunk {
	var chunks []types.TextChunk
	for _, doc := range docs {
		chunks = append(chunks, doc.Chunks...)
	}
	return chunks
}

func documentTitle(path string, chunks []types.TextChunk) string {
	if len(chunks) > 0 && len(chunks[0].ContextPath) > 0 {
		return chunks[0].ContextPath[0]
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func selectParser(parsers []Parser, ext string) Parser {
	for _, p := range parsers {
		if p.Supports(ext) {
			return p
		}
	}
	return nil
}

var (
	emDashEscape = regexp.MustCompile(`\\u2014`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText normalizes a raw text fragment: known escaped unicode
// sequences are replaced, whitespace runs collapse to one space, and the
// result is trimmed.
func CleanText(text string) string {
	text = emDashEscape.ReplaceAllString(text, "—")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// chunkContent prepends the joined context path to the cleaned body, so
// every chunk is self-describing.
func chunkContent(contextPath []string, body string) string {
	if len(contextPath) == 0 {
		return body
	}
	return strings.Join(contextPath, types.ContextSeparator) + types.ContextSeparator + body
}
