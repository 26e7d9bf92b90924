package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextSeparator joins the structural labels of a chunk's context path
// and separates the path from the chunk body.
const ContextSeparator = " >> "

type SourceFormat string

const (
	FormatHierarchical SourceFormat = "hierarchical"
	FormatTabular      SourceFormat = "tabular"
	FormatPDF          SourceFormat = "pdf"
)

// TextChunk is one retrievable unit of statute text. Content always starts
// with the joined context path, so a retrieval hit is self-describing
// without a second lookup.
type TextChunk struct {
	Content     string
	ContextPath []string
	SourceRef   string
}

// EmbeddedChunk couples a chunk with its vector and stable identifier.
type EmbeddedChunk struct {
	TextChunk
	ID        string
	Embedding []float32
}

// Document groups the chunks parsed from one source file.
type Document struct {
	ID         uuid.UUID
	Title      string
	Format     SourceFormat
	SourcePath string
	Chunks     []TextChunk
	ParsedAt   time.Time
}

// RetrievalResult is one similarity hit. Lower distance means closer.
type RetrievalResult struct {
	Content    string
	Context    string
	Source     string
	Collection string
	Distance   float64
}

// ChunkID derives a stable chunk identifier from normalized content and
// source reference. Identity is independent of processing order, so
// re-running ingestion after upstream reordering never corrupts the
// already-indexed set.
func ChunkID(content, sourceRef string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(content)))
	h.Write([]byte{0})
	h.Write([]byte(sourceRef))
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentID derives a document identity from its source path, same
// path always maps to the same document row.
func DocumentID(sourcePath string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourcePath))
}
