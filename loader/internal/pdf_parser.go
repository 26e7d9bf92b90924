package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"legalrag/types"
)

// PDFParser extracts page text from PDF statutes. pdfcpu decodes the
// page content streams to disk; the show-text operators are then scanned
// out of each stream. One chunk is emitted per page with text.
type PDFParser struct {
	conf *model.Configuration
}

func NewPDFParser() *PDFParser {
	return &PDFParser{conf: model.NewDefaultConfiguration()}
}

func (p *PDFParser) Supports(ext string) bool {
	return ext == ".pdf"
}

func (p *PDFParser) Format() types.SourceFormat {
	return types.FormatPDF
}

func (p *PDFParser) Parse(path string) ([]types.TextChunk, error) {
	if _, err := api.PageCountFile(path); err != nil {
		return nil, fmt.Errorf("page count %s: %w", path, err)
	}

	outDir, err := os.MkdirTemp("", "legalrag-pdf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, []string{"1-"}, p.conf); err != nil {
		return nil, fmt.Errorf("extract content %s: %w", path, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return pageNumber(names[i]) < pageNumber(names[j])
	})

	title := pdfTitle(path)
	var chunks []types.TextChunk
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			return nil, err
		}

		body := CleanText(contentStreamText(string(data)))
		if body == "" {
			continue
		}

		page := pageNumber(name)
		if page == 0 {
			page = i + 1
		}
		contextPath := []string{title, fmt.Sprintf("Page %d", page)}
		chunks = append(chunks, types.TextChunk{
			Content:     chunkContent(contextPath, body),
			ContextPath: contextPath,
			SourceRef:   path,
		})
	}
	return chunks, nil
}

var (
	pageNumRe = regexp.MustCompile(`(\d+)\D*$`)
	showOpRe  = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")|\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)
	literalRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

// contentStreamText pulls the literal strings shown by Tj/TJ operators
// out of a decoded PDF content stream. This is a textual scan, not a
// full interpreter: positioning is ignored, strings are joined in stream
// order. Both operators are matched by one pass so a page mixing them
// keeps its reading order.
func contentStreamText(stream string) string {
	var parts []string
	for _, idx := range showOpRe.FindAllStringSubmatchIndex(stream, -1) {
		switch {
		case idx[2] >= 0:
			parts = append(parts, unescapePDFString(stream[idx[2]:idx[3]]))
		case idx[4] >= 0:
			var run strings.Builder
			for _, lit := range literalRe.FindAllStringSubmatch(stream[idx[4]:idx[5]], -1) {
				run.WriteString(unescapePDFString(lit[1]))
			}
			if run.Len() > 0 {
				parts = append(parts, run.String())
			}
		}
	}
	return strings.Join(parts, " ")
}

func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\r`, "", `\t`, " ")
	return replacer.Replace(s)
}

func pageNumber(name string) int {
	m := pageNumRe.FindStringSubmatch(strings.TrimSuffix(name, filepath.Ext(name)))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// pdfTitle turns a file name into a readable title.
func pdfTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
