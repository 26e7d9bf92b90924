package agent

import (
	"fmt"
	"regexp"
)

// Best-effort annotation of legal references mentioned in an answer.
// Extracted references are never validated against the indexed corpus.
var sectionPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"Section", regexp.MustCompile(`(?i)Section (\d+[A-Z]?)`)},
	{"Article", regexp.MustCompile(`(?i)Article (\d+[A-Z]?)`)},
	{"Chapter", regexp.MustCompile(`(?i)Chapter (\d+)`)},
	{"Part", regexp.MustCompile(`Part ([IVX]+)`)},
	{"Rule", regexp.MustCompile(`(?i)Rule (\d+)`)},
}

// ExtractSections pulls legal section references out of generated text,
// dropping duplicates while keeping first-seen order.
func ExtractSections(text string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, p := range sectionPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			ref := fmt.Sprintf("%s %s", p.label, m[1])
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}
