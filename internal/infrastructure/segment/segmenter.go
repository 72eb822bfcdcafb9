package segment

import (
	"regexp"
	"strings"
)

// DefaultMinPassageChars filters headers, footers and page artifacts that
// survive PDF extraction as tiny fragments.
const DefaultMinPassageChars = 100

var paragraphBoundary = regexp.MustCompile(`\n[ \t\r]*\n[\s]*`)

// Segmenter splits extracted document text into paragraph-sized passages on
// blank lines. Output order follows document order.
type Segmenter struct {
	minChars int
}

func New(minChars int) *Segmenter {
	if minChars <= 0 {
		minChars = DefaultMinPassageChars
	}
	return &Segmenter{minChars: minChars}
}

func (s *Segmenter) Split(text string) []string {
	parts := paragraphBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) < s.minChars {
			continue
		}
		out = append(out, part)
	}
	return out
}
