package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

const (
	StrategyLexical  = "lexical"
	StrategySemantic = "semantic"
)

// mergeTopK keeps at most topK matches per chapter, then merges all chapters
// into one list sorted by descending score. Matches arrive in (chapter order,
// passage order); the stable sort keeps that order for ties, so identical
// inputs always rank identically.
func mergeTopK(perChapter [][]domain.Match, topK int) []domain.Match {
	out := make([]domain.Match, 0, topK*len(perChapter))
	for _, matches := range perChapter {
		matches = topKByScore(matches, topK)
		out = append(out, matches...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

func topKByScore(matches []domain.Match, topK int) []domain.Match {
	sorted := make([]domain.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if topK > 0 && len(sorted) > topK {
		sorted = sorted[:topK]
	}
	return sorted
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func toTokenSet(s string) map[string]struct{} {
	tokens := tokenize(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}
