package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

// LexicalRanker scores passages with a token-set ratio: order-insensitive,
// case-insensitive comparison of the query's and passage's token sets on a
// 0–100 scale.
type LexicalRanker struct{}

func NewLexicalRanker() *LexicalRanker { return &LexicalRanker{} }

func (r *LexicalRanker) Rank(_ context.Context, query string, docs []domain.ChapterPassages, topK int) ([]domain.Match, error) {
	perChapter := make([][]domain.Match, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Passages) == 0 {
			continue
		}
		matches := make([]domain.Match, 0, len(doc.Passages))
		for idx, passage := range doc.Passages {
			matches = append(matches, domain.Match{
				Chapter:      doc.Chapter,
				PassageIndex: idx,
				Text:         passage,
				Score:        tokenSetRatio(query, passage),
			})
		}
		perChapter = append(perChapter, matches)
	}
	return mergeTopK(perChapter, topK), nil
}

// tokenSetRatio compares the sorted token intersection against each side's
// sorted full token string and returns the best pairwise similarity, scaled
// to 0–100.
func tokenSetRatio(a, b string) float64 {
	setA := toTokenSet(a)
	setB := toTokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for token := range setA {
		if _, ok := setB[token]; ok {
			common = append(common, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if _, ok := setA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := joinNonEmpty(base, strings.Join(onlyA, " "))
	withB := joinNonEmpty(base, strings.Join(onlyB, " "))

	score := similarity(base, withA)
	if s := similarity(base, withB); s > score {
		score = s
	}
	if s := similarity(withA, withB); s > score {
		score = s
	}
	return score
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// similarity is the normalized Levenshtein ratio on a 0–100 scale.
func similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein(a, b)
	return 100 * float64(longest-dist) / float64(longest)
}

func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
