package domain

// Chapter is one addressable unit of the MPEP corpus: a stable display label
// backed by a single source PDF. Loaded once at startup and never mutated.
type Chapter struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ChapterPassages carries one chapter's candidate passages in document order.
// The order is derived from extraction and must stay stable so ranking ties
// are reproducible.
type ChapterPassages struct {
	Chapter  Chapter
	Passages []string
}

// Match is a scored (chapter, passage) pair produced by a ranker. Scores are
// comparable only within the ranking invocation that produced them; lexical
// and semantic scores are never mixed in one list.
type Match struct {
	Chapter      Chapter `json:"chapter"`
	PassageIndex int     `json:"passage_index"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
}
