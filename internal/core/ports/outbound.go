package ports

import (
	"context"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

// ChapterRegistry maps chapter labels to source PDF URLs. Read-only after
// construction.
type ChapterRegistry interface {
	Resolve(label string) (string, error)
	Labels() []string
}

// ChapterDetector suggests a chapter from keywords found in the query. A miss
// is guidance for the user, not an error.
type ChapterDetector interface {
	Detect(query string) (string, bool)
}

// DocumentSource resolves a chapter URL to its extracted text. Implementations
// cache per URL for their lifetime; repeated calls must not re-fetch.
type DocumentSource interface {
	Text(ctx context.Context, url string) (string, error)
}

// TextExtractor pulls plain text out of raw document bytes.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// TextCacheStore is an optional second cache level for extracted text.
type TextCacheStore interface {
	Load(key string) (string, bool)
	Store(key, text string) error
}

// Segmenter splits extracted text into candidate passages.
type Segmenter interface {
	Split(text string) []string
}

// Ranker scores candidate passages against a query and returns the top
// matches, globally sorted by descending score.
type Ranker interface {
	Rank(ctx context.Context, query string, docs []domain.ChapterPassages, topK int) ([]domain.Match, error)
}

// Embedder builds vectors for passages and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider is one external inference service with its own wire contract.
type LLMProvider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnswerGateway executes a prompt against the primary provider with automatic
// fallback to the secondary one.
type AnswerGateway interface {
	Answer(ctx context.Context, prompt string) (domain.Generation, error)
}

// HistoryStore keeps the bounded in-memory session history.
type HistoryStore interface {
	Append(rec domain.AnswerRecord)
	Recent(n int) []domain.AnswerRecord
	Len() int
}
