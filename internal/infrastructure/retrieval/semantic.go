package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
)

// EmbedCacheMetrics is the subset of pipeline metrics the embedding cache
// reports to.
type EmbedCacheMetrics interface {
	RecordEmbeddingCache(hit bool)
}

// SemanticRanker scores passages by cosine similarity between a shared
// embedding of the query and of each passage. Passage embeddings are cached
// per (chapter, passage content) because embedding is the dominant cost of
// this strategy.
type SemanticRanker struct {
	embedder ports.Embedder
	metrics  EmbedCacheMetrics

	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewSemanticRanker(embedder ports.Embedder, metrics EmbedCacheMetrics) *SemanticRanker {
	return &SemanticRanker{
		embedder: embedder,
		metrics:  metrics,
		vectors:  make(map[string][]float32),
	}
}

func (r *SemanticRanker) Rank(ctx context.Context, query string, docs []domain.ChapterPassages, topK int) ([]domain.Match, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	perChapter := make([][]domain.Match, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Passages) == 0 {
			continue
		}
		vectors, err := r.passageVectors(ctx, doc)
		if err != nil {
			return nil, err
		}

		matches := make([]domain.Match, 0, len(doc.Passages))
		for idx, passage := range doc.Passages {
			matches = append(matches, domain.Match{
				Chapter:      doc.Chapter,
				PassageIndex: idx,
				Text:         passage,
				Score:        cosineSimilarity(queryVector, vectors[idx]),
			})
		}
		perChapter = append(perChapter, matches)
	}
	return mergeTopK(perChapter, topK), nil
}

func (r *SemanticRanker) passageVectors(ctx context.Context, doc domain.ChapterPassages) ([][]float32, error) {
	vectors := make([][]float32, len(doc.Passages))
	missing := make([]int, 0, len(doc.Passages))

	r.mu.RLock()
	for idx, passage := range doc.Passages {
		if v, ok := r.vectors[embedKey(doc.Chapter.Label, passage)]; ok {
			vectors[idx] = v
		} else {
			missing = append(missing, idx)
		}
	}
	r.mu.RUnlock()

	if r.metrics != nil {
		hits := len(doc.Passages) - len(missing)
		for i := 0; i < hits; i++ {
			r.metrics.RecordEmbeddingCache(true)
		}
		for range missing {
			r.metrics.RecordEmbeddingCache(false)
		}
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	texts := make([]string, len(missing))
	for i, idx := range missing {
		texts[i] = doc.Passages[idx]
	}
	embedded, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed passages for %s: %w", doc.Chapter.Label, err)
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("embed passages for %s: vectors/passages mismatch: %d/%d",
			doc.Chapter.Label, len(embedded), len(missing))
	}

	r.mu.Lock()
	for i, idx := range missing {
		vectors[idx] = embedded[i]
		r.vectors[embedKey(doc.Chapter.Label, doc.Passages[idx])] = embedded[i]
	}
	r.mu.Unlock()

	return vectors, nil
}

func embedKey(chapter, passage string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(passage))
	return fmt.Sprintf("%s#%x", chapter, h.Sum64())
}

// cosineSimilarity over possibly unnormalized vectors; 0 when either side is
// degenerate.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
