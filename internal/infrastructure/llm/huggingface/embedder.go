package huggingface

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

// Embedder calls the feature-extraction pipeline of a sentence-transformers
// model. The pipeline returns one vector per input text.
type Embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.client.apiKey == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "huggingface.embed",
			errors.New("api key not set"))
	}

	payload := map[string]any{
		"inputs": texts,
	}

	var vectors [][]float32
	url := e.client.baseURL + "/pipeline/feature-extraction/" + e.model
	if err := e.client.postJSON(ctx, url, payload, &vectors); err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, e.client.malformed(
			fmt.Errorf("vectors/texts mismatch: %d/%d", len(vectors), len(texts)))
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, e.client.malformed(errors.New("empty embedding result"))
	}
	return vectors[0], nil
}
