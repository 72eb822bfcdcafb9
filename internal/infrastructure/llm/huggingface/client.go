// Package huggingface talks to the Hugging Face inference API: text
// generation for answers and the feature-extraction pipeline for embeddings.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

const (
	// ProviderName identifies this client in gateway results and metrics.
	ProviderName = "huggingface"

	maxRawBody = 2048
)

type Client struct {
	baseURL      string
	apiKey       string
	model        string
	maxNewTokens int
	httpClient   *http.Client
}

func New(baseURL, apiKey, model string, maxNewTokens int, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        model,
		maxNewTokens: maxNewTokens,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.WrapError(domain.ErrConfiguration, "huggingface.generate",
			errors.New("api key not set"))
	}

	payload := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens": c.maxNewTokens,
		},
	}

	var response []struct {
		GeneratedText string `json:"generated_text"`
	}
	url := c.baseURL + "/models/" + c.model
	if err := c.postJSON(ctx, url, payload, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", c.malformed(errors.New("empty generation array"))
	}
	return extractAnswer(response[0].GeneratedText), nil
}

// extractAnswer drops the echoed prompt: the model returns the full prompt
// followed by the completion, so everything after the final "Answer:" marker
// is the answer itself.
func extractAnswer(generated string) string {
	const marker = "Answer:"
	if idx := strings.LastIndex(generated, marker); idx >= 0 {
		return strings.TrimSpace(generated[idx+len(marker):])
	}
	return strings.TrimSpace(generated)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.malformed(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return c.malformed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ProviderError{
			Provider: ProviderName,
			Model:    c.model,
			Kind:     domain.ProviderErrNetwork,
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.malformed(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxRawBody))

	kind := domain.ProviderErrStatus
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ProviderErrAuth
	case http.StatusTooManyRequests:
		kind = domain.ProviderErrRateLimit
	case http.StatusPaymentRequired:
		kind = domain.ProviderErrQuota
	}

	return &domain.ProviderError{
		Provider:   ProviderName,
		Model:      c.model,
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Raw:        strings.TrimSpace(string(raw)),
	}
}

func (c *Client) malformed(err error) error {
	return &domain.ProviderError{
		Provider: ProviderName,
		Model:    c.model,
		Kind:     domain.ProviderErrMalformed,
		Err:      err,
	}
}
