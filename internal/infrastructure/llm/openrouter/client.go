// Package openrouter is the fallback inference client, speaking the
// chat-completions wire format.
package openrouter

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
	ProviderName = "openrouter"

	maxRawBody = 2048
)

type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(endpoint, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.WrapError(domain.ErrConfiguration, "openrouter.generate",
			errors.New("api key not set"))
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", c.malformed(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.malformed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{
			Provider: ProviderName,
			Model:    c.model,
			Kind:     domain.ProviderErrNetwork,
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", c.malformed(fmt.Errorf("decode response: %w", err))
	}
	// Some upstream failures come back as 200 with an error object.
	if response.Error != nil {
		return "", c.malformed(errors.New(response.Error.Message))
	}
	if len(response.Choices) == 0 {
		return "", c.malformed(errors.New("empty choices array"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxRawBody))

	kind := domain.ProviderErrStatus
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ProviderErrAuth
	case http.StatusPaymentRequired:
		kind = domain.ProviderErrQuota
	case http.StatusTooManyRequests:
		kind = domain.ProviderErrRateLimit
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
