// Package llm routes prompts to external inference providers. The gateway
// tries the primary provider once and, on any failure, makes exactly one
// attempt against the fallback provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/resilience"
)

// GatewayMetrics is the subset of pipeline metrics the gateway reports to.
type GatewayMetrics interface {
	RecordProviderAttempt(provider, outcome string)
	RecordFallback()
}

type Gateway struct {
	primary  ports.LLMProvider
	fallback ports.LLMProvider
	executor *resilience.Executor
	logger   *slog.Logger
	metrics  GatewayMetrics
}

// NewGateway builds the two-provider gateway. The executor must be configured
// with a single retry attempt; recovery belongs to the fallback provider, not
// to retries against a failing one.
func NewGateway(
	primary ports.LLMProvider,
	fallback ports.LLMProvider,
	executor *resilience.Executor,
	logger *slog.Logger,
	metrics GatewayMetrics,
) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		primary:  primary,
		fallback: fallback,
		executor: executor,
		logger:   logger,
		metrics:  metrics,
	}
}

func (g *Gateway) Answer(ctx context.Context, prompt string) (domain.Generation, error) {
	text, primaryErr := g.attempt(ctx, g.primary, prompt)
	if primaryErr == nil {
		return domain.Generation{
			Text:     text,
			Provider: g.primary.Name(),
			Model:    g.primary.Model(),
		}, nil
	}

	g.logger.Warn("provider_fallback",
		"from", g.primary.Name(),
		"to", g.fallback.Name(),
		"error", primaryErr,
	)
	if g.metrics != nil {
		g.metrics.RecordFallback()
	}

	if err := ctx.Err(); err != nil {
		return domain.Generation{}, fmt.Errorf("%s failed and context closed before fallback: %w",
			g.primary.Name(), errors.Join(primaryErr, err))
	}

	text, fallbackErr := g.attempt(ctx, g.fallback, prompt)
	if fallbackErr == nil {
		return domain.Generation{
			Text:     text,
			Provider: g.fallback.Name(),
			Model:    g.fallback.Model(),
			FellBack: true,
		}, nil
	}

	return domain.Generation{}, fmt.Errorf("all providers failed: %w",
		errors.Join(primaryErr, fallbackErr))
}

func (g *Gateway) attempt(ctx context.Context, provider ports.LLMProvider, prompt string) (string, error) {
	var text string
	err := g.executor.Execute(ctx, "llm."+provider.Name(), func(ctx context.Context) error {
		out, genErr := provider.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		text = out
		return nil
	}, classifyProviderError)

	if g.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		g.metrics.RecordProviderAttempt(provider.Name(), outcome)
	}
	return text, err
}

// classifyProviderError never marks anything retryable; the breaker only
// records failures that look like provider health problems, not caller-side
// ones such as bad credentials or exhausted quota.
func classifyProviderError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Kind {
		case domain.ProviderErrNetwork, domain.ProviderErrStatus, domain.ProviderErrRateLimit:
			return resilience.ErrorClassification{RecordFailure: true}
		default:
			return resilience.ErrorClassification{}
		}
	}
	return resilience.ErrorClassification{}
}
