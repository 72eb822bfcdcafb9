package docsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/resilience"
)

type fetchStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *fetchStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("document source status: %s", e.Status)
	}
	return fmt.Sprintf("document source status: %s: %s", e.Status, e.Body)
}

func classifyFetchError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var statusErr *fetchStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
