package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownChapter  = errors.New("unknown chapter")
	ErrChapterRequired = errors.New("chapter selection required")
	ErrFetch           = errors.New("document fetch failed")
	ErrParse           = errors.New("document parse failed")
	ErrNoMatch         = errors.New("no matching passages")
	ErrConfiguration   = errors.New("missing configuration")
	ErrProvider        = errors.New("provider failure")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ProviderErrorKind distinguishes provider failure modes worth surfacing
// separately to the user.
type ProviderErrorKind string

const (
	ProviderErrAuth      ProviderErrorKind = "auth"
	ProviderErrRateLimit ProviderErrorKind = "rate_limit"
	ProviderErrQuota     ProviderErrorKind = "quota"
	ProviderErrMalformed ProviderErrorKind = "malformed_response"
	ProviderErrNetwork   ProviderErrorKind = "network"
	ProviderErrStatus    ProviderErrorKind = "status"
)

// ProviderError normalizes every provider-specific failure shape. Raw holds
// the response body truncated to a bounded length; the pipeline surfaces it
// verbatim to aid diagnosis.
type ProviderError struct {
	Provider   string
	Model      string
	Kind       ProviderErrorKind
	StatusCode int
	Raw        string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s", e.Provider, e.Model, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if raw := strings.TrimSpace(e.Raw); raw != "" {
		fmt.Fprintf(&b, ": %s", raw)
	}
	return b.String()
}

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func (e *ProviderError) Unwrap() error { return e.Err }
