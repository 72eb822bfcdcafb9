package ports

import (
	"context"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

// AskRequest carries one user question through the pipeline. Chapters and
// Strategy are optional; empty values fall back to auto-detection and the
// configured default strategy.
type AskRequest struct {
	Question string
	Chapters []string
	Strategy string
	TopK     int
}

// QuestionService is the inbound contract for the retrieval-and-answer
// pipeline.
type QuestionService interface {
	Ask(ctx context.Context, req AskRequest) (*domain.Answer, error)
	Suggest(query string) (string, bool)
	Chapters() []string
}
