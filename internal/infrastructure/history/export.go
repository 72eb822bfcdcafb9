package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

// RenderText renders records oldest-first as a plain-text transcript.
func RenderText(records []domain.AnswerRecord) string {
	var b strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		fmt.Fprintf(&b, "[%s]\n", rec.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "Q: %s\n", rec.Question)
		fmt.Fprintf(&b, "A: %s\n\n", rec.Answer)
	}
	return b.String()
}

// RenderMarkdown renders records oldest-first as a markdown transcript.
func RenderMarkdown(records []domain.AnswerRecord) string {
	var b strings.Builder
	b.WriteString("# Session History\n\n")
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		fmt.Fprintf(&b, "## %s\n\n", rec.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "**Q:** %s\n\n", rec.Question)
		fmt.Fprintf(&b, "**A:** %s\n\n", rec.Answer)
	}
	return b.String()
}
