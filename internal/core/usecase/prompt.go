package usecase

import (
	"fmt"
	"strings"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

const promptTemplate = `You are a USPTO patent examination assistant. Answer the question clearly using only the MPEP excerpts below, citing the chapter each point relies on. If the excerpts do not contain the answer, say so.

Context:
%s

Question: %s

Answer:`

// DefaultMaxContextChars bounds the rendered prompt so it stays inside the
// models' context windows with headroom for the completion.
const DefaultMaxContextChars = 12000

// buildPrompt renders the final prompt and returns it together with the
// matches that made it in. Matches arrive ranked; when the prompt exceeds the
// budget the lowest-ranked matches are dropped whole, never split. The best
// match is always kept, even if it alone exceeds the budget, so the model
// always sees at least one excerpt.
func buildPrompt(question string, matches []domain.Match, maxContextChars int) (string, []domain.Match) {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}

	kept := matches
	for len(kept) > 1 {
		prompt := renderPrompt(question, kept)
		if len(prompt) <= maxContextChars {
			return prompt, kept
		}
		kept = kept[:len(kept)-1]
	}
	return renderPrompt(question, kept), kept
}

func renderPrompt(question string, matches []domain.Match) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m.Chapter.Label+"\n"+m.Text)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(blocks, "\n\n"), question)
}
