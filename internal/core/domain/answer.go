package domain

import "time"

// Generation is the normalized result of one successful LLM gateway call.
type Generation struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	FellBack bool   `json:"fell_back"`
}

// Answer is the pipeline result surfaced to the presentation layer: the
// model's text plus the exact source passages that were sent as context.
type Answer struct {
	Text             string   `json:"text"`
	Sources          []Match  `json:"sources"`
	Provider         string   `json:"provider"`
	Model            string   `json:"model"`
	FellBack         bool     `json:"fell_back"`
	SuggestedChapter string   `json:"suggested_chapter,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// AnswerRecord is one entry of the in-memory session history.
type AnswerRecord struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
