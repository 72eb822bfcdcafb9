package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
)

// PipelineObserver receives per-question pipeline metrics.
type PipelineObserver interface {
	RecordQuestion(strategy, outcome string, sourceCount int, duration time.Duration)
}

// AskService is the retrieval-and-answer pipeline: resolve chapters, fetch
// and segment their text, rank passages against the question, build a
// bounded prompt and hand it to the provider gateway.
type AskService struct {
	registry  ports.ChapterRegistry
	detector  ports.ChapterDetector
	source    ports.DocumentSource
	segmenter ports.Segmenter
	rankers   map[string]ports.Ranker
	gateway   ports.AnswerGateway
	history   ports.HistoryStore
	observer  PipelineObserver

	defaultStrategy string
	defaultTopK     int
	maxContextChars int

	// generation counts started asks; an ask whose generation is stale by
	// the time it finishes is not recorded as the latest history entry.
	generation atomic.Uint64
}

type AskServiceParams struct {
	Registry  ports.ChapterRegistry
	Detector  ports.ChapterDetector
	Source    ports.DocumentSource
	Segmenter ports.Segmenter
	Rankers   map[string]ports.Ranker
	Gateway   ports.AnswerGateway
	History   ports.HistoryStore
	Observer  PipelineObserver

	DefaultStrategy string
	DefaultTopK     int
	MaxContextChars int
}

func NewAskService(p AskServiceParams) *AskService {
	if p.DefaultTopK <= 0 {
		p.DefaultTopK = 3
	}
	if p.MaxContextChars <= 0 {
		p.MaxContextChars = DefaultMaxContextChars
	}
	return &AskService{
		registry:        p.Registry,
		detector:        p.Detector,
		source:          p.Source,
		segmenter:       p.Segmenter,
		rankers:         p.Rankers,
		gateway:         p.Gateway,
		history:         p.History,
		observer:        p.Observer,
		defaultStrategy: p.DefaultStrategy,
		defaultTopK:     p.DefaultTopK,
		maxContextChars: p.MaxContextChars,
	}
}

func (s *AskService) Ask(ctx context.Context, req ports.AskRequest) (*domain.Answer, error) {
	started := time.Now()
	strategy := s.strategyFor(req)

	answer, err := s.ask(ctx, req, strategy, started)

	if s.observer != nil {
		outcome := "success"
		sources := 0
		if err != nil {
			outcome = "error"
		} else {
			sources = len(answer.Sources)
		}
		s.observer.RecordQuestion(strategy, outcome, sources, time.Since(started))
	}
	return answer, err
}

func (s *AskService) ask(ctx context.Context, req ports.AskRequest, strategy string, started time.Time) (*domain.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is empty"))
	}

	ranker, ok := s.rankers[strategy]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask",
			fmt.Errorf("unknown retrieval strategy %q", strategy))
	}

	myGeneration := s.generation.Add(1)

	chapters := req.Chapters
	var suggested string
	if len(chapters) == 0 {
		label, found := s.detector.Detect(question)
		if !found {
			return nil, domain.WrapError(domain.ErrChapterRequired, "ask",
				errors.New("no chapter matched the question keywords"))
		}
		suggested = label
		chapters = []string{label}
	}

	docs, warnings, err := s.loadChapters(ctx, chapters)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}
	matches, err := ranker.Rank(ctx, question, docs, topK)
	if err != nil {
		return nil, fmt.Errorf("rank passages: %w", err)
	}
	if len(matches) == 0 {
		return nil, domain.WrapError(domain.ErrNoMatch, "ask",
			errors.New("no passage scored against the question"))
	}

	prompt, used := buildPrompt(question, matches, s.maxContextChars)
	generation, err := s.gateway.Answer(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	// Record only if no newer ask started meanwhile. The stale answer still
	// goes back to its caller.
	if s.history != nil && s.generation.Load() == myGeneration {
		s.history.Append(domain.AnswerRecord{
			ID:        uuid.NewString(),
			Question:  question,
			Answer:    generation.Text,
			CreatedAt: started,
		})
	}

	return &domain.Answer{
		Text:             generation.Text,
		Sources:          used,
		Provider:         generation.Provider,
		Model:            generation.Model,
		FellBack:         generation.FellBack,
		SuggestedChapter: suggested,
		Warnings:         warnings,
	}, nil
}

// loadChapters resolves, fetches and segments every requested chapter. An
// unknown label fails the request; a fetch or parse failure becomes a warning
// unless every chapter failed.
func (s *AskService) loadChapters(ctx context.Context, labels []string) ([]domain.ChapterPassages, []string, error) {
	docs := make([]domain.ChapterPassages, 0, len(labels))
	var warnings []string

	for _, label := range labels {
		url, err := s.registry.Resolve(label)
		if err != nil {
			return nil, nil, err
		}

		text, err := s.source.Text(ctx, url)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", label, err))
			continue
		}

		docs = append(docs, domain.ChapterPassages{
			Chapter:  domain.Chapter{Label: label, URL: url},
			Passages: s.segmenter.Split(text),
		})
	}

	if len(docs) == 0 {
		return nil, nil, domain.WrapError(domain.ErrFetch, "ask",
			fmt.Errorf("every chapter failed to load: %s", strings.Join(warnings, "; ")))
	}
	return docs, warnings, nil
}

func (s *AskService) strategyFor(req ports.AskRequest) string {
	if req.Strategy != "" {
		return req.Strategy
	}
	return s.defaultStrategy
}

func (s *AskService) Suggest(query string) (string, bool) {
	return s.detector.Detect(query)
}

func (s *AskService) Chapters() []string {
	return s.registry.Labels()
}
