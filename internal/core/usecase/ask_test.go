package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
)

type registryFake struct {
	urls map[string]string
}

func (r *registryFake) Resolve(label string) (string, error) {
	url, ok := r.urls[label]
	if !ok {
		return "", domain.WrapError(domain.ErrUnknownChapter, "registry.resolve", errors.New(label))
	}
	return url, nil
}

func (r *registryFake) Labels() []string {
	out := make([]string, 0, len(r.urls))
	for label := range r.urls {
		out = append(out, label)
	}
	return out
}

type detectorFake struct {
	label string
	found bool
}

func (d *detectorFake) Detect(string) (string, bool) { return d.label, d.found }

type sourceFake struct {
	texts map[string]string
	errs  map[string]error
}

func (s *sourceFake) Text(_ context.Context, url string) (string, error) {
	if err, ok := s.errs[url]; ok {
		return "", err
	}
	return s.texts[url], nil
}

type segmenterFake struct{}

func (segmenterFake) Split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "|")
}

type rankerFake struct {
	matches []domain.Match
	err     error
	calls   int
}

func (r *rankerFake) Rank(_ context.Context, _ string, docs []domain.ChapterPassages, _ int) ([]domain.Match, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.matches != nil {
		return r.matches, nil
	}
	var out []domain.Match
	for _, doc := range docs {
		for idx, passage := range doc.Passages {
			out = append(out, domain.Match{Chapter: doc.Chapter, PassageIndex: idx, Text: passage, Score: 50})
		}
	}
	return out, nil
}

type gatewayFake struct {
	mu       sync.Mutex
	prompts  []string
	generate func(prompt string) (domain.Generation, error)
}

func (g *gatewayFake) Answer(_ context.Context, prompt string) (domain.Generation, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.generate != nil {
		return g.generate(prompt)
	}
	return domain.Generation{Text: "generated answer", Provider: "huggingface", Model: "hf/model"}, nil
}

type historyFake struct {
	mu      sync.Mutex
	records []domain.AnswerRecord
}

func (h *historyFake) Append(rec domain.AnswerRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
}

func (h *historyFake) Recent(int) []domain.AnswerRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.AnswerRecord(nil), h.records...)
}

func (h *historyFake) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

type serviceFixture struct {
	service *AskService
	ranker  *rankerFake
	gateway *gatewayFake
	history *historyFake
}

func newFixture(detector *detectorFake, source *sourceFake) *serviceFixture {
	ranker := &rankerFake{}
	gateway := &gatewayFake{}
	history := &historyFake{}
	service := NewAskService(AskServiceParams{
		Registry: &registryFake{urls: map[string]string{
			"Chapter 2700 – Patent Terms and Extensions": "https://example.com/2700.pdf",
			"Chapter 1200 – Appeal":                      "https://example.com/1200.pdf",
		}},
		Detector:        detector,
		Source:          source,
		Segmenter:       segmenterFake{},
		Rankers:         map[string]ports.Ranker{"lexical": ranker},
		Gateway:         gateway,
		History:         history,
		DefaultStrategy: "lexical",
		DefaultTopK:     3,
		MaxContextChars: 12000,
	})
	return &serviceFixture{service: service, ranker: ranker, gateway: gateway, history: history}
}

func defaultSource() *sourceFake {
	return &sourceFake{texts: map[string]string{
		"https://example.com/2700.pdf": "patent term adjustment passage|another passage",
		"https://example.com/1200.pdf": "appeal brief passage",
	}}
}

func TestAskExplicitChapter(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())

	answer, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "what is patent term adjustment?",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions"},
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "generated answer" || answer.Provider != "huggingface" {
		t.Fatalf("unexpected answer %+v", answer)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	if answer.SuggestedChapter != "" {
		t.Fatalf("no suggestion expected for explicit chapters")
	}
	if f.history.Len() != 1 {
		t.Fatalf("history not recorded")
	}
	if len(f.gateway.prompts) != 1 || !strings.Contains(f.gateway.prompts[0], "patent term adjustment passage") {
		t.Fatalf("prompt missing ranked passage: %v", f.gateway.prompts)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())

	_, err := f.service.Ask(context.Background(), ports.AskRequest{Question: "   "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAskAutoDetectsChapter(t *testing.T) {
	detector := &detectorFake{label: "Chapter 2700 – Patent Terms and Extensions", found: true}
	f := newFixture(detector, defaultSource())

	answer, err := f.service.Ask(context.Background(), ports.AskRequest{Question: "adjustment rules?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.SuggestedChapter != detector.label {
		t.Fatalf("suggested chapter not surfaced: %+v", answer)
	}
}

func TestAskDetectorMissRequiresChapter(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())

	_, err := f.service.Ask(context.Background(), ports.AskRequest{Question: "something unmatched"})
	if !domain.IsKind(err, domain.ErrChapterRequired) {
		t.Fatalf("expected chapter-required error, got %v", err)
	}
}

func TestAskUnknownChapterFails(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())

	_, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 9999 – Unknown"},
	})
	if !domain.IsKind(err, domain.ErrUnknownChapter) {
		t.Fatalf("expected unknown chapter, got %v", err)
	}
	if len(f.gateway.prompts) != 0 {
		t.Fatalf("gateway must not be called")
	}
}

func TestAskPartialFetchFailureBecomesWarning(t *testing.T) {
	source := defaultSource()
	source.errs = map[string]error{
		"https://example.com/1200.pdf": domain.WrapError(domain.ErrFetch, "docsource", errors.New("status 503")),
	}
	f := newFixture(&detectorFake{}, source)

	answer, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions", "Chapter 1200 – Appeal"},
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(answer.Warnings) != 1 || !strings.Contains(answer.Warnings[0], "Chapter 1200") {
		t.Fatalf("expected one warning for the failed chapter, got %v", answer.Warnings)
	}
}

func TestAskAllChaptersFailed(t *testing.T) {
	source := &sourceFake{errs: map[string]error{
		"https://example.com/2700.pdf": domain.WrapError(domain.ErrFetch, "docsource", errors.New("status 503")),
	}}
	f := newFixture(&detectorFake{}, source)

	_, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions"},
	})
	if !domain.IsKind(err, domain.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestAskNoMatchSkipsGateway(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())
	f.ranker.matches = []domain.Match{}

	_, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions"},
	})
	if !domain.IsKind(err, domain.ErrNoMatch) {
		t.Fatalf("expected no-match error, got %v", err)
	}
	if len(f.gateway.prompts) != 0 {
		t.Fatalf("gateway must not be called without matches")
	}
}

func TestAskUnknownStrategy(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())

	_, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions"},
		Strategy: "hybrid",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown strategy, got %v", err)
	}
	if f.ranker.calls != 0 {
		t.Fatalf("ranker must not run for unknown strategy")
	}
}

func TestAskGatewayErrorPropagates(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())
	f.gateway.generate = func(string) (domain.Generation, error) {
		return domain.Generation{}, &domain.ProviderError{Provider: "huggingface", Kind: domain.ProviderErrStatus}
	}

	_, err := f.service.Ask(context.Background(), ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions"},
	})
	if !domain.IsKind(err, domain.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if f.history.Len() != 0 {
		t.Fatalf("failed asks must not enter history")
	}
}

func TestAskStaleAnswerNotRecorded(t *testing.T) {
	f := newFixture(&detectorFake{}, defaultSource())

	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var once sync.Once
	f.gateway.generate = func(string) (domain.Generation, error) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(firstEntered)
			<-releaseFirst
			return domain.Generation{Text: "stale answer", Provider: "huggingface"}, nil
		}
		return domain.Generation{Text: "fresh answer", Provider: "huggingface"}, nil
	}

	req := ports.AskRequest{
		Question: "q",
		Chapters: []string{"Chapter 2700 – Patent Terms and Extensions"},
	}

	done := make(chan *domain.Answer, 1)
	go func() {
		answer, err := f.service.Ask(context.Background(), req)
		if err != nil {
			t.Errorf("first Ask() error = %v", err)
		}
		done <- answer
	}()

	<-firstEntered
	if _, err := f.service.Ask(context.Background(), req); err != nil {
		t.Fatalf("second Ask() error = %v", err)
	}
	close(releaseFirst)

	stale := <-done
	if stale == nil || stale.Text != "stale answer" {
		t.Fatalf("stale ask must still answer its caller, got %+v", stale)
	}
	if f.history.Len() != 1 {
		t.Fatalf("expected only the fresh answer in history, got %d records", f.history.Len())
	}
	if f.history.Recent(1)[0].Answer != "fresh answer" {
		t.Fatalf("wrong record retained: %+v", f.history.Recent(1))
	}
}
