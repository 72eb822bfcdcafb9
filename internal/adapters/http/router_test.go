package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/history"
)

type serviceFake struct {
	answer  *domain.Answer
	err     error
	suggest string
	found   bool
	lastReq ports.AskRequest
}

func (s *serviceFake) Ask(_ context.Context, req ports.AskRequest) (*domain.Answer, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func (s *serviceFake) Suggest(string) (string, bool) { return s.suggest, s.found }

func (s *serviceFake) Chapters() []string {
	return []string{"Chapter 1200 – Appeal", "Chapter 2700 – Patent Terms and Extensions"}
}

func newTestRouter(service *serviceFake) (*Router, *history.Store) {
	store := history.NewStore(10)
	return NewRouter(service, store, nil, RouterConfig{}), store
}

func postAsk(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestAskEndpointSuccess(t *testing.T) {
	service := &serviceFake{answer: &domain.Answer{
		Text:     "the answer",
		Provider: "huggingface",
		Sources: []domain.Match{{
			Chapter: domain.Chapter{Label: "Chapter 2700 – Patent Terms and Extensions"},
			Text:    "passage",
			Score:   88,
		}},
	}}
	router, _ := newTestRouter(service)
	handler := router.Handler()

	res := postAsk(t, handler, `{"question":"what is pta?","chapters":["Chapter 2700 – Patent Terms and Extensions"],"strategy":"lexical","top_k":5}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}

	var answer domain.Answer
	if err := json.Unmarshal(res.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Text != "the answer" || len(answer.Sources) != 1 {
		t.Fatalf("unexpected answer %+v", answer)
	}
	if service.lastReq.TopK != 5 || service.lastReq.Strategy != "lexical" {
		t.Fatalf("request fields not forwarded: %+v", service.lastReq)
	}
}

func TestAskEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(&serviceFake{})
	handler := router.Handler()

	if res := postAsk(t, handler, `not json`); res.Code != http.StatusBadRequest {
		t.Fatalf("invalid json: expected 400, got %d", res.Code)
	}
	if res := postAsk(t, handler, `{"question":"  "}`); res.Code != http.StatusBadRequest {
		t.Fatalf("blank question: expected 400, got %d", res.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET ask: expected 405, got %d", res.Code)
	}
}

func TestAskEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("bad")), http.StatusBadRequest},
		{domain.WrapError(domain.ErrUnknownChapter, "ask", errors.New("nope")), http.StatusNotFound},
		{domain.WrapError(domain.ErrChapterRequired, "ask", errors.New("pick one")), http.StatusUnprocessableEntity},
		{domain.WrapError(domain.ErrNoMatch, "ask", errors.New("nothing")), http.StatusNotFound},
		{domain.WrapError(domain.ErrConfiguration, "ask", errors.New("no key")), http.StatusServiceUnavailable},
		{domain.WrapError(domain.ErrFetch, "ask", errors.New("503")), http.StatusBadGateway},
		{errors.New("mystery"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router, _ := newTestRouter(&serviceFake{err: tc.err})
		res := postAsk(t, router.Handler(), `{"question":"q"}`)
		if res.Code != tc.status {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.status, res.Code)
		}
	}
}

func TestAskEndpointProviderErrorDetail(t *testing.T) {
	providerErr := &domain.ProviderError{
		Provider:   "openrouter",
		Model:      "m",
		Kind:       domain.ProviderErrQuota,
		StatusCode: 402,
		Raw:        "insufficient credits",
	}
	router, _ := newTestRouter(&serviceFake{err: providerErr})

	res := postAsk(t, router.Handler(), `{"question":"q"}`)
	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["provider"] != "openrouter" || body["kind"] != "quota" || body["detail"] != "insufficient credits" {
		t.Fatalf("provider detail missing: %v", body)
	}
}

func TestChaptersEndpoint(t *testing.T) {
	router, _ := newTestRouter(&serviceFake{})
	req := httptest.NewRequest(http.MethodGet, "/v1/chapters", nil)
	res := httptest.NewRecorder()
	router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Chapters []string `json:"chapters"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Chapters) != 2 {
		t.Fatalf("unexpected chapters %v", body.Chapters)
	}
}

func TestSuggestEndpoint(t *testing.T) {
	router, _ := newTestRouter(&serviceFake{suggest: "Chapter 1200 – Appeal", found: true})
	handler := router.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/suggest?q=appeal+brief", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Chapter string `json:"chapter"`
		Found   bool   `json:"found"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Found || body.Chapter != "Chapter 1200 – Appeal" {
		t.Fatalf("unexpected suggestion %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/suggest", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", res.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	router, store := newTestRouter(&serviceFake{})
	handler := router.Handler()
	store.Append(domain.AnswerRecord{ID: "1", Question: "q1", Answer: "a1", CreatedAt: time.Now()})
	store.Append(domain.AnswerRecord{ID: "2", Question: "q2", Answer: "a2", CreatedAt: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Total   int                   `json:"total"`
		Records []domain.AnswerRecord `json:"records"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Total != 2 || len(body.Records) != 1 || body.Records[0].ID != "2" {
		t.Fatalf("unexpected history %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/history?limit=-1", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: expected 400, got %d", res.Code)
	}
}

func TestHistoryExportEndpoint(t *testing.T) {
	router, store := newTestRouter(&serviceFake{})
	handler := router.Handler()
	store.Append(domain.AnswerRecord{ID: "1", Question: "q1", Answer: "a1", CreatedAt: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/v1/history/export?format=markdown", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/markdown") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(res.Body.String(), "**Q:** q1") {
		t.Fatalf("markdown export missing entry:\n%s", res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/history/export?format=csv", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("bad format: expected 400, got %d", res.Code)
	}
}
