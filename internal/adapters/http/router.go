// Package httpadapter exposes the question pipeline over a small JSON API.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/history"
)

type RouterConfig struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	service        ports.QuestionService
	history        ports.HistoryStore
	metricsHandler http.Handler
	cfg            RouterConfig
}

func NewRouter(
	service ports.QuestionService,
	historyStore ports.HistoryStore,
	metricsHandler http.Handler,
	cfg RouterConfig,
) *Router {
	return &Router{
		service:        service,
		history:        historyStore,
		metricsHandler: metricsHandler,
		cfg:            cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chapters", rt.chapters)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/suggest", rt.suggest)
	mux.HandleFunc("/v1/history", rt.historyList)
	mux.HandleFunc("/v1/history/export", rt.historyExport)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}

	var handler http.Handler = mux
	if rt.cfg.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chapters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": rt.service.Chapters()})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Question string   `json:"question"`
		Chapters []string `json:"chapters"`
		Strategy string   `json:"strategy"`
		TopK     int      `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	answer, err := rt.service.Ask(r.Context(), ports.AskRequest{
		Question: req.Question,
		Chapters: req.Chapters,
		Strategy: req.Strategy,
		TopK:     req.TopK,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}

	chapter, found := rt.service.Suggest(query)
	writeJSON(w, http.StatusOK, map[string]any{"chapter": chapter, "found": found})
}

func (rt *Router) historyList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	records := rt.history.Recent(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   rt.history.Len(),
		"records": records,
	})
}

func (rt *Router) historyExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	records := rt.history.Recent(0)
	switch format := r.URL.Query().Get("format"); format {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="history.txt"`)
		_, _ = w.Write([]byte(history.RenderText(records)))
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="history.md"`)
		_, _ = w.Write([]byte(history.RenderMarkdown(records)))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be text or markdown"})
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		body["provider"] = provErr.Provider
		body["kind"] = string(provErr.Kind)
		if provErr.Raw != "" {
			body["detail"] = provErr.Raw
		}
	}
	writeJSON(w, mapErrorToHTTPStatus(err), body)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
