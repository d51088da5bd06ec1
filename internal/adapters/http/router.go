// Package httpadapter exposes the conversational core over a small JSON API.
// A chat transport (Telegram, web widget) drives these endpoints on behalf of
// its users; user_id is whatever stable id the transport has.
package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
	"github.com/vlad-alaukhov/Docibot/internal/core/ports"
	"github.com/vlad-alaukhov/Docibot/internal/observability/metrics"
)

type Router struct {
	assistant ports.Assistant
	metrics   *metrics.BotMetrics
	limiter   *userLimiter
	logger    *slog.Logger
	service   string
}

func NewRouter(
	assistant ports.Assistant,
	botMetrics *metrics.BotMetrics,
	rateLimitPerMinute int,
	service string,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		assistant: assistant,
		metrics:   botMetrics,
		limiter:   newUserLimiter(rateLimitPerMinute),
		logger:    logger,
		service:   service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/sessions/{user_id}/start", rt.startSession)
	mux.HandleFunc("POST /v1/sessions/{user_id}/category", rt.selectCategory)
	mux.HandleFunc("POST /v1/sessions/{user_id}/query", rt.submitQuery)
	mux.HandleFunc("GET /v1/sessions/{user_id}/results/{rank}", rt.selectResult)
	mux.HandleFunc("POST /v1/sessions/{user_id}/reset", rt.resetSession)
	mux.HandleFunc("GET /v1/sessions/{user_id}/history", rt.queryHistory)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) startSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.userID(w, r)
	if !ok {
		return
	}

	categories, err := rt.assistant.StartSession(r.Context(), userID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (rt *Router) selectCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json", "Некорректный запрос."))
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("category is required", "Выберите категорию."))
		return
	}

	loaded, err := rt.assistant.SelectCategory(r.Context(), userID, req.Category, nil)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordIndexLoad(rt.service, "error")
		}
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordIndexLoad(rt.service, "ok")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":       req.Category,
		"loaded_indexes": loaded,
	})
}

func (rt *Router) submitQuery(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json", "Некорректный запрос."))
		return
	}

	start := time.Now()
	results, err := rt.assistant.SubmitQuery(r.Context(), userID, req.Text)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordSearch(rt.service, "error", 0, time.Since(start))
		}
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch(rt.service, "ok", len(results), time.Since(start))
	}
	if results == nil {
		results = []domain.ResultView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (rt *Router) selectResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.userID(w, r)
	if !ok {
		return
	}

	rank, err := strconv.Atoi(r.PathValue("rank"))
	if err != nil || rank < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("rank must be a positive integer", "Некорректный номер результата."))
		return
	}

	doc, err := rt.assistant.SelectResult(r.Context(), userID, rank-1)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentRender(rt.service, doc.TotalParts, doc.BrokenLinks)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":        doc.Title,
		"element_type": doc.ElementType,
		"total_parts":  doc.TotalParts,
		"parts":        renderParts(doc),
	})
}

func (rt *Router) resetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.userID(w, r)
	if !ok {
		return
	}

	if err := rt.assistant.ResetSession(r.Context(), userID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (rt *Router) queryHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := rt.userID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a positive integer", "Некорректный лимит."))
			return
		}
		limit = parsed
	}

	records, err := rt.assistant.QueryHistory(r.Context(), userID, limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.QueryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

// renderParts prepends the part header users see in a chat. Single-part
// documents go out without a header.
func renderParts(doc domain.DocumentView) []string {
	if doc.TotalParts <= 1 {
		return doc.Parts
	}
	out := make([]string, 0, len(doc.Parts))
	for i, part := range doc.Parts {
		out = append(out, fmt.Sprintf("📖 Часть %d/%d\n\n%s", i+1, doc.TotalParts, part))
	}
	return out
}

func (rt *Router) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("user id is required", "Некорректный запрос."))
		return "", false
	}
	if !rt.limiter.Allow(userID) {
		if rt.metrics != nil {
			rt.metrics.RecordRateLimited(rt.service)
		}
		writeJSON(w, http.StatusTooManyRequests, errorBody("rate limit exceeded", "Слишком много запросов. Подождите немного."))
		return "", false
	}
	return userID, true
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, errorBody(err.Error(), userMessage(err)))
}

func errorBody(detail, message string) map[string]string {
	return map[string]string{
		"error":        detail,
		"user_message": message,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
