package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coursewise/coursewise/internal/rag"
	"github.com/coursewise/coursewise/internal/tools"
)

// maxRequestBody caps request bodies. Queries are short text; anything
// beyond this is hostile or broken.
const maxRequestBody = 1 << 20

// QueryService is the retrieval pipeline the handlers sit on.
// *rag.System satisfies it.
type QueryService interface {
	Query(ctx context.Context, query, sessionID string) (*rag.Answer, error)
	CourseAnalytics(ctx context.Context) (*rag.Analytics, error)
	ClearSession(sessionID string)
}

type queryHandler struct {
	service QueryService
	logger  *slog.Logger
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type clearSessionRequest struct {
	SessionID string `json:"session_id"`
}

type clearSessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// handleQuery answers one question. An omitted session_id starts a new
// conversation; the response always carries the effective session ID.
func (h *queryHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	answer, err := h.service.Query(r.Context(), req.Query, req.SessionID)
	if err != nil {
		h.logger.Error("query failed", "error", err, "session_id", req.SessionID)
		writeError(w, http.StatusInternalServerError, "query_failed", "failed to answer query")
		return
	}

	// The sources array must always be present, even when empty.
	if answer.Sources == nil {
		answer.Sources = []tools.Source{}
	}
	writeJSON(w, http.StatusOK, answer)
}

// handleCourses reports catalog statistics.
func (h *queryHandler) handleCourses(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.CourseAnalytics(r.Context())
	if err != nil {
		h.logger.Error("course analytics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analytics_failed", "failed to load course analytics")
		return
	}
	if analytics.CourseTitles == nil {
		analytics.CourseTitles = []string{}
	}
	writeJSON(w, http.StatusOK, analytics)
}

// handleClearSession drops a conversation's history. Clearing an unknown
// session succeeds; the outcome is the same either way.
func (h *queryHandler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	var req clearSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	h.service.ClearSession(req.SessionID)
	writeJSON(w, http.StatusOK, clearSessionResponse{Status: "cleared", SessionID: req.SessionID})
}

// decodeBody reads a size-capped JSON body into dst, writing the error
// response itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return false
	}
	return true
}
