package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wanderplan/wanderplan/internal/trip"
)

const (
	serviceName    = "Travel Planner API"
	serviceVersion = "1.0.0"

	defaultDays = 3
	minDays     = 1
	maxDays     = 5
)

// Handlers holds the dependencies for all HTTP handlers.
// cachePing may be nil when the server runs without a cache.
type Handlers struct {
	planner   TripPlanner
	assistant ChatAssistant
	cachePing CachePinger
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(planner TripPlanner, chat ChatAssistant, cachePing CachePinger, log *slog.Logger) *Handlers {
	return &Handlers{
		planner:   planner,
		assistant: chat,
		cachePing: cachePing,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError is the structured error body for the /trip endpoint.
type apiError struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg, StatusCode: status})
}

// GetTrip handles GET /trip?city=<string>&days=<int 1..5>.
// An unresolvable city is the only 404; provider failures are absorbed
// into fallback data by the planner.
func (h *Handlers) GetTrip(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: city")
		return
	}

	days := defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < minDays || parsed > maxDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be an integer between %d and %d", minDays, maxDays))
			return
		}
		days = parsed
	}

	plan, err := h.planner.PlanTrip(r.Context(), city, days)
	if err != nil {
		var nf *trip.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("City '%s' not found. Please check the spelling and try again.", city))
			return
		}
		h.log.Error("trip planning failed", "city", city, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Query string `json:"query"`
}

// Chat handles POST /chat. All parse and lookup failures degrade to a
// conversational message inside a 200 response; only a malformed
// request body is rejected outright.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected JSON with a \"query\" field")
		return
	}

	result := h.assistant.HandleQuery(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, result)
}

// Health handles GET /health. Liveness never depends on the cache:
// caching is best-effort, so a down Redis only shows up in the payload.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "disabled"
	if h.cachePing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		cacheStatus = "ok"
		if err := h.cachePing.Ping(ctx); err != nil {
			h.log.Warn("health check: cache ping failed", "err", err)
			cacheStatus = "unavailable"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": serviceName,
		"version": serviceVersion,
		"status":  "online",
		"cache":   cacheStatus,
	})
}
