package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maltedev/amazon-authenticity-checker/internal/database"
	"github.com/maltedev/amazon-authenticity-checker/internal/fetcher"
	"github.com/maltedev/amazon-authenticity-checker/internal/models"
	"github.com/maltedev/amazon-authenticity-checker/internal/scraper"
)

// Handlers exposes the pipeline over HTTP. The db is optional; a nil db
// disables check history without affecting checks themselves.
type Handlers struct {
	scraper      scraper.Scraper
	db           *database.DB
	cacheEnabled bool
	logger       *slog.Logger
}

func NewHandlers(s scraper.Scraper, db *database.DB, cacheEnabled bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default().With("component", "api")
	}
	return &Handlers{
		scraper:      s,
		db:           db,
		cacheEnabled: cacheEnabled,
		logger:       logger,
	}
}

type CheckRequest struct {
	URL string `json:"url"`
}

type CheckResponse struct {
	Result *models.ProductResult `json:"result"`
	Score  int                   `json:"score"`
}

// CheckProduct runs the full authenticity check for a product URL.
func (h *Handlers) CheckProduct(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	result, err := h.scraper.FetchProductData(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("check failed", "url", req.URL, "error", err)
		h.respondError(w, http.StatusBadRequest, userMessage(err))
		return
	}

	h.recordCheck(r, req.URL, result)

	h.respondJSON(w, http.StatusOK, CheckResponse{
		Result: result,
		Score:  result.AuthenticityScore,
	})
}

// History returns the most recent checks. An empty list when history is
// disabled, never an error.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	records := []database.CheckRecord{}

	if h.db != nil {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		found, err := h.db.RecentChecks(r.Context(), limit)
		if err != nil {
			h.logger.Error("failed to load history", "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to load history")
			return
		}
		if found != nil {
			records = found
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"checks": records})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	cacheState := "disabled"
	if h.cacheEnabled {
		cacheState = "enabled"
	}
	dbState := "disabled"
	if h.db != nil {
		dbState = "enabled"
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"cache":    cacheState,
		"database": dbState,
	})
}

// recordCheck persists a scored result to the history table, best-effort.
func (h *Handlers) recordCheck(r *http.Request, url string, result *models.ProductResult) {
	if h.db == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		h.logger.Warn("failed to serialize result for history", "error", err)
		return
	}

	rec := &database.CheckRecord{
		ASIN:   result.ProductID,
		URL:    url,
		Score:  result.AuthenticityScore,
		Result: raw,
	}
	if err := h.db.InsertCheck(r.Context(), rec); err != nil {
		h.logger.Warn("failed to record check", "asin", result.ProductID, "error", err)
	}
}

// userMessage maps a terminal pipeline error to the client-facing message.
// Internal error text never reaches the caller.
func userMessage(err error) string {
	var statusErr *fetcher.StatusError
	switch {
	case errors.Is(err, scraper.ErrInvalidURL), errors.Is(err, fetcher.ErrNotFound):
		return "Invalid Amazon product URL"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Unexpected error: %d", statusErr.Code)
	case errors.Is(err, fetcher.ErrBlocked):
		return "Request blocked"
	case errors.Is(err, fetcher.ErrNetworkFailure):
		return "Request failed"
	default:
		return "Exception when scraping"
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
