package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/eod-connector/internal/database"
	"github.com/trogers1052/eod-connector/internal/models"
)

const (
	defaultLimit = 30
	maxLimit     = 5000
)

// Reader is the read-only view of the warehouse served by the API
type Reader interface {
	Ping(ctx context.Context) error
	GetPriceRecord(ctx context.Context, symbol string, date time.Time) (*models.PriceRecord, error)
	ListPriceRecords(ctx context.Context, symbol string, limit int) ([]*models.PriceRecord, error)
	GetPriceRecordRange(ctx context.Context, symbol string, start, end time.Time) ([]*models.PriceRecord, error)
	ListWatermarks(ctx context.Context) ([]*models.Watermark, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	reader Reader
	logger zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(reader Reader, logger zerolog.Logger) *Handler {
	return &Handler{
		reader: reader,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// GetPrices handles GET /prices/{symbol}. Without from/to it returns the
// newest limit records, newest first. With from and to it returns the
// inclusive range, oldest first.
func (h *Handler) GetPrices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := strings.ToUpper(vars["symbol"])
	query := r.URL.Query()

	if query.Has("from") || query.Has("to") {
		start, err := models.ParseDate(query.Get("from"))
		if err != nil {
			http.Error(w, "from must be a YYYY-MM-DD date", http.StatusBadRequest)
			return
		}
		end, err := models.ParseDate(query.Get("to"))
		if err != nil {
			http.Error(w, "to must be a YYYY-MM-DD date", http.StatusBadRequest)
			return
		}
		if end.Before(start) {
			http.Error(w, "to must not be before from", http.StatusBadRequest)
			return
		}

		records, err := h.reader.GetPriceRecordRange(r.Context(), symbol, start, end)
		if err != nil {
			h.internalError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nonNil(records))
		return
	}

	limit := defaultLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	records, err := h.reader.ListPriceRecords(r.Context(), symbol, limit)
	if err != nil {
		h.internalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNil(records))
}

// GetPrice handles GET /prices/{symbol}/{date}
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := strings.ToUpper(vars["symbol"])

	date, err := models.ParseDate(vars["date"])
	if err != nil {
		http.Error(w, "date must be a YYYY-MM-DD date", http.StatusBadRequest)
		return
	}

	record, err := h.reader.GetPriceRecord(r.Context(), symbol, date)
	if errors.Is(err, database.ErrPriceRecordNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// GetWatermarks handles GET /watermarks
func (h *Handler) GetWatermarks(w http.ResponseWriter, r *http.Request) {
	watermarks, err := h.reader.ListWatermarks(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNil(watermarks))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.reader.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
