package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/eod-connector/internal/database"
	"github.com/trogers1052/eod-connector/internal/models"
)

// MockReader implements Reader for testing
type MockReader struct {
	Records    []*models.PriceRecord
	Watermarks []*models.Watermark
	PingErr    error
	Err        error

	lastSymbol string
	lastLimit  int
	lastStart  time.Time
	lastEnd    time.Time
}

func (m *MockReader) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockReader) GetPriceRecord(ctx context.Context, symbol string, date time.Time) (*models.PriceRecord, error) {
	m.lastSymbol = symbol
	m.lastStart = date
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.Records {
		if r.Symbol == symbol && r.Date.Equal(date) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w for %s on %s", database.ErrPriceRecordNotFound, symbol, date.Format(models.DateLayout))
}

func (m *MockReader) ListPriceRecords(ctx context.Context, symbol string, limit int) ([]*models.PriceRecord, error) {
	m.lastSymbol = symbol
	m.lastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

func (m *MockReader) GetPriceRecordRange(ctx context.Context, symbol string, start, end time.Time) ([]*models.PriceRecord, error) {
	m.lastSymbol = symbol
	m.lastStart = start
	m.lastEnd = end
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

func (m *MockReader) ListWatermarks(ctx context.Context) ([]*models.Watermark, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Watermarks, nil
}

func serve(t *testing.T, reader *MockReader, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := SetupRoutes(NewHandler(reader, zerolog.Nop()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func sampleRecord() *models.PriceRecord {
	return &models.PriceRecord{
		Symbol:         "AAPL",
		Date:           time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Open:           decimal.RequireFromString("184.22"),
		Close:          decimal.RequireFromString("184.25"),
		High:           decimal.RequireFromString("185.88"),
		Low:            decimal.RequireFromString("183.43"),
		ChangeOverTime: decimal.RequireFromString("0.00016"),
		ChangePercent:  decimal.RequireFromString("0.016"),
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := serve(t, &MockReader{}, "/health")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("database unreachable", func(t *testing.T) {
		rec := serve(t, &MockReader{PingErr: errors.New("connection refused")}, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetPrices(t *testing.T) {
	t.Run("defaults limit and upper-cases symbol", func(t *testing.T) {
		reader := &MockReader{Records: []*models.PriceRecord{sampleRecord()}}
		rec := serve(t, reader, "/api/v1/prices/aapl")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "AAPL", reader.lastSymbol)
		assert.Equal(t, defaultLimit, reader.lastLimit)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "2024-01-03", body[0]["date"])
		assert.Equal(t, "AAPL", body[0]["symbol"])
	})

	t.Run("explicit limit is capped", func(t *testing.T) {
		reader := &MockReader{}
		rec := serve(t, reader, "/api/v1/prices/AAPL?limit=999999")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, maxLimit, reader.lastLimit)
		assert.Equal(t, "[]\n", rec.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := serve(t, &MockReader{}, "/api/v1/prices/AAPL?limit=-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("date range", func(t *testing.T) {
		reader := &MockReader{Records: []*models.PriceRecord{sampleRecord()}}
		rec := serve(t, reader, "/api/v1/prices/AAPL?from=2024-01-01&to=2024-01-05")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), reader.lastStart)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), reader.lastEnd)
	})

	t.Run("inverted date range", func(t *testing.T) {
		rec := serve(t, &MockReader{}, "/api/v1/prices/AAPL?from=2024-01-05&to=2024-01-01")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing range bound", func(t *testing.T) {
		rec := serve(t, &MockReader{}, "/api/v1/prices/AAPL?from=2024-01-05")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reader failure", func(t *testing.T) {
		rec := serve(t, &MockReader{Err: errors.New("boom")}, "/api/v1/prices/AAPL")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetPrice(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		reader := &MockReader{Records: []*models.PriceRecord{sampleRecord()}}
		rec := serve(t, reader, "/api/v1/prices/aapl/2024-01-03")

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "2024-01-03", body["date"])
		assert.Equal(t, "AAPL", reader.lastSymbol)
	})

	t.Run("missing", func(t *testing.T) {
		rec := serve(t, &MockReader{}, "/api/v1/prices/AAPL/2024-01-04")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := serve(t, &MockReader{}, "/api/v1/prices/AAPL/yesterday")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reader failure", func(t *testing.T) {
		rec := serve(t, &MockReader{Err: errors.New("boom")}, "/api/v1/prices/AAPL/2024-01-03")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetWatermarks(t *testing.T) {
	reader := &MockReader{Watermarks: []*models.Watermark{{
		Symbol:    "AAPL",
		LastDate:  time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 3, 22, 30, 0, 0, time.UTC),
	}}}

	rec := serve(t, reader, "/api/v1/watermarks")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "2024-01-03", body[0]["last_date"])
}

func TestUnknownMethod(t *testing.T) {
	router := SetupRoutes(NewHandler(&MockReader{}, zerolog.Nop()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/watermarks", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
