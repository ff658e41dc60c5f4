package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/eod-connector/internal/models"
)

func TestWritePrices(t *testing.T) {
	var buf bytes.Buffer
	records := []*models.PriceRecord{
		{
			Symbol:         "AAPL",
			Date:           time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Open:           decimal.RequireFromString("184.22"),
			Close:          decimal.RequireFromString("184.25"),
			High:           decimal.RequireFromString("185.88"),
			Low:            decimal.RequireFromString("183.43"),
			ChangeOverTime: decimal.RequireFromString("0.00016"),
			ChangePercent:  decimal.RequireFromString("0.016"),
		},
	}

	require.NoError(t, WritePrices(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "eod_historical_data", lines[0])
	assert.Contains(t, lines[1], "changeOverTime")
	assert.Contains(t, lines[3], "2024-01-03")
	assert.Contains(t, lines[3], "184.25")
	assert.Equal(t, "(1 rows)", lines[4])

	// Columns are aligned on the same separator offsets
	assert.Equal(t, strings.Index(lines[1], "|"), strings.Index(lines[3], "|"))
}

func TestWritePricesEmpty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WritePrices(&buf, nil))

	assert.Contains(t, buf.String(), "(0 rows)")
}

func TestWriteWatermarks(t *testing.T) {
	var buf bytes.Buffer
	watermarks := []*models.Watermark{{
		Symbol:    "TSLA",
		LastDate:  time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 4, 22, 30, 5, 0, time.UTC),
	}}

	require.NoError(t, WriteWatermarks(&buf, watermarks))

	out := buf.String()
	assert.Contains(t, out, "sync_watermarks")
	assert.Contains(t, out, "2024-01-04 22:30:05")
	assert.Contains(t, out, "(1 rows)")
}
