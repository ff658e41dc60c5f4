package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/trogers1052/eod-connector/internal/models"
)

// HistoricalEntry is one daily entry of the historical-price-full response.
// Numeric fields are kept raw so a single malformed value only affects its entry.
type HistoricalEntry struct {
	Date           string          `json:"date"`
	Open           json.RawMessage `json:"open"`
	Close          json.RawMessage `json:"close"`
	High           json.RawMessage `json:"high"`
	Low            json.RawMessage `json:"low"`
	ChangeOverTime json.RawMessage `json:"changeOverTime"`
	ChangePercent  json.RawMessage `json:"changePercent"`
}

type historicalResponse struct {
	Symbol       string            `json:"symbol"`
	Historical   []HistoricalEntry `json:"historical"`
	ErrorMessage string            `json:"Error Message"`
}

// FetchHistory retrieves the daily history for symbol. When since is non-zero
// only entries from that date on are requested. Entries are returned oldest first.
func (c *Client) FetchHistory(ctx context.Context, symbol string, since time.Time) ([]HistoricalEntry, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &TransientNetworkError{Symbol: symbol, Err: err}
		}
	}

	query := map[string]string{"apikey": c.apiKey}
	if !since.IsZero() {
		query["from"] = since.Format(models.DateLayout)
	}

	res, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(query).
		Get(historicalPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransientNetworkError{Symbol: symbol, Err: err}
	}

	switch status := res.StatusCode(); {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return nil, &AuthError{Symbol: symbol, StatusCode: status}
	case status == http.StatusTooManyRequests:
		return nil, &RateLimitError{Symbol: symbol, RetryAfter: res.Header().Get("Retry-After")}
	case status >= http.StatusInternalServerError:
		return nil, &TransientNetworkError{Symbol: symbol, StatusCode: status}
	default:
		return nil, &StatusError{Symbol: symbol, StatusCode: status}
	}

	return decodeHistory(symbol, res.Body())
}

func decodeHistory(symbol string, body []byte) ([]HistoricalEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Symbol: symbol, Payload: truncate(body), Err: errors.New("expected a JSON object")}
	}

	var payload historicalResponse
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &ParseError{Symbol: symbol, Payload: truncate(body), Err: err}
	}
	if payload.ErrorMessage != "" {
		return nil, &ParseError{Symbol: symbol, Payload: truncate(body), Err: fmt.Errorf("api error: %s", payload.ErrorMessage)}
	}

	entries := payload.Historical
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}
