package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/trogers1052/eod-connector/internal/models"
)

var priceHeaders = []string{"symbol", "date", "open", "close", "high", "low", "changeOverTime", "changePercent"}

// WritePrices renders records as an aligned table followed by a row count
func WritePrices(w io.Writer, records []*models.PriceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Symbol,
			r.DateString(),
			r.Open.String(),
			r.Close.String(),
			r.High.String(),
			r.Low.String(),
			r.ChangeOverTime.String(),
			r.ChangePercent.String(),
		})
	}
	return writeTable(w, "eod_historical_data", priceHeaders, rows)
}

// WriteWatermarks renders the stored per-symbol watermarks
func WriteWatermarks(w io.Writer, watermarks []*models.Watermark) error {
	rows := make([][]string, 0, len(watermarks))
	for _, wm := range watermarks {
		rows = append(rows, []string{
			wm.Symbol,
			wm.LastDate.Format(models.DateLayout),
			wm.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return writeTable(w, "sync_watermarks", []string{"symbol", "last_date", "updated_at"}, rows)
}

func writeTable(w io.Writer, title string, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return fmt.Errorf("failed to write table title: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.Debug)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(separators, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if _, err := fmt.Fprintf(w, "(%d rows)\n\n", len(rows)); err != nil {
		return fmt.Errorf("failed to write row count: %w", err)
	}
	return nil
}
