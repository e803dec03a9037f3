// Package stooq implements the scraping-library downloader. The wrapped
// client has looser return shapes than the other providers, so row
// conversion tolerates column-name variation, several date formats and
// malformed individual rows.
package stooq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stockloader/internal/downloader"
	"stockloader/internal/model"
	"stockloader/internal/tzone"
)

// GatewayName tags every bar this downloader produces.
const GatewayName = "stooq"

// ErrEndpointUnavailable is returned by a client whose endpoint exists
// but no longer matches the expected shape; the downloader falls back to
// the secondary endpoint instead of reporting a download fault.
var ErrEndpointUnavailable = errors.New("endpoint unavailable")

const endpointUnavailableMsg = "US-equity data endpoint unavailable — check client library version"

// Row is one loosely-shaped provider row. Cell values may be numeric or
// string; Index is the positional fallback when no date column exists.
type Row struct {
	Index  string
	Fields map[string]any
}

// HistProvider is the primary US-equity history endpoint.
type HistProvider interface {
	USStockHist(ctx context.Context, symbol string) ([]Row, error)
}

// DailyProvider is the secondary endpoint found on older client
// versions.
type DailyProvider interface {
	USStockDaily(ctx context.Context, symbol string) ([]Row, error)
}

// Downloader adapts a scraping client to the StockDownloader contract.
// The client is capability-probed: any value implementing HistProvider
// or DailyProvider works.
type Downloader struct {
	client any
	loc    *time.Location
	log    *slog.Logger
}

// New builds a downloader. client may be nil, in which case
// InitConnection installs the default CSV client. loc nil means the
// default storage timezone.
func New(client any, loc *time.Location, log *slog.Logger) *Downloader {
	if loc == nil {
		loc = tzone.Load("")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{client: client, loc: loc, log: log}
}

// Name implements StockDownloader.
func (d *Downloader) Name() string { return "StooqStockDownloader" }

// Source implements StockDownloader.
func (d *Downloader) Source() model.DataSource { return model.SourceStooq }

// InitConnection installs the default client when none was injected.
func (d *Downloader) InitConnection(_ downloader.ConnectOptions) bool {
	if d.client == nil {
		d.client = NewClient(ClientConfig{})
	}
	return true
}

// DownloadBars implements StockDownloader.
func (d *Downloader) DownloadBars(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	if ok, msg := downloader.ValidateRequest(d, req); !ok {
		return model.FailedResult(req, msg)
	}
	if d.client == nil {
		return model.FailedResult(req, "stooq client not initialized; call InitConnection first")
	}
	// Narrowed interval support, checked again after generic validation.
	if req.Interval != model.IntervalDaily {
		return model.FailedResult(req, "only daily data is supported")
	}

	rows, fetched, err := d.fetchRows(ctx, req.Symbol)
	if !fetched {
		return model.FailedResult(req, endpointUnavailableMsg)
	}
	if err != nil {
		return model.FailedResult(req, fmt.Sprintf("stooq data download failed: %v", err))
	}

	bars := d.convertRows(rows, req)
	return model.NewDownloadResult(req, bars, "no data retrieved or unknown symbol")
}

// fetchRows tries the primary endpoint, then the secondary. A missing
// capability or an ErrEndpointUnavailable result moves on to the next
// candidate; fetched is false when no endpoint could serve at all.
func (d *Downloader) fetchRows(ctx context.Context, symbol string) (rows []Row, fetched bool, err error) {
	if h, ok := d.client.(HistProvider); ok {
		rows, err = h.USStockHist(ctx, symbol)
		if !errors.Is(err, ErrEndpointUnavailable) {
			return rows, true, err
		}
	}
	if dc, ok := d.client.(DailyProvider); ok {
		rows, err = dc.USStockDaily(ctx, symbol)
		if !errors.Is(err, ErrEndpointUnavailable) {
			return rows, true, err
		}
	}
	return nil, false, nil
}

// convertRows reshapes rows into canonical bars. A malformed row is
// skipped with a logged warning and never aborts the remaining rows.
// When the request carries a date range and the date came from a column,
// rows outside the inclusive range are dropped (the provider call itself
// is not date-parameterized).
func (d *Downloader) convertRows(rows []Row, req model.DownloadRequest) []model.BarRecord {
	if len(rows) == 0 {
		return nil
	}
	bars := make([]model.BarRecord, 0, len(rows))
	for i, row := range rows {
		bar, fromColumn, err := d.convertRow(row, req)
		if err != nil {
			d.log.Warn("skipping malformed row", "source", GatewayName, "symbol", req.Symbol, "row", i, "error", err)
			continue
		}
		if fromColumn && !inRange(bar.Datetime, req.Start, req.End) {
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

func (d *Downloader) convertRow(row Row, req model.DownloadRequest) (model.BarRecord, bool, error) {
	dateStr, fromColumn := dateSource(row)
	dt, err := d.parseDate(dateStr)
	if err != nil {
		return model.BarRecord{}, fromColumn, fmt.Errorf("date %q: %w", dateStr, err)
	}

	var prices [4]float64
	for i, name := range [4]string{"open", "high", "low", "close"} {
		prices[i], err = fieldFloat(row.Fields, name)
		if err != nil {
			return model.BarRecord{}, fromColumn, fmt.Errorf("%s: %w", name, err)
		}
	}
	volume, err := fieldFloat(row.Fields, "volume")
	if err != nil {
		return model.BarRecord{}, fromColumn, fmt.Errorf("volume: %w", err)
	}

	return model.BarRecord{
		Symbol:       req.Symbol,
		Exchange:     req.Exchange,
		Datetime:     tzone.Convert(dt, d.loc),
		Interval:     req.Interval,
		Open:         prices[0],
		High:         prices[1],
		Low:          prices[2],
		Close:        prices[3],
		Volume:       volume,
		Turnover:     0,
		OpenInterest: 0,
		Gateway:      GatewayName,
	}, fromColumn, nil
}

// dateSource picks the row's date string: lowercase column, capitalized
// column, then the row index.
func dateSource(row Row) (string, bool) {
	if v, ok := row.Fields["date"]; ok {
		return fmt.Sprint(v), true
	}
	if v, ok := row.Fields["Date"]; ok {
		return fmt.Sprint(v), true
	}
	return row.Index, false
}

// SupportedIntervals implements StockDownloader; the scraped endpoints
// only serve daily history.
func (d *Downloader) SupportedIntervals() []model.Interval {
	return []model.Interval{model.IntervalDaily}
}

// SupportedExchanges implements StockDownloader.
func (d *Downloader) SupportedExchanges() []model.Exchange {
	return downloader.DefaultExchanges()
}

// SupportsInterval implements StockDownloader.
func (d *Downloader) SupportsInterval(iv model.Interval) bool {
	return downloader.SupportsInterval(d, iv)
}

func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}
