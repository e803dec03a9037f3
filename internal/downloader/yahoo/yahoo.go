// Package yahoo implements the polling-API downloader: a per-symbol
// ticker handle whose History call returns tabular rows.
package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockloader/internal/downloader"
	"stockloader/internal/model"
	"stockloader/internal/tzone"
)

// GatewayName tags every bar this downloader produces.
const GatewayName = "yahoo"

// Row is one history row. Clients without zone information return UTC
// instants; the downloader routes every timestamp through US Eastern
// before normalizing to the storage timezone.
type Row struct {
	Time   time.Time
	Values map[string]float64 // column name -> value; absent columns read as 0
}

// HistoryParams are the arguments to a Ticker.History call.
type HistoryParams struct {
	Start      time.Time
	End        time.Time
	Interval   string
	AutoAdjust bool
	PrePost    bool
	Actions    bool
}

// Ticker is a per-symbol handle into the polling API.
type Ticker interface {
	History(ctx context.Context, p HistoryParams) ([]Row, error)
}

// TickerFactory constructs the handle for one symbol.
type TickerFactory func(symbol string) Ticker

// Downloader adapts a TickerFactory to the StockDownloader contract.
type Downloader struct {
	factory TickerFactory
	loc     *time.Location // storage timezone
	eastern *time.Location
	log     *slog.Logger
}

// New builds a downloader. factory may be nil, in which case
// InitConnection installs the default chart-API client. loc nil means
// the default storage timezone.
func New(factory TickerFactory, loc *time.Location, log *slog.Logger) *Downloader {
	if loc == nil {
		loc = tzone.Load("")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{
		factory: factory,
		loc:     loc,
		eastern: tzone.Load("America/New_York"),
		log:     log,
	}
}

// Name implements StockDownloader.
func (d *Downloader) Name() string { return "YahooStockDownloader" }

// Source implements StockDownloader.
func (d *Downloader) Source() model.DataSource { return model.SourceYahoo }

// InitConnection installs the default client when no factory was
// injected. The API needs no credentials, so this cannot fail outward.
func (d *Downloader) InitConnection(_ downloader.ConnectOptions) bool {
	if d.factory == nil {
		d.factory = NewClient(ClientConfig{}).Ticker
	}
	return true
}

// yfInterval maps canonical intervals to the polling API's period codes.
// Anything unmapped falls back to daily.
func yfInterval(iv model.Interval) string {
	switch iv {
	case model.IntervalMinute:
		return "1m"
	case model.IntervalHour:
		return "1h"
	case model.IntervalDaily:
		return "1d"
	default:
		return "1d"
	}
}

// symbolSuffix maps an exchange to the API's symbol suffix. US listings
// need none; reserved for non-US venues.
func symbolSuffix(_ model.Exchange) string { return "" }

// DownloadBars implements StockDownloader.
func (d *Downloader) DownloadBars(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	if ok, msg := downloader.ValidateRequest(d, req); !ok {
		return model.FailedResult(req, msg)
	}
	if d.factory == nil {
		return model.FailedResult(req, "yahoo client not initialized; call InitConnection first")
	}

	ticker := d.factory(req.Symbol + symbolSuffix(req.Exchange))
	rows, err := ticker.History(ctx, HistoryParams{
		Start:      req.Start,
		End:        req.End,
		Interval:   yfInterval(req.Interval),
		AutoAdjust: true,  // adjusted prices
		PrePost:    false, // regular session only
		Actions:    false, // no corporate-action rows
	})
	if err != nil {
		return model.FailedResult(req, fmt.Sprintf("yahoo data download failed: %v", err))
	}

	bars := d.convertRows(rows, req.Symbol, req.Exchange, req.Interval)
	return model.NewDownloadResult(req, bars, "no data retrieved or unknown symbol")
}

// convertRows reshapes history rows into canonical bars. Columns the row
// does not carry default to 0; turnover and open interest are always 0
// for this source.
func (d *Downloader) convertRows(rows []Row, symbol string, ex model.Exchange, iv model.Interval) []model.BarRecord {
	if len(rows) == 0 {
		return nil
	}
	bars := make([]model.BarRecord, 0, len(rows))
	for _, row := range rows {
		dt := tzone.Convert(row.Time.In(d.eastern), d.loc)
		bars = append(bars, model.BarRecord{
			Symbol:       symbol,
			Exchange:     ex,
			Datetime:     dt,
			Interval:     iv,
			Open:         row.Values["Open"],
			High:         row.Values["High"],
			Low:          row.Values["Low"],
			Close:        row.Values["Close"],
			Volume:       row.Values["Volume"],
			Turnover:     0,
			OpenInterest: 0,
			Gateway:      GatewayName,
		})
	}
	return bars
}

// SupportedIntervals implements StockDownloader.
func (d *Downloader) SupportedIntervals() []model.Interval {
	return downloader.DefaultIntervals()
}

// SupportedExchanges implements StockDownloader.
func (d *Downloader) SupportedExchanges() []model.Exchange {
	return append(downloader.DefaultExchanges(), model.ExchangeSMART)
}

// SupportsInterval implements StockDownloader.
func (d *Downloader) SupportsInterval(iv model.Interval) bool {
	return downloader.SupportsInterval(d, iv)
}
