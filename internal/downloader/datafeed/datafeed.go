// Package datafeed implements the native-feed downloader: a thin layer
// over a pluggable, provider-agnostic history-query client selected by
// name from a registry.
package datafeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockloader/internal/downloader"
	"stockloader/internal/model"
)

// GatewayName is the provenance tag assigned to bars the feed left
// untagged. Feed-assigned tags are never overwritten.
const GatewayName = "datafeed"

// Config selects a feed implementation and its credentials. This is the
// explicit replacement for the process-wide settings map the feed used
// to be configured through.
type Config struct {
	Name     string
	Username string
	Password string
}

// HistoryRequest is the provider-native bar history query.
type HistoryRequest struct {
	Symbol   string
	Exchange model.Exchange
	Start    time.Time
	End      time.Time
	Interval model.Interval
}

// Feed is the provider-agnostic historical-data query client.
type Feed interface {
	QueryBarHistory(ctx context.Context, req HistoryRequest) ([]model.BarRecord, error)
}

// Initializer is the optional session-setup routine a feed may expose.
// When present, its result decides the InitConnection outcome.
type Initializer interface {
	Init() bool
}

// Downloader adapts a named Feed to the StockDownloader contract.
type Downloader struct {
	feed Feed
	log  *slog.Logger
}

// New returns an uninitialized downloader; call InitConnection before
// DownloadBars.
func New(log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{log: log}
}

// Name implements StockDownloader.
func (d *Downloader) Name() string { return "DatafeedStockDownloader" }

// Source implements StockDownloader.
func (d *Downloader) Source() model.DataSource { return model.SourceDatafeed }

// InitConnection acquires the configured feed. Acquisition or init
// failure leaves the downloader uninitialized and returns false; it never
// panics outward.
func (d *Downloader) InitConnection(opts downloader.ConnectOptions) bool {
	cfg := Config{
		Name:     opts.DatafeedName,
		Username: opts.Username,
		Password: opts.Password,
	}
	feed, err := openFeed(cfg)
	if err != nil {
		d.log.Warn("datafeed acquisition failed", "name", cfg.Name, "error", err)
		return false
	}
	if init, ok := feed.(Initializer); ok {
		if !init.Init() {
			d.log.Warn("datafeed rejected initialization", "name", cfg.Name)
			return false
		}
	}
	d.feed = feed
	return true
}

// DownloadBars implements StockDownloader.
func (d *Downloader) DownloadBars(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	if ok, msg := downloader.ValidateRequest(d, req); !ok {
		return model.FailedResult(req, msg)
	}
	if d.feed == nil {
		return model.FailedResult(req, "datafeed not initialized; call InitConnection first")
	}

	bars, err := d.feed.QueryBarHistory(ctx, HistoryRequest{
		Symbol:   req.Symbol,
		Exchange: req.Exchange,
		Start:    req.Start,
		End:      req.End,
		Interval: req.Interval,
	})
	if err != nil {
		return model.FailedResult(req, fmt.Sprintf("datafeed data download failed: %v", err))
	}

	converted := make([]model.BarRecord, 0, len(bars))
	for _, bar := range bars {
		if bar.Gateway == "" {
			bar.Gateway = GatewayName
		}
		converted = append(converted, bar)
	}
	return model.NewDownloadResult(req, converted, "no data retrieved")
}

// SupportedIntervals implements StockDownloader; what the configured
// feed actually serves may be narrower.
func (d *Downloader) SupportedIntervals() []model.Interval {
	return downloader.DefaultIntervals()
}

// SupportedExchanges implements StockDownloader. The feed routes SMART
// requests itself.
func (d *Downloader) SupportedExchanges() []model.Exchange {
	return append(downloader.DefaultExchanges(), model.ExchangeSMART)
}

// SupportsInterval implements StockDownloader.
func (d *Downloader) SupportsInterval(iv model.Interval) bool {
	return downloader.SupportsInterval(d, iv)
}
