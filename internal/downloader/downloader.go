// Package downloader defines the contract every data-source adapter
// implements, plus the shared default logic concrete adapters call
// explicitly instead of inheriting.
package downloader

import (
	"context"
	"fmt"

	"stockloader/internal/model"
)

// ConnectOptions carries provider session parameters for InitConnection.
// Only the datafeed downloader reads the credential fields; the others
// need no session state.
type ConnectOptions struct {
	DatafeedName string
	Username     string
	Password     string
}

// StockDownloader is the capability set shared by all data-source
// adapters. DownloadBars always returns a well-formed result and never
// panics; every failure is value-encoded in the DownloadResult.
type StockDownloader interface {
	// Name returns the human-readable downloader name.
	Name() string
	// Source returns the registry tag for this downloader.
	Source() model.DataSource
	// InitConnection establishes provider session state. A failure is
	// reported as false, never as a panic or error value.
	InitConnection(opts ConnectOptions) bool
	// DownloadBars fetches bars for the request.
	DownloadBars(ctx context.Context, req model.DownloadRequest) model.DownloadResult
	// SupportedIntervals returns the intervals the downloader accepts,
	// in preference order.
	SupportedIntervals() []model.Interval
	// SupportedExchanges returns the exchanges the downloader accepts.
	SupportedExchanges() []model.Exchange
	// SupportsInterval reports whether the interval is accepted.
	SupportsInterval(iv model.Interval) bool
}

// DefaultIntervals is the capability set downloaders start from.
func DefaultIntervals() []model.Interval {
	return []model.Interval{model.IntervalDaily, model.IntervalHour, model.IntervalMinute}
}

// DefaultExchanges is the capability set downloaders start from.
func DefaultExchanges() []model.Exchange {
	return []model.Exchange{model.ExchangeNYSE, model.ExchangeNASDAQ, model.ExchangeAMEX}
}

// SupportsInterval is the default membership test against
// d.SupportedIntervals().
func SupportsInterval(d StockDownloader, iv model.Interval) bool {
	for _, have := range d.SupportedIntervals() {
		if have == iv {
			return true
		}
	}
	return false
}

// ValidateRequest runs the shared request checks for d. The check order
// is fixed: exchange, then interval, then symbol emptiness — the first
// violation determines the message.
func ValidateRequest(d StockDownloader, req model.DownloadRequest) (bool, string) {
	supported := false
	for _, ex := range d.SupportedExchanges() {
		if ex == req.Exchange {
			supported = true
			break
		}
	}
	if !supported {
		return false, fmt.Sprintf("unsupported exchange: %s", req.Exchange)
	}
	if !d.SupportsInterval(req.Interval) {
		return false, fmt.Sprintf("unsupported interval: %s", req.Interval)
	}
	if req.Symbol == "" {
		return false, "symbol must not be empty"
	}
	return true, ""
}
