package model

import "time"

// DownloadRequest describes one fetch attempt against a data source.
// Build it with NewDownloadRequest so the derived VTSymbol is always set;
// a request is never mutated after construction.
type DownloadRequest struct {
	Symbol   string
	Exchange Exchange
	Start    time.Time // zero means provider default range
	End      time.Time // zero means provider default range
	Interval Interval
	VTSymbol string // "<symbol>.<exchange>", derived at construction
}

// RequestOption customizes a DownloadRequest before derivation.
type RequestOption func(*DownloadRequest)

// WithExchange overrides the default NYSE listing venue.
func WithExchange(ex Exchange) RequestOption {
	return func(r *DownloadRequest) { r.Exchange = ex }
}

// WithInterval overrides the default daily interval.
func WithInterval(iv Interval) RequestOption {
	return func(r *DownloadRequest) { r.Interval = iv }
}

// WithRange limits the request to [start, end]. Zero values keep the
// provider default on that side.
func WithRange(start, end time.Time) RequestOption {
	return func(r *DownloadRequest) {
		r.Start = start
		r.End = end
	}
}

// NewDownloadRequest builds a request with defaults (NYSE, daily) and the
// derived composite identifier already computed.
func NewDownloadRequest(symbol string, opts ...RequestOption) DownloadRequest {
	req := DownloadRequest{
		Symbol:   symbol,
		Exchange: ExchangeNYSE,
		Interval: IntervalDaily,
	}
	for _, opt := range opts {
		opt(&req)
	}
	req.VTSymbol = req.Symbol + "." + string(req.Exchange)
	return req
}

// DownloadResult is the outcome of one downloader invocation.
// Success and Count are derived from the bar slice by NewDownloadResult;
// results are read-only after construction and never persisted themselves.
type DownloadResult struct {
	Request  DownloadRequest
	Bars     []BarRecord
	Success  bool
	ErrorMsg string
	Count    int
}

// NewDownloadResult derives the result state from the bar slice: a
// non-empty slice means success (any supplied message is discarded), an
// empty slice means failure with the supplied message. Bar count always
// wins over caller intent.
func NewDownloadResult(req DownloadRequest, bars []BarRecord, errorMsg string) DownloadResult {
	res := DownloadResult{
		Request: req,
		Bars:    bars,
		Count:   len(bars),
	}
	if len(bars) > 0 {
		res.Success = true
	} else {
		res.ErrorMsg = errorMsg
	}
	return res
}

// FailedResult is shorthand for a result that carries no bars.
func FailedResult(req DownloadRequest, errorMsg string) DownloadResult {
	return NewDownloadResult(req, nil, errorMsg)
}
