package model

// Exchange identifies a listing venue. Closed set.
type Exchange string

const (
	ExchangeNYSE   Exchange = "NYSE"   // New York Stock Exchange
	ExchangeNASDAQ Exchange = "NASDAQ" // Nasdaq
	ExchangeAMEX   Exchange = "AMEX"   // NYSE American
	ExchangeSMART  Exchange = "SMART"  // smart-routing pseudo exchange
	ExchangeSSE    Exchange = "SSE"    // Shanghai; unsupported by every downloader
)

// Interval is the bar granularity.
type Interval string

const (
	IntervalMinute Interval = "1m"
	IntervalHour   Interval = "1h"
	IntervalDaily  Interval = "d"
	IntervalWeekly Interval = "w"
)

// DataSource names a downloader implementation.
type DataSource string

const (
	SourceDatafeed DataSource = "datafeed"
	SourceYahoo    DataSource = "yahoo"
	SourceStooq    DataSource = "stooq"
)

// AllSources lists every known data source in registry order.
func AllSources() []DataSource {
	return []DataSource{SourceDatafeed, SourceYahoo, SourceStooq}
}
