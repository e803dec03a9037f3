package model

import "time"

// BarRecord represents one OHLCV bar for a symbol.
// Shared by downloaders, the bar store and packet savers.
// Records are constructed once by a downloader and never mutated after;
// defaults (zero prices/volume, zero turnover and open interest for
// equities) are applied at construction time.
type BarRecord struct {
	Symbol       string    `json:"symbol"`
	Exchange     Exchange  `json:"exchange"`
	Datetime     time.Time `json:"datetime"` // normalized to the storage timezone
	Interval     Interval  `json:"interval"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
	Turnover     float64   `json:"turnover"`      // in-scope providers never supply this
	OpenInterest float64   `json:"open_interest"` // always 0 for equities
	Gateway      string    `json:"gateway"`       // provenance: which downloader produced the bar
}

// VTSymbol returns the composite "<symbol>.<exchange>" identifier.
func (b BarRecord) VTSymbol() string {
	return b.Symbol + "." + string(b.Exchange)
}
