// Package store persists canonical bars keyed by symbol, exchange and
// interval.
package store

import (
	"time"

	"stockloader/internal/model"
)

// BarOverview summarizes what the store holds for one
// symbol/exchange/interval series.
type BarOverview struct {
	Symbol   string
	Exchange model.Exchange
	Interval model.Interval
	Count    int64
	Start    time.Time
	End      time.Time
}

// Database is the persistence collaborator the manager consumes.
// Saving the same bar twice overwrites it in place; the store is the
// only dedup layer in the system.
type Database interface {
	SaveBarData(bars []model.BarRecord) error
	GetBarOverview() ([]BarOverview, error)
	DeleteBarData(symbol string, ex model.Exchange, iv model.Interval) (int64, error)
	Close() error
}

// Config locates the store.
type Config struct {
	Path string // SQLite file path
}
