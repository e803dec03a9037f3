package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"stockloader/internal/model"
)

const saveBatchSize = 500

type barModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Symbol       string    `gorm:"column:symbol;uniqueIndex:idx_bar_series"`
	Exchange     string    `gorm:"column:exchange;uniqueIndex:idx_bar_series"`
	Interval     string    `gorm:"column:interval;uniqueIndex:idx_bar_series"`
	Datetime     time.Time `gorm:"column:datetime;uniqueIndex:idx_bar_series"`
	Open         float64   `gorm:"column:open_price"`
	High         float64   `gorm:"column:high_price"`
	Low          float64   `gorm:"column:low_price"`
	Close        float64   `gorm:"column:close_price"`
	Volume       float64   `gorm:"column:volume"`
	Turnover     float64   `gorm:"column:turnover"`
	OpenInterest float64   `gorm:"column:open_interest"`
	Gateway      string    `gorm:"column:gateway"`
}

func (barModel) TableName() string { return "bar_data" }

// SQLiteStore implements Database on Gorm + SQLite.
type SQLiteStore struct {
	db *gorm.DB
}

// Open creates (or opens) the SQLite bar store at cfg.Path.
func Open(cfg Config) (*SQLiteStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("bar store path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open bar store: %w", err)
	}
	if err := db.AutoMigrate(&barModel{}); err != nil {
		return nil, fmt.Errorf("migrate bar store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveBarData upserts bars on (symbol, exchange, interval, datetime).
func (s *SQLiteStore) SaveBarData(bars []model.BarRecord) error {
	if len(bars) == 0 {
		return nil
	}
	rows := make([]barModel, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, barModel{
			Symbol:       b.Symbol,
			Exchange:     string(b.Exchange),
			Interval:     string(b.Interval),
			Datetime:     b.Datetime,
			Open:         b.Open,
			High:         b.High,
			Low:          b.Low,
			Close:        b.Close,
			Volume:       b.Volume,
			Turnover:     b.Turnover,
			OpenInterest: b.OpenInterest,
			Gateway:      b.Gateway,
		})
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"}, {Name: "exchange"}, {Name: "interval"}, {Name: "datetime"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"open_price", "high_price", "low_price", "close_price",
			"volume", "turnover", "open_interest", "gateway",
		}),
	}).CreateInBatches(rows, saveBatchSize).Error
}

type overviewRow struct {
	Symbol   string    `gorm:"column:symbol"`
	Exchange string    `gorm:"column:exchange"`
	Interval string    `gorm:"column:interval"`
	Count    int64     `gorm:"column:bar_count"`
	Start    time.Time `gorm:"column:start_time"`
	End      time.Time `gorm:"column:end_time"`
}

// GetBarOverview lists every stored series with its count and range.
func (s *SQLiteStore) GetBarOverview() ([]BarOverview, error) {
	var rows []overviewRow
	err := s.db.Model(&barModel{}).
		Select("symbol, exchange, interval, count(*) as bar_count, min(datetime) as start_time, max(datetime) as end_time").
		Group("symbol").Group("exchange").Group("interval").
		Order("symbol").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]BarOverview, 0, len(rows))
	for _, r := range rows {
		out = append(out, BarOverview{
			Symbol:   r.Symbol,
			Exchange: model.Exchange(r.Exchange),
			Interval: model.Interval(r.Interval),
			Count:    r.Count,
			Start:    r.Start,
			End:      r.End,
		})
	}
	return out, nil
}

// DeleteBarData removes one series and reports how many bars went.
func (s *SQLiteStore) DeleteBarData(symbol string, ex model.Exchange, iv model.Interval) (int64, error) {
	tx := s.db.
		Where("symbol = ? AND exchange = ? AND interval = ?", symbol, string(ex), string(iv)).
		Delete(&barModel{})
	return tx.RowsAffected, tx.Error
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
