package saver

import (
	"github.com/parquet-go/parquet-go"

	"stockloader/internal/model"
)

// parquetRow is the flat serialization shape; parquet columns keep the
// short aggregate names with the identity columns spelled out.
type parquetRow struct {
	Symbol       string  `parquet:"symbol"`
	Exchange     string  `parquet:"exchange"`
	Timestamp    int64   `parquet:"t"` // Unix milliseconds
	Interval     string  `parquet:"interval"`
	Open         float64 `parquet:"o"`
	High         float64 `parquet:"h"`
	Low          float64 `parquet:"l"`
	Close        float64 `parquet:"c"`
	Volume       float64 `parquet:"v"`
	Turnover     float64 `parquet:"turnover,optional"`
	OpenInterest float64 `parquet:"oi,optional"`
	Gateway      string  `parquet:"gateway"`
}

// ParquetSaver writes packets as Parquet.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.BarRecord, path string) error {
	rows := make([]parquetRow, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, parquetRow{
			Symbol:       b.Symbol,
			Exchange:     string(b.Exchange),
			Timestamp:    b.Datetime.UnixMilli(),
			Interval:     string(b.Interval),
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
	return parquet.WriteFile(path, rows)
}
