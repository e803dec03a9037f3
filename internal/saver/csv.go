package saver

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"stockloader/internal/model"
)

// CSVSaver writes packets as CSV with one bar per row.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

var csvHeader = []string{
	"symbol", "exchange", "datetime", "interval",
	"open", "high", "low", "close",
	"volume", "turnover", "open_interest", "gateway",
}

func (CSVSaver) Save(bars []model.BarRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			b.Symbol,
			string(b.Exchange),
			b.Datetime.Format(time.RFC3339),
			string(b.Interval),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			floatStr(b.Volume),
			floatStr(b.Turnover),
			floatStr(b.OpenInterest),
			b.Gateway,
		}); err != nil {
			return err
		}
	}
	return nil
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
