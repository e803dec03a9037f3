package store

import (
	"path/filepath"
	"testing"
	"time"

	"stockloader/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "bars.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seriesBars(symbol string, ex model.Exchange, iv model.Interval, n int) []model.BarRecord {
	base := time.Date(2023, 1, 2, 16, 0, 0, 0, time.UTC)
	bars := make([]model.BarRecord, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, model.BarRecord{
			Symbol:   symbol,
			Exchange: ex,
			Datetime: base.AddDate(0, 0, i),
			Interval: iv,
			Open:     100 + float64(i),
			High:     101 + float64(i),
			Low:      99 + float64(i),
			Close:    100.5 + float64(i),
			Volume:   1000,
			Gateway:  "yahoo",
		})
	}
	return bars
}

func TestSaveAndOverview(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveBarData(seriesBars("AAPL", model.ExchangeNASDAQ, model.IntervalDaily, 3)))
	require.NoError(t, s.SaveBarData(seriesBars("KO", model.ExchangeNYSE, model.IntervalDaily, 2)))

	overview, err := s.GetBarOverview()
	require.NoError(t, err)
	require.Len(t, overview, 2)

	assert.Equal(t, "AAPL", overview[0].Symbol)
	assert.Equal(t, model.ExchangeNASDAQ, overview[0].Exchange)
	assert.Equal(t, int64(3), overview[0].Count)
	assert.True(t, overview[0].End.After(overview[0].Start))
}

// Re-saving the same series upserts instead of duplicating.
func TestSaveUpsert(t *testing.T) {
	s := openTestStore(t)

	bars := seriesBars("AAPL", model.ExchangeNASDAQ, model.IntervalDaily, 3)
	require.NoError(t, s.SaveBarData(bars))

	bars[0].Close = 123.45
	require.NoError(t, s.SaveBarData(bars))

	overview, err := s.GetBarOverview()
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, int64(3), overview[0].Count)
}

func TestSaveEmpty(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.SaveBarData(nil))
}

func TestDeleteBarData(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveBarData(seriesBars("AAPL", model.ExchangeNASDAQ, model.IntervalDaily, 3)))
	require.NoError(t, s.SaveBarData(seriesBars("AAPL", model.ExchangeNASDAQ, model.IntervalHour, 2)))

	deleted, err := s.DeleteBarData("AAPL", model.ExchangeNASDAQ, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	overview, err := s.GetBarOverview()
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, model.IntervalHour, overview[0].Interval)

	deleted, err = s.DeleteBarData("TSLA", model.ExchangeNASDAQ, model.IntervalDaily)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
