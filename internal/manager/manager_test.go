package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockloader/internal/config"
	"stockloader/internal/downloader"
	"stockloader/internal/model"
	"stockloader/internal/saver"
	"stockloader/internal/store"
)

type fakeDownloader struct {
	source    model.DataSource
	bars      []model.BarRecord
	errorMsg  string
	initOK    bool
	initCalls int
	lastReq   model.DownloadRequest
	calls     int
}

func (f *fakeDownloader) Name() string             { return string(f.source) + " fake" }
func (f *fakeDownloader) Source() model.DataSource { return f.source }

func (f *fakeDownloader) InitConnection(downloader.ConnectOptions) bool {
	f.initCalls++
	return f.initOK
}

func (f *fakeDownloader) DownloadBars(_ context.Context, req model.DownloadRequest) model.DownloadResult {
	f.calls++
	f.lastReq = req
	if ok, msg := downloader.ValidateRequest(f, req); !ok {
		return model.FailedResult(req, msg)
	}
	return model.NewDownloadResult(req, f.bars, f.errorMsg)
}

func (f *fakeDownloader) SupportedIntervals() []model.Interval {
	return downloader.DefaultIntervals()
}

func (f *fakeDownloader) SupportedExchanges() []model.Exchange {
	return downloader.DefaultExchanges()
}

func (f *fakeDownloader) SupportsInterval(iv model.Interval) bool {
	return downloader.SupportsInterval(f, iv)
}

type fakeDB struct {
	saved   [][]model.BarRecord
	saveErr error
	deleted int64
	closed  bool
}

func (f *fakeDB) SaveBarData(bars []model.BarRecord) error {
	f.saved = append(f.saved, bars)
	return f.saveErr
}

func (f *fakeDB) GetBarOverview() ([]store.BarOverview, error) {
	return []store.BarOverview{{Symbol: "AAPL", Exchange: model.ExchangeNYSE, Interval: model.IntervalDaily, Count: 3}}, nil
}

func (f *fakeDB) DeleteBarData(string, model.Exchange, model.Interval) (int64, error) {
	return f.deleted, nil
}

func (f *fakeDB) Close() error {
	f.closed = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Path:     filepath.Join(t.TempDir(), "bars.db"),
			Timezone: "America/New_York",
		},
	}
}

func sampleBars(n int) []model.BarRecord {
	bars := make([]model.BarRecord, 0, n)
	day := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		bars = append(bars, model.BarRecord{
			Symbol:   "AAPL",
			Exchange: model.ExchangeNYSE,
			Datetime: day.AddDate(0, 0, i),
			Interval: model.IntervalDaily,
			Open:     100 + float64(i),
			High:     101 + float64(i),
			Low:      99 + float64(i),
			Close:    100.5 + float64(i),
			Volume:   1000,
			Gateway:  "fake",
		})
	}
	return bars
}

func TestNewRegistersThreeSources(t *testing.T) {
	m := New(testConfig(t), nil)

	infos := m.ListDownloaders()
	require.Len(t, infos, 3)
	assert.Equal(t, model.SourceDatafeed, infos[0].Source)
	assert.Equal(t, model.SourceYahoo, infos[1].Source)
	assert.Equal(t, model.SourceStooq, infos[2].Source)
}

func TestDownloadRoutesBySource(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(2)}
	m := New(testConfig(t), nil, WithDownloader(fake))

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL", Source: model.SourceYahoo})

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "AAPL.NYSE", fake.lastReq.VTSymbol)
}

func TestDownloadDefaultsToYahooDaily(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(1)}
	m := New(testConfig(t), nil, WithDownloader(fake))

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL"})

	require.True(t, res.Success)
	assert.Equal(t, model.IntervalDaily, fake.lastReq.Interval)
	assert.Equal(t, model.ExchangeNYSE, fake.lastReq.Exchange)
}

func TestDownloadUnknownSource(t *testing.T) {
	m := New(testConfig(t), nil)

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL", Source: "bloomberg"})

	require.False(t, res.Success)
	assert.Equal(t, "unsupported data source: bloomberg", res.ErrorMsg)
	assert.Empty(t, res.Bars)
}

func TestDownloadUnsupportedExchange(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(1)}
	m := New(testConfig(t), nil, WithDownloader(fake))

	res := m.Download(context.Background(), DownloadOptions{
		Symbol:   "600036",
		Source:   model.SourceYahoo,
		Exchange: model.ExchangeSSE,
	})

	require.False(t, res.Success)
	assert.Equal(t, "unsupported exchange: SSE", res.ErrorMsg)
}

func TestDownloadSavesToDB(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(3)}
	db := &fakeDB{}
	m := New(testConfig(t), nil, WithDownloader(fake), WithDatabase(db))

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL", Source: model.SourceYahoo, SaveToDB: true})

	require.True(t, res.Success)
	require.Len(t, db.saved, 1)
	assert.Len(t, db.saved[0], 3)
}

func TestDownloadSaveFailureDoesNotFlipSuccess(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(1)}
	db := &fakeDB{saveErr: errors.New("disk full")}
	m := New(testConfig(t), nil, WithDownloader(fake), WithDatabase(db))

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL", Source: model.SourceYahoo, SaveToDB: true})

	require.True(t, res.Success)
	assert.Empty(t, res.ErrorMsg)
}

func TestDownloadSkipsSaveOnFailure(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, errorMsg: "no data retrieved"}
	db := &fakeDB{}
	m := New(testConfig(t), nil, WithDownloader(fake), WithDatabase(db))

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL", Source: model.SourceYahoo, SaveToDB: true})

	require.False(t, res.Success)
	assert.Empty(t, db.saved)
}

func TestDownloadExportsPacket(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(2)}
	dir := t.TempDir()
	m := New(testConfig(t), nil, WithDownloader(fake), WithPacketSaver(saver.NewPacketSaver("csv"), dir))

	start := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	res := m.Download(context.Background(), DownloadOptions{
		Symbol: "AAPL",
		Source: model.SourceYahoo,
		Start:  start,
		End:    end,
	})

	require.True(t, res.Success)
	want := filepath.Join(dir, "AAPL", "AAPL.NYSE_d_2023-01-03_to_2023-01-05.csv")
	_, err := os.Stat(want)
	assert.NoError(t, err)
}

func TestDownloadManySequential(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(1)}
	m := New(testConfig(t), nil, WithDownloader(fake))

	results := m.DownloadMany(context.Background(), []string{"AAPL", "MSFT", "GOOG"}, DownloadOptions{Source: model.SourceYahoo})

	require.Len(t, results, 3)
	assert.Equal(t, 3, fake.calls)
	for _, res := range results {
		assert.True(t, res.Success)
	}
}

func TestValidateDownload(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo}
	m := New(testConfig(t), nil, WithDownloader(fake))

	ok, msg := m.ValidateDownload(model.SourceYahoo, model.NewDownloadRequest("AAPL"))
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = m.ValidateDownload("bloomberg", model.NewDownloadRequest("AAPL"))
	assert.False(t, ok)
	assert.Equal(t, "unsupported data source: bloomberg", msg)
}

func TestInitDataSource(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, initOK: true}
	m := New(testConfig(t), nil, WithDownloader(fake))

	assert.True(t, m.InitDataSource(model.SourceYahoo, downloader.ConnectOptions{}))
	assert.Equal(t, 1, fake.initCalls)
	assert.False(t, m.InitDataSource("bloomberg", downloader.ConnectOptions{}))
}

func TestStoreOperationsThroughManager(t *testing.T) {
	db := &fakeDB{deleted: 42}
	m := New(testConfig(t), nil, WithDatabase(db))

	overview, err := m.GetBarOverview()
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, "AAPL", overview[0].Symbol)

	n, err := m.DeleteBarData("AAPL", model.ExchangeNYSE, model.IntervalDaily)
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	require.NoError(t, m.Close())
	assert.True(t, db.closed)
}

func TestDownloaderInfo(t *testing.T) {
	m := New(testConfig(t), nil)

	info, ok := m.DownloaderInfo(model.SourceStooq)
	require.True(t, ok)
	assert.Equal(t, []model.Interval{model.IntervalDaily}, info.Intervals)

	_, ok = m.DownloaderInfo("bloomberg")
	assert.False(t, ok)
}

func TestLazyStoreOpensOnDemand(t *testing.T) {
	fake := &fakeDownloader{source: model.SourceYahoo, bars: sampleBars(1)}
	cfg := testConfig(t)
	m := New(cfg, nil, WithDownloader(fake))

	res := m.Download(context.Background(), DownloadOptions{Symbol: "AAPL", Source: model.SourceYahoo, SaveToDB: true})
	require.True(t, res.Success)
	defer m.Close()

	overview, err := m.GetBarOverview()
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.EqualValues(t, 1, overview[0].Count)
}
