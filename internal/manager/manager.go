// Package manager routes download requests to the registered
// downloaders, optionally persists the bars and exposes introspection
// over sources and the store.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"stockloader/internal/config"
	"stockloader/internal/downloader"
	"stockloader/internal/downloader/datafeed"
	"stockloader/internal/downloader/stooq"
	"stockloader/internal/downloader/yahoo"
	"stockloader/internal/model"
	"stockloader/internal/saver"
	"stockloader/internal/store"
	"stockloader/internal/tzone"
)

// DownloadOptions describe one fetch. Zero values fall back to the
// yahoo source, NYSE, daily bars and no persistence.
type DownloadOptions struct {
	Symbol   string
	Source   model.DataSource
	Exchange model.Exchange
	Start    time.Time
	End      time.Time
	Interval model.Interval
	SaveToDB bool
}

// Info describes a registered downloader.
type Info struct {
	Name      string
	Source    model.DataSource
	Intervals []model.Interval
	Exchanges []model.Exchange
}

// Manager is the facade over downloaders, the bar store and packet
// export. Not safe for concurrent use; the store handle is created
// lazily and cached without synchronization.
type Manager struct {
	downloaders map[model.DataSource]downloader.StockDownloader
	storeCfg    store.Config
	db          store.Database
	dbFailed    bool
	packetSaver saver.PacketSaver
	exportDir   string
	log         *slog.Logger
}

// Option customizes a Manager, mainly for tests.
type Option func(*Manager)

// WithDownloader registers (or replaces) a downloader.
func WithDownloader(d downloader.StockDownloader) Option {
	return func(m *Manager) { m.downloaders[d.Source()] = d }
}

// WithDatabase injects a ready store instead of the lazy default.
func WithDatabase(db store.Database) Option {
	return func(m *Manager) { m.db = db }
}

// WithPacketSaver enables packet export of successful downloads.
func WithPacketSaver(ps saver.PacketSaver, dir string) Option {
	return func(m *Manager) {
		m.packetSaver = ps
		m.exportDir = dir
	}
}

// New builds a Manager with the three standard downloaders registered.
// The registry is fixed after construction; no dynamic registration.
func New(cfg *config.Config, log *slog.Logger, opts ...Option) *Manager {
	if log == nil {
		log = slog.Default()
	}
	loc := tzone.Load(cfg.Database.Timezone)

	yahooClient := yahoo.NewClient(yahoo.ClientConfig{
		BaseURL: cfg.Yahoo.BaseURL,
		Timeout: time.Duration(cfg.Yahoo.TimeoutSec) * time.Second,
	})
	stooqClient := stooq.NewClient(stooq.ClientConfig{
		BaseURL: cfg.Stooq.BaseURL,
		Timeout: time.Duration(cfg.Stooq.TimeoutSec) * time.Second,
	})

	m := &Manager{
		downloaders: map[model.DataSource]downloader.StockDownloader{},
		storeCfg:    store.Config{Path: cfg.Database.Path},
		log:         log,
	}
	for _, d := range []downloader.StockDownloader{
		datafeed.New(log),
		yahoo.New(yahooClient.Ticker, loc, log),
		stooq.New(stooqClient, loc, log),
	} {
		m.downloaders[d.Source()] = d
	}
	if cfg.Export.Enabled {
		if ps := saver.NewPacketSaver(cfg.Export.Format); ps != nil {
			m.packetSaver = ps
			m.exportDir = cfg.Export.Dir
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InitDataSource initializes one downloader's provider session.
func (m *Manager) InitDataSource(source model.DataSource, opts downloader.ConnectOptions) bool {
	d, ok := m.downloaders[source]
	if !ok {
		m.log.Warn("unsupported data source", "source", source)
		return false
	}
	return d.InitConnection(opts)
}

// Download fetches bars for one symbol and optionally persists and
// exports them. Persistence or export failure never flips a successful
// download; it is logged and swallowed.
func (m *Manager) Download(ctx context.Context, opts DownloadOptions) model.DownloadResult {
	opts = withDefaults(opts)
	req := model.NewDownloadRequest(opts.Symbol,
		model.WithExchange(opts.Exchange),
		model.WithInterval(opts.Interval),
		model.WithRange(opts.Start, opts.End),
	)

	d, ok := m.downloaders[opts.Source]
	if !ok {
		return model.FailedResult(req, fmt.Sprintf("unsupported data source: %s", opts.Source))
	}

	res := d.DownloadBars(ctx, req)
	if !res.Success {
		return res
	}

	if opts.SaveToDB {
		if db := m.database(); db != nil {
			if err := db.SaveBarData(res.Bars); err != nil {
				m.log.Warn("saving bars failed", "vt_symbol", req.VTSymbol, "error", err)
			} else {
				m.log.Info("bars saved", "vt_symbol", req.VTSymbol, "count", res.Count)
			}
		}
	}
	m.exportPacket(res)
	return res
}

// DownloadMany fetches several symbols strictly sequentially with the
// same options.
func (m *Manager) DownloadMany(ctx context.Context, symbols []string, opts DownloadOptions) []model.DownloadResult {
	results := make([]model.DownloadResult, 0, len(symbols))
	for _, symbol := range symbols {
		opts.Symbol = symbol
		res := m.Download(ctx, opts)
		if res.Success {
			m.log.Info("download ok", "symbol", symbol, "count", res.Count)
		} else {
			m.log.Warn("download failed", "symbol", symbol, "error", res.ErrorMsg)
		}
		results = append(results, res)
	}
	return results
}

// ValidateDownload checks a request against a source without fetching.
func (m *Manager) ValidateDownload(source model.DataSource, req model.DownloadRequest) (bool, string) {
	d, ok := m.downloaders[source]
	if !ok {
		return false, fmt.Sprintf("unsupported data source: %s", source)
	}
	return downloader.ValidateRequest(d, req)
}

// DownloaderInfo describes one registered source.
func (m *Manager) DownloaderInfo(source model.DataSource) (Info, bool) {
	d, ok := m.downloaders[source]
	if !ok {
		return Info{}, false
	}
	return Info{
		Name:      d.Name(),
		Source:    d.Source(),
		Intervals: d.SupportedIntervals(),
		Exchanges: d.SupportedExchanges(),
	}, true
}

// ListDownloaders describes every registered source in registry order.
func (m *Manager) ListDownloaders() []Info {
	infos := make([]Info, 0, len(m.downloaders))
	for _, source := range model.AllSources() {
		if info, ok := m.DownloaderInfo(source); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// GetBarOverview lists stored series.
func (m *Manager) GetBarOverview() ([]store.BarOverview, error) {
	db := m.database()
	if db == nil {
		return nil, fmt.Errorf("bar store unavailable")
	}
	return db.GetBarOverview()
}

// DeleteBarData removes a stored series and reports the bar count.
func (m *Manager) DeleteBarData(symbol string, ex model.Exchange, iv model.Interval) (int64, error) {
	db := m.database()
	if db == nil {
		return 0, fmt.Errorf("bar store unavailable")
	}
	return db.DeleteBarData(symbol, ex, iv)
}

// Close releases the cached store handle if one was opened.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// database lazily opens and caches the bar store. A failed open is
// logged once and not retried.
func (m *Manager) database() store.Database {
	if m.db != nil {
		return m.db
	}
	if m.dbFailed {
		return nil
	}
	db, err := store.Open(m.storeCfg)
	if err != nil {
		m.log.Warn("opening bar store failed", "path", m.storeCfg.Path, "error", err)
		m.dbFailed = true
		return nil
	}
	m.db = db
	return m.db
}

func (m *Manager) exportPacket(res model.DownloadResult) {
	if m.packetSaver == nil || len(res.Bars) == 0 {
		return
	}
	req := res.Request
	dir := filepath.Join(m.exportDir, req.Symbol)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Warn("creating packet dir failed", "dir", dir, "error", err)
		return
	}
	name := fmt.Sprintf("%s_%s", req.VTSymbol, req.Interval)
	if !req.Start.IsZero() && !req.End.IsZero() {
		name = fmt.Sprintf("%s_%s_to_%s", name,
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	}
	path := filepath.Join(dir, name+"."+m.packetSaver.Extension())
	if err := m.packetSaver.Save(res.Bars, path); err != nil {
		m.log.Warn("writing packet failed", "path", path, "error", err)
		return
	}
	m.log.Info("packet saved", "path", path, "count", res.Count)
}

func withDefaults(opts DownloadOptions) DownloadOptions {
	if opts.Source == "" {
		opts.Source = model.SourceYahoo
	}
	if opts.Exchange == "" {
		opts.Exchange = model.ExchangeNYSE
	}
	if opts.Interval == "" {
		opts.Interval = model.IntervalDaily
	}
	return opts
}
