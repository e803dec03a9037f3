package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"stockloader/internal/config"
	"stockloader/internal/downloader"
	"stockloader/internal/manager"
	"stockloader/internal/model"
	"stockloader/internal/slogx"
)

// App holds application dependencies built by Wire.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Manager *manager.Manager
}

var configPath = flag.String("config", os.Getenv("STOCKLOADER_CONFIG"), "path to config file (optional)")

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&downloadCmd{}, "")
	subcommands.Register(&sourcesCmd{}, "")
	subcommands.Register(&overviewCmd{}, "")
	subcommands.Register(&deleteCmd{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

func buildApp() (*App, error) {
	return InitializeApp(*configPath)
}

type downloadCmd struct {
	source   string
	exchange string
	interval string
	start    string
	end      string
	save     bool
}

func (*downloadCmd) Name() string     { return "download" }
func (*downloadCmd) Synopsis() string { return "download bar history for one or more symbols" }
func (*downloadCmd) Usage() string {
	return `download [-source yahoo|stooq|datafeed] [-exchange NYSE] [-interval d|1h|1m] [-start 2023-01-01] [-end 2023-06-30] [-save] SYMBOL [SYMBOL...]:
  Fetch bars from the selected source, optionally persisting them.
`
}

func (c *downloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", string(model.SourceYahoo), "data source")
	f.StringVar(&c.exchange, "exchange", string(model.ExchangeNYSE), "listing exchange")
	f.StringVar(&c.interval, "interval", string(model.IntervalDaily), "bar interval")
	f.StringVar(&c.start, "start", "", "range start (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "range end (YYYY-MM-DD)")
	f.BoolVar(&c.save, "save", false, "save bars to the database")
}

func (c *downloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := f.Args()
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "download: at least one symbol required")
		return subcommands.ExitUsageError
	}

	a, err := buildApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Manager.Close()

	opts := manager.DownloadOptions{
		Source:   model.DataSource(c.source),
		Exchange: model.Exchange(strings.ToUpper(c.exchange)),
		Interval: model.Interval(c.interval),
		SaveToDB: c.save,
	}
	if opts.Start, err = parseDate(c.start); err != nil {
		fmt.Fprintf(os.Stderr, "download: bad -start: %v\n", err)
		return subcommands.ExitUsageError
	}
	if opts.End, err = parseDate(c.end); err != nil {
		fmt.Fprintf(os.Stderr, "download: bad -end: %v\n", err)
		return subcommands.ExitUsageError
	}

	if !a.Manager.InitDataSource(opts.Source, downloader.ConnectOptions{
		DatafeedName: a.Config.Datafeed.Name,
		Username:     a.Config.Datafeed.Username,
		Password:     a.Config.Datafeed.Password,
	}) {
		slog.Error("data source initialization failed", "source", opts.Source)
		return subcommands.ExitFailure
	}

	results := a.Manager.DownloadMany(ctx, symbols, opts)
	failed := 0
	for _, res := range results {
		if res.Success {
			fmt.Printf("%s\t%d bars\n", res.Request.VTSymbol, res.Count)
		} else {
			fmt.Printf("%s\tFAILED: %s\n", res.Request.VTSymbol, res.ErrorMsg)
			failed++
		}
	}
	if failed == len(results) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type sourcesCmd struct{}

func (*sourcesCmd) Name() string             { return "sources" }
func (*sourcesCmd) Synopsis() string         { return "list the available data sources" }
func (*sourcesCmd) Usage() string            { return "sources:\n  List data sources with their supported intervals and exchanges.\n" }
func (*sourcesCmd) SetFlags(f *flag.FlagSet) {}

func (c *sourcesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := buildApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Manager.Close()

	for _, info := range a.Manager.ListDownloaders() {
		fmt.Printf("%-10s %s\n", info.Source, info.Name)
		fmt.Printf("           intervals: %s\n", joinIntervals(info.Intervals))
		fmt.Printf("           exchanges: %s\n", joinExchanges(info.Exchanges))
	}
	return subcommands.ExitSuccess
}

type overviewCmd struct{}

func (*overviewCmd) Name() string             { return "overview" }
func (*overviewCmd) Synopsis() string         { return "list stored bar series" }
func (*overviewCmd) Usage() string            { return "overview:\n  List the bar series held in the database.\n" }
func (*overviewCmd) SetFlags(f *flag.FlagSet) {}

func (c *overviewCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := buildApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Manager.Close()

	rows, err := a.Manager.GetBarOverview()
	if err != nil {
		slog.Error("overview query failed", "error", err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Println("no bar data stored")
		return subcommands.ExitSuccess
	}
	for _, row := range rows {
		fmt.Printf("%s.%s\t%s\t%d bars\t%s .. %s\n",
			row.Symbol, row.Exchange, row.Interval, row.Count,
			row.Start.Format("2006-01-02"), row.End.Format("2006-01-02"))
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	exchange string
	interval string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a stored bar series" }
func (*deleteCmd) Usage() string {
	return "delete [-exchange NYSE] [-interval d] SYMBOL:\n  Remove one series from the database.\n"
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "exchange", string(model.ExchangeNYSE), "listing exchange")
	f.StringVar(&c.interval, "interval", string(model.IntervalDaily), "bar interval")
}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "delete: exactly one symbol required")
		return subcommands.ExitUsageError
	}

	a, err := buildApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Manager.Close()

	n, err := a.Manager.DeleteBarData(f.Arg(0), model.Exchange(strings.ToUpper(c.exchange)), model.Interval(c.interval))
	if err != nil {
		slog.Error("delete failed", "error", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deleted %d bars\n", n)
	return subcommands.ExitSuccess
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func joinIntervals(ivs []model.Interval) string {
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = string(iv)
	}
	return strings.Join(parts, ", ")
}

func joinExchanges(exs []model.Exchange) string {
	parts := make([]string, len(exs))
	for i, ex := range exs {
		parts[i] = string(ex)
	}
	return strings.Join(parts, ", ")
}
