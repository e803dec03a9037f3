package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; stockloader/1.0)"
)

// ClientConfig configures the chart-API client. Zero values select the
// public endpoint with a 15s timeout.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the v8 chart API and yields history rows in the shape
// the downloader expects.
type Client struct {
	http *resty.Client
}

// NewClient builds a chart-API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", userAgent)
	return &Client{http: http}
}

// Ticker returns the per-symbol handle; it satisfies TickerFactory.
func (c *Client) Ticker(symbol string) Ticker {
	return &apiTicker{http: c.http, symbol: symbol}
}

type apiTicker struct {
	http   *resty.Client
	symbol string
}

// History fetches chart data and flattens it into rows. Null quote
// entries are left out of the value map so the absent-column default
// applies downstream.
func (t *apiTicker) History(ctx context.Context, p HistoryParams) ([]Row, error) {
	req := t.http.R().
		SetContext(ctx).
		SetQueryParam("interval", p.Interval).
		SetQueryParam("includePrePost", strconv.FormatBool(p.PrePost))
	if p.Actions {
		req.SetQueryParam("events", "div,splits")
	}
	if p.Start.IsZero() && p.End.IsZero() {
		req.SetQueryParam("range", "max")
	} else {
		start := p.Start
		if start.IsZero() {
			start = time.Unix(0, 0)
		}
		end := p.End
		if end.IsZero() {
			end = time.Now()
		}
		req.SetQueryParam("period1", strconv.FormatInt(start.Unix(), 10))
		req.SetQueryParam("period2", strconv.FormatInt(end.Unix(), 10))
	}

	resp, err := req.Get("/v8/finance/chart/" + url.PathEscape(t.symbol))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chart API status %s", resp.Status())
	}

	body := resp.Body()
	if apiErr := gjson.GetBytes(body, "chart.error.description"); apiErr.String() != "" {
		return nil, fmt.Errorf("chart API error: %s", apiErr.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, nil
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	if p.AutoAdjust {
		if adj := result.Get("indicators.adjclose.0.adjclose").Array(); len(adj) == len(timestamps) {
			closes = adj
		}
	}

	rows := make([]Row, 0, len(timestamps))
	for i, ts := range timestamps {
		row := Row{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Values: make(map[string]float64, 5),
		}
		setColumn(row.Values, "Open", opens, i)
		setColumn(row.Values, "High", highs, i)
		setColumn(row.Values, "Low", lows, i)
		setColumn(row.Values, "Close", closes, i)
		setColumn(row.Values, "Volume", volumes, i)
		rows = append(rows, row)
	}
	return rows, nil
}

func setColumn(values map[string]float64, name string, col []gjson.Result, i int) {
	if i >= len(col) || col[i].Type == gjson.Null {
		return
	}
	values[name] = col[i].Float()
}
