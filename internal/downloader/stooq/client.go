package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://stooq.com"
	defaultTimeout = 20 * time.Second
)

// ClientConfig configures the CSV scraping client. Zero values select
// the public endpoint with a 20s timeout.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client scrapes daily US-equity history as CSV. It implements the
// primary HistProvider capability.
type Client struct {
	http *resty.Client
}

// NewClient builds a scraping client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	return &Client{http: http}
}

// USStockHist fetches the full daily history for a US symbol. The
// endpoint takes no date range; callers filter client-side.
func (c *Client) USStockHist(ctx context.Context, symbol string) ([]Row, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("s", strings.ToLower(symbol)+".us").
		SetQueryParam("i", "d").
		Get("/q/d/l/")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("history endpoint status %s", resp.Status())
	}
	return parseCSVRows(resp.String())
}

// parseCSVRows turns the Date,Open,High,Low,Close,Volume payload into
// rows keyed by the header names as served. Cell values stay strings;
// the downloader coerces them.
func parseCSVRows(payload string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}
	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		fields := make(map[string]any, len(header))
		for j, name := range header {
			if j < len(record) {
				fields[name] = record[j]
			}
		}
		rows = append(rows, Row{Index: strconv.Itoa(i), Fields: fields})
	}
	return rows, nil
}
