package stooq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockloader/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvBody = `Date,Open,High,Low,Close,Volume
2023-01-03,130.28,130.9,124.17,125.07,112117500
2023-01-04,126.89,128.66,125.08,126.36,89113600
`

func TestClientUSStockHist(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	rows, err := c.USStockHist(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"aapl.us"}, gotQuery["s"])
	assert.Equal(t, []string{"d"}, gotQuery["i"])
	assert.Equal(t, "2023-01-03", rows[0].Fields["Date"])
	assert.Equal(t, "130.28", rows[0].Fields["Open"])
	assert.Equal(t, "0", rows[0].Index)
}

func TestClientUSStockHistEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	rows, err := c.USStockHist(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClientUSStockHistHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	_, err := c.USStockHist(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

// Feeding the scraped CSV rows through the downloader end to end.
func TestClientRowsConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	d := New(c, nil, nil)

	res := d.DownloadBars(context.Background(), model.NewDownloadRequest("AAPL"))
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 130.28, res.Bars[0].Open)
}
