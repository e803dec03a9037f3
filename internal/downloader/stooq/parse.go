package stooq

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// flexLayouts are tried, in order, for date strings that are neither
// 8-digit nor 10-char ISO.
var flexLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02",
}

// parseDate infers the date format: 8-digit YYYYMMDD, then 10-char ISO,
// then the flexible layout list. Parsed in the storage timezone.
func (d *Downloader) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == 8 && allDigits(s) {
		return time.ParseInLocation("20060102", s, d.loc)
	}
	if len(s) == 10 {
		if t, err := time.ParseInLocation("2006-01-02", s, d.loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range flexLayouts {
		if t, err := time.ParseInLocation(layout, s, d.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fieldFloat reads a numeric cell, preferring the lowercase column name
// and falling back to the capitalized variant. A missing column reads as
// 0; a present but non-numeric cell is an error (the row gets skipped).
func fieldFloat(fields map[string]any, name string) (float64, error) {
	v, ok := fields[name]
	if !ok {
		v, ok = fields[strings.ToUpper(name[:1])+name[1:]]
	}
	if !ok {
		return 0, nil
	}
	return toFloat(v)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric value %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported cell type %T", v)
	}
}
