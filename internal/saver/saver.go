// Package saver writes downloaded bar packets to disk in exchangeable
// formats. The manager injects an implementation; nothing below it
// depends on the concrete format.
package saver

import (
	"strings"

	"stockloader/internal/model"
)

// PacketSaver persists one packet of bars to a file.
type PacketSaver interface {
	Save(bars []model.BarRecord, path string) error
	Extension() string
}

// NewPacketSaver creates an implementation by format (csv, parquet,
// json). Returns nil if the format is not supported.
func NewPacketSaver(format string) PacketSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
