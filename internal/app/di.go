// Package app wires configuration, logging and the download manager
// together for the CLI.
package app

import (
	"log/slog"

	"stockloader/internal/config"
	"stockloader/internal/manager"
	"stockloader/internal/slogx"
)

// ProvideConfig loads config from file and environment (for Wire).
func ProvideConfig(path string) (*config.Config, error) {
	return config.Load(path)
}

// ProvideLogger builds the process logger from config (for Wire).
func ProvideLogger(cfg *config.Config) *slog.Logger {
	log := slogx.NewDefault(cfg.LogLevel)
	slog.SetDefault(log)
	return log
}

// ProvideManager builds the download manager with the standard
// downloaders registered (for Wire). Caller must call Close when done.
func ProvideManager(cfg *config.Config, log *slog.Logger) *manager.Manager {
	return manager.New(cfg, log)
}
