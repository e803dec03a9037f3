//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"stockloader/internal/app"
)

// InitializeApp builds App (Config + Logger + Manager) via Wire.
// Caller must call a.Manager.Close() when done.
func InitializeApp(configPath string) (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		app.ProvideManager,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
