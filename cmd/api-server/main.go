// Command api-server runs the storefront HTTP API.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/shopfront/shopfront/internal/app"
)

func main() {
	app.Run(serve)
}

func serve(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
	cfg, err := appkg.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	return appkg.Run(ctx, lg, m, cfg)
}
