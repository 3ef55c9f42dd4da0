package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/pagesnap/pkg/cli/config"
	"github.com/m-mizutani/pagesnap/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var runCfg runConfig
	var logger *slog.Logger

	app := &cli.Command{
		Name:    "pagesnap",
		Usage:   "Capture web page screenshots and post them on pull requests",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), runCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure(runCfg.secrets()...)
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: runCfg.run,
		Commands: []*cli.Command{
			cmdRun(&runCfg),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
