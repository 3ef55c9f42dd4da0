package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/pagesnap/pkg/domain/model"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output io.Writer // os.Stdout when nil
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("PAGESNAP_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (text, json)",
			Value:       "text",
			Destination: &c.Format,
			Sources:     cli.EnvVars("PAGESNAP_LOG_FORMAT"),
		},
	}
}

// Configure configures and returns a logger. Attributes whose value contains
// one of secrets are redacted along with well-known credential fields.
func (c *Logger) Configure(secrets ...string) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.Wrap(model.ErrInvalidConfig, "invalid log level", goerr.V("level", c.Level))
	}

	masqOpts := []masq.Option{
		masq.WithFieldName("token"),
		masq.WithFieldName("Token"),
		masq.WithFieldName("private_key"),
		masq.WithFieldName("client_id"),
		masq.WithFieldName("secret_access_key"),
		masq.WithFieldPrefix("secret"),
	}
	for _, secret := range secrets {
		if secret != "" {
			masqOpts = append(masqOpts, masq.WithContain(secret))
		}
	}
	replacer := masq.New(masqOpts...)

	w := c.Output
	if w == nil {
		w = os.Stdout
	}

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replacer,
		})
	case "text", "":
		handler = tint.NewHandler(w, &tint.Options{
			Level:       level,
			ReplaceAttr: replacer,
			NoColor:     os.Getenv("NO_COLOR") != "",
		})
	default:
		return nil, goerr.Wrap(model.ErrInvalidConfig, "invalid log format", goerr.V("format", c.Format))
	}

	return slog.New(handler), nil
}
