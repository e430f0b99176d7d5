// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/greenlight-hq/greenlight/internal/config"
)

// New creates the logger described by cfg, writing to stdout. Every record
// carries a "service" attribute so log aggregation can tell engine
// replicas apart from other emitters.
func New(cfg config.Logging) *slog.Logger {
	return slog.New(newHandler(os.Stdout, cfg)).With("service", cfg.Service)
}

// newHandler picks the output format. JSON is the default; "text" is for
// local development where the JSON framing is just noise.
func newHandler(w io.Writer, cfg config.Logging) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
