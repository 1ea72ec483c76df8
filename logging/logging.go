// Package logging sets up the structured logger shared by the client
// applications.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lyrebirdhq/clientbase/errs"
)

// DefaultLevel is used when the config does not set one.
const DefaultLevel = slog.LevelInfo

// ParseLevel converts a config log level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "":
		return DefaultLevel, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", errs.ErrParameter, name)
	}
}

// New builds a text logger writing to out at the named level.
func New(out io.Writer, levelName string) (*slog.Logger, error) {
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})), nil
}

// Setup builds a stderr logger at the named level and installs it as the
// process default. Unknown level names fall back to the default level.
func Setup(levelName string) *slog.Logger {
	logger, err := New(os.Stderr, levelName)
	if err != nil {
		logger, _ = New(os.Stderr, "")
		logger.Warn("unknown log level, using default", "level", levelName)
	}
	slog.SetDefault(logger)
	return logger
}
