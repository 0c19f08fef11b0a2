package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var logLevel = &slog.LevelVar{}

func addLogFlags(flags *flag.FlagSet) {
	flags.Var(logLevelFlag{}, "log-level", "set the log level (DEBUG, INFO, WARN, ERROR)")
	flags.Var(&logFormatFlag{format: "text"}, "log-format", "set the log format (text, json)")
}

// SetupLogging installs the default slog logger writing to w.
func SetupLogging(w io.Writer, format string) {
	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

type logLevelFlag struct{}

func (logLevelFlag) Set(s string) error {
	var level slog.Level

	switch strings.ToUpper(s) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		return fmt.Errorf("unsupported log level %q provided. supported log levels are DEBUG, INFO, WARN, ERROR", s)
	}

	logLevel.Set(level)

	return nil
}

func (logLevelFlag) String() string {
	return logLevel.Level().String()
}

type logFormatFlag struct {
	format string
}

func (f *logFormatFlag) Set(s string) error {
	switch s {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q provided. supported log formats are text, json", s)
	}

	f.format = s
	SetupLogging(os.Stderr, s)

	return nil
}

func (f *logFormatFlag) String() string {
	if f == nil {
		return ""
	}

	return f.format
}
