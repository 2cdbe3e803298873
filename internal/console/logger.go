package console

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns a timestamped logger at the named level. An unknown
// level falls back to info and is reported through the returned logger.
func NewLogger(w io.Writer, prefix, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
