package spatial

import (
	"log/slog"
)

// Logger receives warnings from the integration engine. When nil the
// slog default logger is used.
var Logger *slog.Logger

func logger() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}
