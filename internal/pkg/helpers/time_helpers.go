package helpers

import (
	"time"

	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// ParseDuration parses a duration string, returns def on error.
// Config values are validated at load time, so a fallback here means a caller
// passed an unchecked value.
func ParseDuration(durationStr string, def time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("default", def).Msg("Failed to parse duration string, using default")
		return def
	}
	return duration
}
