package helpers

import (
	"time"

	"github.com/rahul/acadcore/internal/pkg/logger"
)

// ParseDuration parses a duration string, falling back to the default when
// the value is empty or malformed. Used for timeout settings read from config.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration in config, using fallback")
		return fallback
	}
	return duration
}
