package app

import (
	"strings"

	"github.com/charlesng35/otpdash/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server settings, defaulting to info.
// Non-production environments use the colourised console encoder.
func ConfigureLogging(server ServerConfig) error {
	level := strings.TrimSpace(server.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.Init(logger.Options{
		Level:       level,
		Development: !server.IsProduction(),
	})
}
