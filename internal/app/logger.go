package app

import (
	"strings"

	"github.com/cgdb-project/cgdb/pkg/logger"
)

// ConfigureLogging installs the global logger at the configured level.
func ConfigureLogging(level string) error {
	if level = strings.TrimSpace(level); level == "" {
		level = "info"
	}
	return logger.Init(level)
}
