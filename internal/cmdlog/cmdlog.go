package cmdlog

import (
	"leadscout/internal/logging"
	"leadscout/internal/metrics"
)

// Run wraps a CLI command with metrics and a terminal log line.
func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	err := f()
	if err != nil {
		metrics.IncCommandError(cmd)
		logging.Error(cmd+"_error", map[string]any{"error": err.Error()})
	} else {
		logging.Info(cmd+"_ok", nil)
	}
	return err
}
