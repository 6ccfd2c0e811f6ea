package preflight

import (
	"context"

	"baylight/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckPrivileges(),
		CheckSysfs(cfg.Paths.SysfsRoot),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckIndicator(cfg),
	}
	if cfg.Metrics.Bind != "" {
		results = append(results, CheckMetricsBind(ctx, cfg.Metrics.Bind))
	}
	return results
}
