package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"baylight/internal/config"
	"baylight/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	debug      *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string, verbose, debug *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		debug:      debug,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// logLevel returns the level forced by --debug or --verbose, or "" to keep
// the configured one.
func (c *commandContext) logLevel() string {
	switch {
	case c.debug != nil && *c.debug:
		return "debug"
	case c.verbose != nil && *c.verbose:
		return "info"
	default:
		return ""
	}
}

// cliLogger logs to stderr only, so one-shot commands never append to the
// daemon log file.
func (c *commandContext) cliLogger(cfg *config.Config) (*slog.Logger, error) {
	level := c.logLevel()
	if level == "" {
		level = "warn"
	}
	return logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Logging.Format,
		Outputs: []string{"stderr"},
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
