package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"baylight/internal/config"
	"baylight/internal/daemon"
	"baylight/internal/preflight"
)

const healthTimeout = 2 * time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state and preflight checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := newStatusReport(out)

			report.section("Daemon")
			configDetail := ctx.configPath
			if !ctx.configSeen {
				configDetail += " (not found, using defaults)"
			}
			report.add("Config", statusInfo, configDetail)
			kind, detail := daemonState(cmd.Context(), cfg)
			report.add("Daemon", kind, detail)

			report.section("Preflight")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				report.add(result.Name, kind, result.Detail)
			}
			_, err = fmt.Fprint(out, report.String())
			return err
		},
	}
}

func daemonState(ctx context.Context, cfg *config.Config) (statusKind, string) {
	held, err := lockHeld(cfg.LockPath())
	if err != nil {
		return statusWarn, fmt.Sprintf("lock %s: %v", cfg.LockPath(), err)
	}
	if !held {
		return statusWarn, "Not running"
	}
	if cfg.Metrics.Bind == "" {
		return statusOK, "Running"
	}
	status, err := fetchStatus(ctx, cfg.Metrics.Bind)
	if err != nil {
		return statusWarn, fmt.Sprintf("Running (health endpoint: %v)", err)
	}
	if !status.Running {
		return statusWarn, "Starting"
	}
	return statusOK, fmt.Sprintf("Running (run %s, %d bays, offset %d)", status.RunID, status.Bays, status.BayOffset)
}

// lockHeld reports whether another process holds the daemon lock.
func lockHeld(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	lock := flock.New(path)
	ok, err := lock.TryRLock()
	if err != nil {
		return false, err
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}

func fetchStatus(ctx context.Context, bind string) (daemon.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+bind+"/healthz", nil)
	if err != nil {
		return daemon.Status{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return daemon.Status{}, err
	}
	defer resp.Body.Close()

	var status daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return daemon.Status{}, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}
