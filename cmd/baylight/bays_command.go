package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"baylight/internal/bay"
	"baylight/internal/config"
	"baylight/internal/daemon"
	"baylight/internal/devtree"
	"baylight/internal/monitor"
)

// bayRow describes one storage device found by a survey.
type bayRow struct {
	Bay     int
	Index   bay.Index
	Model   string
	Syspath string
}

type baySurvey struct {
	Rows   []bayRow
	Offset int
}

func newBaysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bays",
		Short: "List storage devices and the bays they resolve to",
		Long: "Enumerate the storage devices present now, calibrate the bay offset the way\n" +
			"the daemon does at startup, and print the result. LEDs are not touched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.cliLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			survey, err := surveyBays(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSurvey(survey))
			return nil
		},
	}
}

// surveyBays enumerates existing devices and reconciles them. A nil
// enumerator selects the one the daemon would use.
func surveyBays(ctx context.Context, cfg *config.Config, enumerator monitor.Enumerator, logger *slog.Logger) (baySurvey, error) {
	monitorCfg, err := daemon.MonitorConfig(cfg)
	if err != nil {
		return baySurvey{}, err
	}
	tree, err := devtree.NewTree(monitorCfg.SysfsRoot)
	if err != nil {
		return baySurvey{}, &monitor.InitError{Op: monitor.OpOpenTree, Err: err}
	}
	if enumerator == nil {
		enumerator = monitor.DefaultEnumerator(tree, logger)
	}
	devices, err := enumerator.Enumerate(ctx, monitorCfg.Subsystem, monitorCfg.DevType)
	if err != nil {
		return baySurvey{}, &monitor.InitError{Op: monitor.OpEnumerate, Err: err}
	}

	resolver := bay.NewResolver(monitorCfg.Topology, logger)
	rows := make([]bayRow, 0, len(devices))
	for _, dev := range devices {
		model, _ := dev.Attribute("model")
		rows = append(rows, bayRow{Index: resolver.Resolve(dev), Model: model, Syspath: dev.Syspath()})
	}

	placed := make(map[string]int)
	for _, placement := range resolver.Reconcile(resolver.Snapshot(devices)) {
		placed[placement.Device.Syspath()] = placement.Bay
	}
	for i := range rows {
		rows[i].Bay = placed[rows[i].Syspath]
	}
	return baySurvey{Rows: rows, Offset: resolver.Offset()}, nil
}

func renderSurvey(survey baySurvey) string {
	if len(survey.Rows) == 0 {
		return "No storage devices found\n"
	}
	rows := make([][]string, 0, len(survey.Rows))
	for _, row := range survey.Rows {
		bayText := "-"
		if row.Bay > 0 {
			bayText = strconv.Itoa(row.Bay)
		}
		rows = append(rows, []string{
			bayText,
			row.Index.Kind.String(),
			strconv.Itoa(row.Index.Bay),
			yesNo(row.Index.Assumed),
			row.Model,
			row.Syspath,
		})
	}
	out := renderTable([]column{
		{title: "Bay", right: true},
		{title: "Kind"},
		{title: "Key", right: true},
		{title: "Assumed"},
		{title: "Model"},
		{title: "Device"},
	}, rows)
	return fmt.Sprintf("%s\nBay offset: %d\n", out, survey.Offset)
}
