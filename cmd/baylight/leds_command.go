package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"baylight/internal/config"
	"baylight/internal/indicator"
)

func newLEDsCommand(ctx *commandContext) *cobra.Command {
	ledsCmd := &cobra.Command{
		Use:   "leds",
		Short: "Drive bay LEDs by hand",
	}
	ledsCmd.AddCommand(newLEDsSetCommand(ctx))
	ledsCmd.AddCommand(newLEDsBrightnessCommand(ctx))
	ledsCmd.AddCommand(newLEDsClearCommand(ctx))
	return ledsCmd
}

func newLEDsSetCommand(ctx *commandContext) *cobra.Command {
	var colorFlag string

	cmd := &cobra.Command{
		Use:   "set <bay> <on|off>",
		Short: "Switch one bay's indicator on or off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bayNumber, err := strconv.Atoi(args[0])
			if err != nil || bayNumber < 1 {
				return fmt.Errorf("invalid bay %q: bays are numbered from 1", args[0])
			}
			on, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			ind, cfg, err := ctx.openIndicator(cmd.Context())
			if err != nil {
				return err
			}
			color, err := indicator.ParseColor(firstNonEmpty(colorFlag, cfg.Indicator.Color))
			if err != nil {
				return err
			}
			if err := ind.Set(color, bayNumber-1, on); err != nil {
				return fmt.Errorf("bay %d: %w", bayNumber, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bay %d %s switched %s\n", bayNumber, color, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&colorFlag, "color", "", "LED color: blue, red or both (default from config)")
	return cmd
}

func newLEDsBrightnessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "brightness <level>",
		Short: fmt.Sprintf("Set indicator brightness (1-%d)", config.MaxBrightness),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid brightness %q", args[0])
			}
			ind, _, err := ctx.openIndicator(cmd.Context())
			if err != nil {
				return err
			}
			if err := ind.SetBrightness(level); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Brightness set to %d\n", level)
			return nil
		},
	}
}

func newLEDsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Switch every bay indicator off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, cfg, err := ctx.openIndicator(cmd.Context())
			if err != nil {
				return err
			}
			if err := indicator.Clear(ind, cfg.Enclosure.Bays); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d bays\n", cfg.Enclosure.Bays)
			return nil
		},
	}
}

// openIndicator opens the configured driver without waiting for LEDs to
// appear; a manual command should fail fast.
func (c *commandContext) openIndicator(ctx context.Context) (indicator.Indicator, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.cliLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	oneShot := *cfg
	oneShot.Indicator.ProbeTimeoutSeconds = 0
	ind, err := indicator.Open(ctx, &oneShot, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open indicator: %w", err)
	}
	return ind, cfg, nil
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state %q: use on or off", value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
