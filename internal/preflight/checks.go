package preflight

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"baylight/internal/config"
	"baylight/internal/indicator"
)

// geteuid is replaced in tests.
var geteuid = unix.Geteuid

// CheckPrivileges reports whether the process runs as root, which the
// netlink subscription and LED writes normally require.
func CheckPrivileges() Result {
	const name = "Privileges"
	if uid := geteuid(); uid != 0 {
		return Result{Name: name, Detail: fmt.Sprintf("running as uid %d (netlink and LED writes usually need root)", uid)}
	}
	return Result{Name: name, Passed: true, Detail: "running as root"}
}

// CheckSysfs verifies that root looks like a sysfs mount.
func CheckSysfs(root string) Result {
	const name = "Sysfs"
	devices := filepath.Join(root, "devices")
	info, err := os.Stat(devices)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", devices, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", devices)}
	}
	if err := unix.Access(devices, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", devices, err)}
	}
	return Result{Name: name, Passed: true, Detail: root}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckIndicator verifies that every configured bay LED exists and is
// writable. The log driver always passes.
func CheckIndicator(cfg *config.Config) Result {
	const name = "Bay LEDs"
	if cfg.Indicator.Driver == "log" {
		return Result{Name: name, Passed: true, Detail: "log driver (no hardware)"}
	}
	color, err := indicator.ParseColor(cfg.Indicator.Color)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	leds := indicator.NewSysfs(cfg.Indicator.LEDsDir, cfg.Indicator.NamePattern, cfg.Enclosure.Bays, nil)
	var missing, readOnly []string
	found := 0
	for slot := range cfg.Enclosure.Bays {
		for _, single := range color.Each() {
			led := leds.Name(single, slot)
			brightness := filepath.Join(cfg.Indicator.LEDsDir, led, "brightness")
			if _, err := os.Stat(brightness); err != nil {
				missing = append(missing, led)
				continue
			}
			if err := unix.Access(brightness, unix.W_OK); err != nil {
				readOnly = append(readOnly, led)
				continue
			}
			found++
		}
	}
	switch {
	case len(missing) > 0:
		return Result{Name: name, Detail: fmt.Sprintf("missing in %s: %s", cfg.Indicator.LEDsDir, strings.Join(missing, ", "))}
	case len(readOnly) > 0:
		return Result{Name: name, Detail: fmt.Sprintf("not writable: %s", strings.Join(readOnly, ", "))}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d LEDs in %s", found, cfg.Indicator.LEDsDir)}
	}
}

// CheckMetricsBind verifies that the metrics address can be bound.
func CheckMetricsBind(ctx context.Context, bind string) Result {
	const name = "Metrics listener"
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", bind)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}
	_ = listener.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (available)", bind)}
}
