package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"baylight/internal/monitor"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			reportError(os.Stderr, err, unix.Geteuid())
		}
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error, euid int) {
	fmt.Fprintf(w, "baylight: %v\n", err)
	var initErr *monitor.InitError
	if errors.As(err, &initErr) {
		switch initErr.Op {
		case monitor.OpOpenTree:
			fmt.Fprintln(w, "Check paths.sysfs_root points at a mounted sysfs.")
		case monitor.OpNetlinkConnect, monitor.OpEventfd:
			fmt.Fprintln(w, "The kernel refused the uevent subscription.")
		}
	}
	if euid != 0 {
		fmt.Fprintln(w, "Try running as root.")
	}
}
