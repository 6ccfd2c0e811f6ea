package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const statusLabelWidth = 18

// statusReport accumulates the sections printed by "baylight status".
type statusReport struct {
	colorize bool
	lines    []string
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{colorize: shouldColorize(w)}
}

func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	heading := "== " + strings.TrimSpace(title) + " =="
	r.lines = append(r.lines,
		r.paint(statusInfo, heading),
		r.paint(statusInfo, strings.Repeat("-", len(heading))),
	)
}

func (r *statusReport) add(label string, kind statusKind, message string) {
	text := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", statusStyles[kind].label)
	if message != "" {
		text += " " + message
	}
	r.lines = append(r.lines, r.paint(kind, text))
}

func (r *statusReport) paint(kind statusKind, text string) string {
	if !r.colorize {
		return text
	}
	return statusStyles[kind].color + text + ansiReset
}

func (r *statusReport) String() string {
	return strings.Join(r.lines, "\n") + "\n"
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
