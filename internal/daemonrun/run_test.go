package daemonrun

import (
	"context"
	"strings"
	"testing"

	"baylight/internal/testsupport"
)

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunFailsWhenIndicatorMissing(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	cfg := testsupport.NewConfig(t, testsupport.WithSysfs(fs), testsupport.WithIndicatorDriver("sysfs"))
	cfg.Paths.LogDir = ""

	err := Run(context.Background(), cfg, Options{LogLevel: "error"})
	if err == nil || !strings.Contains(err.Error(), "open indicator") {
		t.Fatalf("expected open indicator error, got %v", err)
	}
}
