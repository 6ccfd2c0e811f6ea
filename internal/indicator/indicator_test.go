package indicator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"baylight/internal/indicator"
	"baylight/internal/logging"
	"baylight/internal/testsupport"
)

func readBrightness(t *testing.T, ledDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(ledDir, "brightness"))
	if err != nil {
		t.Fatalf("read brightness: %v", err)
	}
	return strings.TrimSpace(string(data))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    indicator.Color
		wantErr bool
	}{
		{in: "blue", want: indicator.Blue},
		{in: " RED ", want: indicator.Red},
		{in: "both", want: indicator.Both},
		{in: "green", wantErr: true},
	}
	for _, tt := range tests {
		got, err := indicator.ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if got := indicator.Both.Each(); len(got) != 2 || got[0] != indicator.Blue || got[1] != indicator.Red {
		t.Fatalf("unexpected Each: %v", got)
	}
	if indicator.Blue != 1 || indicator.Red != 2 {
		t.Fatal("color bits changed")
	}
}

func TestSysfsSetWritesBrightness(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	blue := fs.AddLED("baylight:blue:bay2", "255")
	red := fs.AddLED("baylight:red:bay2", "1")
	leds := indicator.NewSysfs(filepath.Join(fs.Root(), "class", "leds"), "baylight:{color}:bay{bay}", 4, logging.NewNop())

	if err := leds.Set(indicator.Both, 1, true); err != nil {
		t.Fatalf("Set on: %v", err)
	}
	if got := readBrightness(t, blue); got != "255" {
		t.Fatalf("expected blue at max, got %s", got)
	}
	if got := readBrightness(t, red); got != "1" {
		t.Fatalf("expected red at max, got %s", got)
	}

	if err := leds.Set(indicator.Red, 1, false); err != nil {
		t.Fatalf("Set off: %v", err)
	}
	if got := readBrightness(t, red); got != "0" {
		t.Fatalf("expected red off, got %s", got)
	}
	if got := readBrightness(t, blue); got != "255" {
		t.Fatalf("expected blue untouched, got %s", got)
	}
}

func TestSysfsBrightnessScalesLitLEDs(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	lit := fs.AddLED("bay0-blue", "200")
	dark := fs.AddLED("bay1-blue", "200")
	leds := indicator.NewSysfs(filepath.Join(fs.Root(), "class", "leds"), "bay{slot}-{color}", 2, logging.NewNop())

	if err := leds.Set(indicator.Blue, 0, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := leds.SetBrightness(5); err != nil {
		t.Fatalf("SetBrightness: %v", err)
	}
	if got := readBrightness(t, lit); got != "100" {
		t.Fatalf("expected lit LED rescaled to 100, got %s", got)
	}
	if got := readBrightness(t, dark); got != "0" {
		t.Fatalf("expected dark LED untouched, got %s", got)
	}

	if err := leds.Set(indicator.Blue, 1, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := readBrightness(t, dark); got != "100" {
		t.Fatalf("expected new LED at configured level, got %s", got)
	}

	for _, level := range []int{0, 11, -1} {
		if err := leds.SetBrightness(level); !errors.Is(err, indicator.ErrBrightnessRange) {
			t.Fatalf("SetBrightness(%d) error = %v", level, err)
		}
	}
}

func TestSysfsBrightnessRescalesLEDsLitElsewhere(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	lit := fs.AddLED("baylight:blue:bay1", "200")
	dark := fs.AddLED("baylight:red:bay1", "200")
	if err := os.WriteFile(filepath.Join(lit, "brightness"), []byte("200\n"), 0o644); err != nil {
		t.Fatalf("write brightness: %v", err)
	}

	leds := indicator.NewSysfs(filepath.Join(fs.Root(), "class", "leds"), "baylight:{color}:bay{bay}", 2, logging.NewNop())
	if err := leds.SetBrightness(5); err != nil {
		t.Fatalf("SetBrightness: %v", err)
	}
	if got := readBrightness(t, lit); got != "100" {
		t.Fatalf("expected lit LED rescaled to 100, got %s", got)
	}
	if got := readBrightness(t, dark); got != "0" {
		t.Fatalf("expected dark LED to stay off, got %s", got)
	}
}

func TestSysfsMissingLED(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	fs.AddLED("baylight:blue:bay1", "1")
	leds := indicator.NewSysfs(filepath.Join(fs.Root(), "class", "leds"), "baylight:{color}:bay{bay}", 4, logging.NewNop())

	if err := leds.Set(indicator.Both, 0, false); err != nil {
		t.Fatalf("switching off a missing LED should succeed: %v", err)
	}
	if err := leds.Set(indicator.Red, 0, true); err == nil {
		t.Fatal("expected error lighting a missing LED")
	}
	if err := leds.Set(indicator.Blue, 4, true); !errors.Is(err, indicator.ErrSlotOutOfRange) {
		t.Fatalf("expected slot range error, got %v", err)
	}
	if err := leds.Set(indicator.Blue, -1, true); !errors.Is(err, indicator.ErrSlotOutOfRange) {
		t.Fatalf("expected slot range error, got %v", err)
	}
}

func TestOpenSysfsProbe(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	cfg := testsupport.NewConfig(t, testsupport.WithSysfs(fs), testsupport.WithIndicatorDriver("sysfs"))

	if _, err := indicator.Open(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected probe failure without LEDs")
	}

	fs.AddLED("baylight:blue:bay1", "1")
	ind, err := indicator.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := ind.(*indicator.Sysfs); !ok {
		t.Fatalf("expected sysfs driver, got %T", ind)
	}
}

func TestOpenProbeHonoursCancellation(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	cfg := testsupport.NewConfig(t, testsupport.WithSysfs(fs), testsupport.WithIndicatorDriver("sysfs"))
	cfg.Indicator.ProbeTimeoutSeconds = 60

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := indicator.Open(ctx, cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error from cancelled probe")
	}
}

func TestOpenLogDriverAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBays(3))
	ind, err := indicator.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logDriver, ok := ind.(*indicator.Log)
	if !ok {
		t.Fatalf("expected log driver, got %T", ind)
	}
	if err := logDriver.Set(indicator.Both, 2, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !logDriver.Lit(indicator.Red, 2) || !logDriver.Lit(indicator.Blue, 2) {
		t.Fatal("expected both colors lit")
	}
	if err := indicator.Clear(logDriver, 3); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if logDriver.Lit(indicator.Blue, 2) || logDriver.Lit(indicator.Red, 2) {
		t.Fatal("expected Clear to switch everything off")
	}
	if err := logDriver.SetBrightness(7); err != nil || logDriver.Brightness() != 7 {
		t.Fatalf("SetBrightness: %v (level %d)", err, logDriver.Brightness())
	}

	cfg.Indicator.Driver = "gpio"
	if _, err := indicator.Open(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestClearVisitsEverySlot(t *testing.T) {
	rec := &testsupport.Indicator{Err: errors.New("boom")}
	err := indicator.Clear(rec, 4)
	if err == nil {
		t.Fatal("expected joined error")
	}
	calls := rec.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 calls despite errors, got %d", len(calls))
	}
	for i, call := range calls {
		if call.Slot != i || call.Color != indicator.Both || call.On {
			t.Fatalf("unexpected call %d: %+v", i, call)
		}
	}
}

func TestSystemLEDSteadyAndBlink(t *testing.T) {
	fs := testsupport.NewSysfs(t)
	dir := fs.AddLED("baylight:blue:system", "255")
	if err := os.WriteFile(filepath.Join(dir, "trigger"), []byte("timer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	led := indicator.NewSystemLED(filepath.Join(fs.Root(), "class", "leds"), "baylight:blue:system", logging.NewNop())

	if err := led.Steady(); err != nil {
		t.Fatalf("Steady: %v", err)
	}
	if got := readAttr(t, dir, "trigger"); got != "none" {
		t.Fatalf("trigger = %q, want none", got)
	}
	if got := readBrightness(t, dir); got != "255" {
		t.Fatalf("brightness = %q, want 255", got)
	}

	if err := led.Blink(); err != nil {
		t.Fatalf("Blink: %v", err)
	}
	if got := readAttr(t, dir, "trigger"); got != "timer" {
		t.Fatalf("trigger = %q, want timer", got)
	}
}

func TestSystemLEDMissing(t *testing.T) {
	led := indicator.NewSystemLED(t.TempDir(), "absent", logging.NewNop())
	if err := led.Steady(); err == nil || !strings.Contains(err.Error(), "absent") {
		t.Fatalf("expected error naming the led, got %v", err)
	}
	if err := led.Blink(); err == nil {
		t.Fatal("expected Blink to fail for a missing led")
	}
}

func readAttr(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return strings.TrimSpace(string(data))
}
