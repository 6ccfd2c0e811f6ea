package testsupport

import (
	"sync"

	"baylight/internal/indicator"
)

// IndicatorCall is one recorded Set.
type IndicatorCall struct {
	Color indicator.Color
	Slot  int
	On    bool
}

// Indicator records calls and optionally fails them.
type Indicator struct {
	mu         sync.Mutex
	calls      []IndicatorCall
	brightness []int
	// Err, when set, is returned from every call after it is recorded.
	Err error
}

var _ indicator.Indicator = (*Indicator)(nil)

func (r *Indicator) Set(color indicator.Color, slot int, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, IndicatorCall{Color: color, Slot: slot, On: on})
	return r.Err
}

func (r *Indicator) SetBrightness(level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brightness = append(r.brightness, level)
	return r.Err
}

// Calls returns a copy of the recorded Set calls.
func (r *Indicator) Calls() []IndicatorCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]IndicatorCall(nil), r.calls...)
}

// Brightness returns the recorded SetBrightness levels.
func (r *Indicator) Brightness() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.brightness...)
}

// Reset forgets recorded calls.
func (r *Indicator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.brightness = nil
}
