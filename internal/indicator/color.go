package indicator

import (
	"fmt"
	"strings"
)

// Color is a bitmask of bay LED colors.
type Color uint8

const (
	Blue Color = 1 << iota
	Red

	// Both lights every color a bay has.
	Both = Blue | Red
)

// ParseColor accepts blue, red or both.
func ParseColor(value string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "blue":
		return Blue, nil
	case "red":
		return Red, nil
	case "both":
		return Both, nil
	default:
		return 0, fmt.Errorf("unknown indicator color %q", value)
	}
}

// Each returns the individual colors set in c, blue first.
func (c Color) Each() []Color {
	var out []Color
	for _, single := range []Color{Blue, Red} {
		if c&single != 0 {
			out = append(out, single)
		}
	}
	return out
}

func (c Color) String() string {
	switch c {
	case Blue:
		return "blue"
	case Red:
		return "red"
	case Both:
		return "both"
	case 0:
		return "none"
	default:
		return fmt.Sprintf("color(%d)", uint8(c))
	}
}
