package bay

import "strconv"

// Kind classifies the outcome of resolving a device to a bay.
type Kind int

const (
	// Unresolvable means the device has no host adapter or no slot number
	// and must be ignored.
	Unresolvable Kind = iota
	// Internal means the device sits on the enclosure's backplane.
	Internal
	// External means the device shares the storage bus numbering but is
	// attached through another transport (USB and friends). Its number is
	// meaningful but it does not occupy a bay.
	External
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal"
	case External:
		return "external"
	default:
		return "unresolvable"
	}
}

// Index is the resolved position of a device.
type Index struct {
	Kind Kind
	// Bay is the one-based bay number: slot - offset + 1. Zero when
	// Unresolvable.
	Bay int
	// Assumed is set when the transport could not be read and the device
	// was classified Internal by default.
	Assumed bool
}

// Unresolved is the zero Index.
var Unresolved = Index{}

// InternalAt returns an Internal index for bay n.
func InternalAt(n int) Index { return Index{Kind: Internal, Bay: n} }

// ExternalAt returns an External index for bay n.
func ExternalAt(n int) Index { return Index{Kind: External, Bay: n} }

// Occupies reports whether the index refers to a usable enclosure bay.
func (i Index) Occupies() bool {
	return i.Kind == Internal && i.Bay > 0
}

// Slot returns the zero-based indicator slot for an occupied bay.
func (i Index) Slot() int {
	return i.Bay - 1
}

// Signed returns the legacy signed encoding: 0 unresolvable, +n internal,
// -n external. External indexes stay negative whatever the sign of n, which
// a negative offset can produce.
func (i Index) Signed() int {
	switch i.Kind {
	case Internal:
		return i.Bay
	case External:
		if i.Bay < 0 {
			return i.Bay
		}
		return -i.Bay
	default:
		return 0
	}
}

func (i Index) String() string {
	switch i.Kind {
	case Internal:
		if i.Assumed {
			return "internal(" + strconv.Itoa(i.Bay) + ", assumed)"
		}
		return "internal(" + strconv.Itoa(i.Bay) + ")"
	case External:
		return "external(" + strconv.Itoa(i.Bay) + ")"
	default:
		return "unresolvable"
	}
}
