package devtree

import (
	"strconv"
	"strings"
)

// Device is a read-only view of one node in the device tree.
type Device interface {
	// Syspath is the absolute sysfs path identifying the device.
	Syspath() string
	// Sysname is the last element of the syspath.
	Sysname() string
	// Subsystem returns the bus or class the device belongs to, or "" when
	// the kernel does not report one.
	Subsystem() string
	// DevType returns the DEVTYPE property, or "".
	DevType() string
	// Sysnum returns the numeric instance suffix of the sysname
	// (host3 -> 3).
	Sysnum() (int, bool)
	// Attribute reads a named sysfs attribute.
	Attribute(name string) (string, bool)
	// Parent returns the immediate parent device.
	Parent() (Device, bool)
}

// AncestorWith walks up from the parent of dev and returns the first device
// whose subsystem matches and, when devtype is non-empty, whose devtype
// matches as well.
func AncestorWith(dev Device, subsystem, devtype string) (Device, bool) {
	if dev == nil {
		return nil, false
	}
	current, ok := dev.Parent()
	for ok {
		if current.Subsystem() == subsystem && (devtype == "" || current.DevType() == devtype) {
			return current, true
		}
		current, ok = current.Parent()
	}
	return nil, false
}

// Matches reports whether dev itself carries the given subsystem and devtype.
// An empty devtype matches any.
func Matches(dev Device, subsystem, devtype string) bool {
	if dev == nil {
		return false
	}
	if dev.Subsystem() != subsystem {
		return false
	}
	return devtype == "" || dev.DevType() == devtype
}

// ParseSysnum extracts the trailing decimal digits of a sysname.
func ParseSysnum(sysname string) (int, bool) {
	end := len(sysname)
	start := end
	for start > 0 && sysname[start-1] >= '0' && sysname[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(sysname[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Describe renders a short identity string for logs.
func Describe(dev Device) string {
	if dev == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(dev.Syspath())
	if subsystem := dev.Subsystem(); subsystem != "" {
		b.WriteString(" (")
		b.WriteString(subsystem)
		if devtype := dev.DevType(); devtype != "" {
			b.WriteByte('/')
			b.WriteString(devtype)
		}
		b.WriteByte(')')
	}
	return b.String()
}
