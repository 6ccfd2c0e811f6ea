package testsupport

import (
	"fmt"
	"path"

	"baylight/internal/devtree"
)

// Device is an in-memory devtree.Device.
type Device struct {
	path      string
	subsystem string
	devtype   string
	attrs     map[string]string
	parent    *Device
}

var _ devtree.Device = (*Device)(nil)

// NewDevice creates a detached device.
func NewDevice(syspath, subsystem, devtype string) *Device {
	return &Device{path: syspath, subsystem: subsystem, devtype: devtype, attrs: map[string]string{}}
}

// Child creates a device one level below d.
func (d *Device) Child(name, subsystem, devtype string) *Device {
	child := NewDevice(d.path+"/"+name, subsystem, devtype)
	child.parent = d
	return child
}

// WithAttr sets a sysfs attribute.
func (d *Device) WithAttr(name, value string) *Device {
	d.attrs[name] = value
	return d
}

func (d *Device) Syspath() string   { return d.path }
func (d *Device) Sysname() string   { return path.Base(d.path) }
func (d *Device) Subsystem() string { return d.subsystem }
func (d *Device) DevType() string   { return d.devtype }

func (d *Device) Sysnum() (int, bool) { return devtree.ParseSysnum(d.Sysname()) }

func (d *Device) Attribute(name string) (string, bool) {
	value, ok := d.attrs[name]
	return value, ok
}

func (d *Device) Parent() (devtree.Device, bool) {
	if d.parent == nil {
		return nil, false
	}
	return d.parent, true
}

// Controller returns a controller node on the given transport subsystem.
// An empty transport yields a node without a subsystem.
func Controller(transport string) *Device {
	switch transport {
	case "usb":
		return NewDevice("/sys/devices/pci0000:00/0000:00:14.0/usb2/2-1/2-1:1.0", "usb", "usb_interface")
	case "":
		return NewDevice("/sys/devices/pci0000:00/0000:00:1f.2/ata1", "", "")
	default:
		return NewDevice("/sys/devices/pci0000:00/0000:00:1f.2", transport, "")
	}
}

// Host returns a scsi_host numbered slot under controller, or a parentless
// host when controller is nil.
func Host(controller *Device, slot int) *Device {
	name := fmt.Sprintf("host%d", slot)
	if controller == nil {
		return NewDevice("/sys/devices/virtual/"+name, "scsi", "scsi_host")
	}
	return controller.Child(name, "scsi", "scsi_host")
}

// DiskOn returns a scsi_device (with its target) under host.
func DiskOn(host *Device, model string) *Device {
	slot, _ := host.Sysnum()
	target := host.Child(fmt.Sprintf("target%d:0:0", slot), "scsi", "scsi_target")
	return target.Child(fmt.Sprintf("%d:0:0:0", slot), "scsi", "scsi_device").WithAttr("model", model)
}

// Disk returns a drive on host slot behind a controller on transport.
func Disk(slot int, transport string) *Device {
	return DiskOn(Host(Controller(transport), slot), fmt.Sprintf("DISK-%d", slot))
}
