package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// Sysfs is a writable fake sysfs mount rooted in a temp directory.
type Sysfs struct {
	t    testing.TB
	root string
}

// NewSysfs creates an empty tree with a devices directory.
func NewSysfs(t testing.TB) *Sysfs {
	t.Helper()

	root := filepath.Join(t.TempDir(), "sys")
	if err := os.MkdirAll(filepath.Join(root, "devices"), 0o755); err != nil {
		t.Fatalf("mkdir sysfs: %v", err)
	}
	return &Sysfs{t: t, root: root}
}

// Root returns the mount point.
func (s *Sysfs) Root() string {
	return s.root
}

// Path returns the absolute path for a devpath (/devices/...).
func (s *Sysfs) Path(devpath string) string {
	return filepath.Join(s.root, devpath)
}

// AddDevice creates a device directory with a uevent file. A non-empty
// subsystem becomes a subsystem symlink, as the kernel exposes it.
func (s *Sysfs) AddDevice(devpath, subsystem string, props map[string]string) string {
	s.t.Helper()

	dir := s.Path(devpath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Fatalf("mkdir %s: %v", dir, err)
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(props[k])
		b.WriteByte('\n')
	}
	s.WriteAttr(devpath, "uevent", b.String())
	if subsystem != "" {
		link := filepath.Join(dir, "subsystem")
		if err := os.Symlink(filepath.Join(s.root, "bus", subsystem), link); err != nil {
			s.t.Fatalf("symlink %s: %v", link, err)
		}
	}
	return dir
}

// AddDir creates a plain directory that is not a device (no uevent).
func (s *Sysfs) AddDir(devpath string) string {
	s.t.Helper()

	dir := s.Path(devpath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}

// WriteAttr writes an attribute file below devpath.
func (s *Sysfs) WriteAttr(devpath, name, value string) {
	s.t.Helper()

	path := filepath.Join(s.Path(devpath), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		s.t.Fatalf("write %s: %v", path, err)
	}
}

// AddLED creates an LED class device with brightness and max_brightness.
func (s *Sysfs) AddLED(name string, maxBrightness string) string {
	s.t.Helper()

	dir := filepath.Join(s.root, "class", "leds", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "brightness"), []byte("0\n"), 0o644); err != nil {
		s.t.Fatalf("write brightness: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(maxBrightness+"\n"), 0o644); err != nil {
		s.t.Fatalf("write max_brightness: %v", err)
	}
	return dir
}

// AddAHCIDisk lays out a SATA disk behind a PCI AHCI controller:
// pci -> ata port -> scsi_host -> scsi_target -> scsi_device. It returns the
// scsi_device devpath.
func (s *Sysfs) AddAHCIDisk(host int, model string) string {
	s.t.Helper()

	pci := "/devices/pci0000:00/0000:00:1f.2"
	if _, err := os.Stat(s.Path(pci)); err != nil {
		s.AddDevice(pci, "pci", map[string]string{"DRIVER": "ahci", "PCI_CLASS": "10601"})
	}
	port := pci + "/ata" + itoa(host+1)
	s.AddDevice(port, "", map[string]string{"DEVTYPE": "ata_port"})
	return s.addSCSIChain(port, host, model)
}

// AddUSBDisk lays out a USB mass-storage disk: usb interface -> scsi_host ->
// scsi_target -> scsi_device. It returns the scsi_device devpath.
func (s *Sysfs) AddUSBDisk(host int, model string) string {
	s.t.Helper()

	iface := "/devices/pci0000:00/0000:00:14.0/usb2/2-" + itoa(host) + "/2-" + itoa(host) + ":1.0"
	s.AddDevice(iface, "usb", map[string]string{"DEVTYPE": "usb_interface"})
	return s.addSCSIChain(iface, host, model)
}

// AddHBADisk lays out a disk whose scsi_host hangs directly off a PCI
// function, as SAS HBAs expose it. It returns the scsi_device devpath.
func (s *Sysfs) AddHBADisk(host int, model string) string {
	s.t.Helper()

	pci := "/devices/pci0000:00/0000:00:01.0/0000:03:00.0"
	if _, err := os.Stat(s.Path(pci)); err != nil {
		s.AddDevice(pci, "pci", map[string]string{"DRIVER": "mpt3sas"})
	}
	return s.addSCSIChain(pci, host, model)
}

func (s *Sysfs) addSCSIChain(parent string, host int, model string) string {
	hostPath := parent + "/host" + itoa(host)
	s.AddDevice(hostPath, "scsi", map[string]string{"DEVTYPE": "scsi_host"})
	target := hostPath + "/target" + itoa(host) + ":0:0"
	s.AddDevice(target, "scsi", map[string]string{"DEVTYPE": "scsi_target"})
	dev := target + "/" + itoa(host) + ":0:0:0"
	s.AddDevice(dev, "scsi", map[string]string{"DEVTYPE": "scsi_device"})
	s.WriteAttr(dev, "model", model+"\n")
	return dev
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
