package devtree

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRoot is where the kernel mounts sysfs.
const DefaultRoot = "/sys"

// Tree resolves devices under a sysfs mount.
type Tree struct {
	root string
}

// NewTree opens the sysfs tree mounted at root. The devices directory must
// exist.
func NewTree(root string) (*Tree, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = DefaultRoot
	}
	root = filepath.Clean(root)
	info, err := os.Stat(filepath.Join(root, "devices"))
	if err != nil {
		return nil, fmt.Errorf("open sysfs %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open sysfs %s: devices is not a directory", root)
	}
	return &Tree{root: root}, nil
}

// Root returns the sysfs mount point.
func (t *Tree) Root() string {
	return t.root
}

// Device loads the device at path, which may be a devpath (/devices/...) or
// an absolute syspath.
func (t *Tree) Device(path string) (Device, error) {
	syspath := t.syspath(path)
	info, err := os.Stat(syspath)
	if err != nil {
		return nil, fmt.Errorf("load device %s: %w", syspath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("load device %s: not a directory", syspath)
	}
	return t.load(syspath), nil
}

// FromUEvent builds a device from event properties. The device itself need
// not exist any more (remove events), but its ancestors are still resolved
// from sysfs.
func (t *Tree) FromUEvent(devpath string, env map[string]string) Device {
	props := make(map[string]string, len(env))
	for k, v := range env {
		props[k] = v
	}
	if devpath == "" {
		devpath = props["DEVPATH"]
	}
	return &sysfsDevice{
		tree:      t,
		syspath:   t.syspath(devpath),
		props:     props,
		subsystem: props["SUBSYSTEM"],
	}
}

// Enumerate walks the devices directory and returns every device whose
// subsystem and devtype match, ordered by syspath.
func (t *Tree) Enumerate(subsystem, devtype string) ([]Device, error) {
	base := filepath.Join(t.root, "devices")
	var out []Device
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) && path != base {
				return nil
			}
			return err
		}
		if d.IsDir() || d.Name() != "uevent" {
			return nil
		}
		dev := t.load(filepath.Dir(path))
		if Matches(dev, subsystem, devtype) {
			out = append(out, dev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", base, err)
	}
	return out, nil
}

func (t *Tree) syspath(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == t.root || strings.HasPrefix(path, t.root+"/"):
		return filepath.Clean(path)
	case strings.HasPrefix(path, DefaultRoot+"/"):
		// crawler and udev always report /sys regardless of where the tree
		// under test is mounted
		return filepath.Join(t.root, strings.TrimPrefix(path, DefaultRoot))
	default:
		return filepath.Join(t.root, path)
	}
}

func (t *Tree) load(syspath string) *sysfsDevice {
	dev := &sysfsDevice{
		tree:    t,
		syspath: syspath,
		props:   readUEvent(filepath.Join(syspath, "uevent")),
	}
	if link, err := os.Readlink(filepath.Join(syspath, "subsystem")); err == nil {
		dev.subsystem = filepath.Base(link)
	}
	return dev
}

func (t *Tree) isDevice(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "uevent"))
	return err == nil && !info.IsDir()
}

type sysfsDevice struct {
	tree      *Tree
	syspath   string
	props     map[string]string
	subsystem string
}

func (d *sysfsDevice) Syspath() string { return d.syspath }

func (d *sysfsDevice) Sysname() string { return filepath.Base(d.syspath) }

func (d *sysfsDevice) Subsystem() string { return d.subsystem }

func (d *sysfsDevice) DevType() string { return d.props["DEVTYPE"] }

func (d *sysfsDevice) Sysnum() (int, bool) { return ParseSysnum(d.Sysname()) }

func (d *sysfsDevice) Attribute(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", false
	}
	path := filepath.Join(d.syspath, name)
	info, err := os.Lstat(path)
	if err != nil {
		return "", false
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		link, err := os.Readlink(path)
		if err != nil {
			return "", false
		}
		return filepath.Base(link), true
	}
	if info.IsDir() {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(data), " \t\r\n"), true
}

func (d *sysfsDevice) Parent() (Device, bool) {
	stop := d.tree.root
	dir := filepath.Dir(d.syspath)
	for dir != stop && strings.HasPrefix(dir, stop+"/") {
		if d.tree.isDevice(dir) {
			return d.tree.load(dir), true
		}
		dir = filepath.Dir(dir)
	}
	return nil, false
}

func readUEvent(path string) map[string]string {
	props := map[string]string{}
	data, err := os.ReadFile(path)
	if err != nil {
		return props
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || key == "" {
			continue
		}
		props[key] = value
	}
	return props
}
