package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
	"golang.org/x/sys/unix"

	"baylight/internal/devtree"
	"baylight/internal/logging"
)

// NetlinkChannel receives udev events from the kernel netlink socket.
//
// Wait polls the socket together with an eventfd that is written when the
// context is cancelled, so a blocked wait wakes up without a timeout.
// Records that do not match the subscription, and records that cannot be
// read, are consumed inside Wait.
type NetlinkChannel struct {
	conn *netlink.UEventConn
	tree *devtree.Tree

	wakeMu sync.Mutex
	wake   int

	matcher netlink.Matcher
	logger  *slog.Logger

	pending *Change
}

// OpenNetlink connects to the udev netlink group. Failures are reported as
// *InitError.
func OpenNetlink(tree *devtree.Tree, subsystem, devtype string, logger *slog.Logger) (*NetlinkChannel, error) {
	matcher := buildMatcher(subsystem, devtype)
	if err := matcher.Compile(); err != nil {
		return nil, &InitError{Op: OpNetlinkConnect, Err: fmt.Errorf("compile matcher: %w", err)}
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, &InitError{Op: OpNetlinkConnect, Err: err}
	}
	wake, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = conn.Close()
		return nil, &InitError{Op: OpEventfd, Err: err}
	}

	return &NetlinkChannel{
		conn:    conn,
		wake:    wake,
		tree:    tree,
		matcher: matcher,
		logger:  logging.NewComponentLogger(logger, "netlink"),
	}, nil
}

// Wait blocks until a matching record is pending or ctx is done.
func (c *NetlinkChannel) Wait(ctx context.Context) error {
	if c.pending != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	signalled := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(signalled)
		c.signal()
	})
	// No signal may run after Wait returns: Close would race it on wake.
	defer func() {
		if !stop() {
			<-signalled
		}
	}()

	fds := []unix.PollFd{
		{Fd: int32(c.conn.Fd), Events: unix.POLLIN},
		{Fd: int32(c.wake), Events: unix.POLLIN},
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fds[0].Revents, fds[1].Revents = 0, 0
		n, err := unix.Poll(fds, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}
		if fds[1].Revents != 0 {
			c.drain()
			continue
		}
		if fds[0].Revents&unix.POLLNVAL != 0 {
			return errors.New("poll: netlink socket is not open")
		}
		if fds[0].Revents == 0 {
			continue
		}
		if c.read() {
			return nil
		}
	}
}

// Receive returns the record reported by the last successful Wait.
func (c *NetlinkChannel) Receive() (Change, error) {
	if c.pending == nil {
		return Change{}, ErrNoRecord
	}
	change := *c.pending
	c.pending = nil
	return change, nil
}

// Close releases the socket and the eventfd.
func (c *NetlinkChannel) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
		c.conn = nil
	}
	c.wakeMu.Lock()
	if c.wake >= 0 {
		errs = append(errs, unix.Close(c.wake))
		c.wake = -1
	}
	c.wakeMu.Unlock()
	return errors.Join(errs...)
}

// read consumes one record and reports whether it became pending.
func (c *NetlinkChannel) read() bool {
	event, err := c.conn.ReadUEvent()
	if err != nil {
		logging.WarnWithContext(c.logger, "unreadable uevent record skipped", "uevent_malformed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "kernel may have dropped events under load; re-plug the drive if its bay is wrong"),
			logging.String(logging.FieldImpact, "one device notification ignored"),
		)
		return false
	}
	if event == nil || !c.matcher.Evaluate(*event) {
		return false
	}
	devpath := event.KObj
	if devpath == "" {
		devpath = event.Env["DEVPATH"]
	}
	action := string(event.Action)
	if action == "" {
		action = event.Env["ACTION"]
	}
	c.pending = &Change{
		Action: action,
		Device: c.tree.FromUEvent(devpath, event.Env),
	}
	return true
}

func (c *NetlinkChannel) signal() {
	c.wakeMu.Lock()
	defer c.wakeMu.Unlock()
	if c.wake < 0 {
		return
	}
	var buf [8]byte
	buf[0] = 1
	_, _ = unix.Write(c.wake, buf[:])
}

func (c *NetlinkChannel) drain() {
	var buf [8]byte
	_, _ = unix.Read(c.wake, buf[:])
}

// buildMatcher selects events whose SUBSYSTEM and DEVTYPE equal the given
// values. Any action passes so the monitor can report the ones it ignores.
func buildMatcher(subsystem, devtype string) *netlink.RuleDefinitions {
	env := map[string]string{
		"SUBSYSTEM": exact(subsystem),
	}
	if devtype != "" {
		env["DEVTYPE"] = exact(devtype)
	}
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{Env: env})
	return rules
}

func exact(value string) string {
	return "^" + regexp.QuoteMeta(value) + "$"
}

// CrawlerEnumerator lists existing devices with the go-udev crawler, which
// always walks /sys/devices. Use TreeEnumerator for other mount points.
type CrawlerEnumerator struct {
	Tree   *devtree.Tree
	Logger *slog.Logger

	// crawl replaces crawler.ExistingDevices in tests.
	crawl func(queue chan crawler.Device, errs chan error, matcher netlink.Matcher) chan struct{}
}

func (e CrawlerEnumerator) Enumerate(ctx context.Context, subsystem, devtype string) ([]devtree.Device, error) {
	crawl := e.crawl
	if crawl == nil {
		crawl = crawler.ExistingDevices
	}
	queue := make(chan crawler.Device)
	errs := make(chan error, 1)
	quit := crawl(queue, errs, buildMatcher(subsystem, devtype))

	var (
		out      []devtree.Device
		crawlErr error
	)
	for {
		select {
		case <-ctx.Done():
			close(quit)
			go drainCrawl(queue, errs)
			return nil, ctx.Err()
		case err := <-errs:
			crawlErr = err
		case found, ok := <-queue:
			if !ok {
				if crawlErr == nil {
					select {
					case crawlErr = <-errs:
					default:
					}
				}
				if crawlErr != nil {
					return nil, crawlErr
				}
				return out, nil
			}
			out = append(out, e.device(found))
		}
	}
}

// drainCrawl unblocks an aborted crawl until it closes queue.
func drainCrawl(queue <-chan crawler.Device, errs <-chan error) {
	for {
		select {
		case _, ok := <-queue:
			if !ok {
				return
			}
		case <-errs:
		}
	}
}

func (e CrawlerEnumerator) device(found crawler.Device) devtree.Device {
	dev, err := e.Tree.Device(found.KObj)
	if err == nil {
		return dev
	}
	// The device vanished between the walk and the lookup; keep what the
	// crawler read so its ancestors can still be resolved.
	if e.Logger != nil {
		e.Logger.Debug("device vanished during enumeration",
			logging.String(logging.FieldSyspath, found.KObj),
			logging.Error(err),
		)
	}
	return e.Tree.FromUEvent(found.KObj, found.Env)
}
