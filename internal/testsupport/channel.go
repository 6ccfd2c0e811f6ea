package testsupport

import (
	"context"
	"sync"

	"baylight/internal/devtree"
	"baylight/internal/monitor"
)

// Channel is a scripted monitor.Channel. Queued changes are delivered in
// order; once empty, Wait returns WaitErr if set, otherwise it calls Drained
// (once) and blocks until more changes are pushed or the context ends.
type Channel struct {
	mu      sync.Mutex
	changes []monitor.Change
	notify  chan struct{}
	closed  int

	WaitErr error
	Drained func()
	drained bool

	// Tree is the device tree passed to the opener.
	Tree *devtree.Tree
}

var _ monitor.Channel = (*Channel)(nil)

// NewChannel returns a channel preloaded with changes.
func NewChannel(changes ...monitor.Change) *Channel {
	return &Channel{changes: changes, notify: make(chan struct{}, 1)}
}

// Push queues a change and wakes a blocked Wait.
func (c *Channel) Push(change monitor.Change) {
	c.mu.Lock()
	c.changes = append(c.changes, change)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Channel) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		if len(c.changes) > 0 {
			c.mu.Unlock()
			return nil
		}
		if c.WaitErr != nil {
			err := c.WaitErr
			c.mu.Unlock()
			return err
		}
		drained := c.Drained
		fire := drained != nil && !c.drained
		c.drained = c.drained || fire
		c.mu.Unlock()

		if fire {
			drained()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.notify:
		}
	}
}

func (c *Channel) Receive() (monitor.Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.changes) == 0 {
		return monitor.Change{}, monitor.ErrNoRecord
	}
	change := c.changes[0]
	c.changes = c.changes[1:]
	return change, nil
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

// Closed reports how many times Close was called.
func (c *Channel) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Opener returns a monitor.ChannelOpener that hands out c.
func (c *Channel) Opener() monitor.ChannelOpener {
	return func(tree *devtree.Tree, _, _ string) (monitor.Channel, error) {
		c.mu.Lock()
		c.Tree = tree
		c.mu.Unlock()
		return c, nil
	}
}

// Enumerator returns a fixed device list.
type Enumerator struct {
	Devices []devtree.Device
	Err     error
}

func (e Enumerator) Enumerate(ctx context.Context, _, _ string) ([]devtree.Device, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Devices, ctx.Err()
}
