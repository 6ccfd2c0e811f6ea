package monitor

import (
	"context"

	"baylight/internal/devtree"
)

// Change is one live notification.
type Change struct {
	Action string
	Device devtree.Device
}

// Channel delivers storage device changes.
//
// Wait blocks until a change is pending or ctx is done, in which case it
// returns ctx.Err(). Receive returns the pending change.
type Channel interface {
	Wait(ctx context.Context) error
	Receive() (Change, error)
	Close() error
}

// ChannelOpener subscribes to changes of devices matching subsystem and
// devtype.
type ChannelOpener func(tree *devtree.Tree, subsystem, devtype string) (Channel, error)

// Enumerator lists the devices present right now.
type Enumerator interface {
	Enumerate(ctx context.Context, subsystem, devtype string) ([]devtree.Device, error)
}

// TreeEnumerator walks the sysfs tree directly. It works for any mount
// point, including test trees.
type TreeEnumerator struct {
	Tree *devtree.Tree
}

func (e TreeEnumerator) Enumerate(ctx context.Context, subsystem, devtype string) ([]devtree.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Tree.Enumerate(subsystem, devtype)
}
