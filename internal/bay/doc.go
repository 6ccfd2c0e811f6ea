// Package bay turns storage devices into enclosure bay numbers.
//
// A device's bay comes from the instance number of its host adapter
// ancestor (host3 is the fourth port). Whether the device is actually inside
// the enclosure is decided by the bus the host adapter hangs off: PCI means
// the backplane, anything else (USB bridges, for example) means an external
// device that merely shares the numbering.
//
// Because external controllers may claim the lowest host numbers, the
// Resolver carries an offset that Reconcile calibrates once from the devices
// present at startup, so bay 1 is always the first real enclosure bay.
package bay
