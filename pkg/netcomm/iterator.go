package netcomm

import "bytes"

// Network is one entry yielded by a NetworkIterator.
type Network struct {
	NetworkID    [ExtendedPANIDLength]byte
	NetworkIDLen uint8
	Connected    bool
}

// ID returns the network ID as a slice.
func (n Network) ID() []byte {
	return bytes.Clone(n.NetworkID[:n.NetworkIDLen])
}

// NetworkIterator enumerates the configured networks of a Driver. With a
// single slot it yields at most one network, once. An iterator is single-use:
// after the first successful Next it stays exhausted even if the driver is
// re-commissioned.
type NetworkIterator struct {
	driver    *Driver
	exhausted bool
}

// Count returns the number of networks, 0 or 1.
func (it *NetworkIterator) Count() int {
	if it.driver == nil || !it.driver.staged.IsCommissioned() {
		return 0
	}
	return 1
}

// Next returns the staged network. Connected is true only when the stack is
// attached with a provision whose extended PAN ID matches the staged one;
// stack errors read as not connected.
func (it *NetworkIterator) Next() (Network, bool) {
	var n Network
	if it.exhausted || it.driver == nil || !it.driver.staged.IsCommissioned() {
		return n, false
	}

	xpanid, err := it.driver.staged.ExtendedPANID()
	if err != nil {
		return n, false
	}
	copy(n.NetworkID[:], xpanid[:])
	n.NetworkIDLen = ExtendedPANIDLength
	it.exhausted = true

	n.Connected = it.connected(xpanid)
	return n, true
}

// Release invalidates the iterator.
func (it *NetworkIterator) Release() {
	it.driver = nil
	it.exhausted = true
}

func (it *NetworkIterator) connected(staged ExtendedPANID) bool {
	stack := it.driver.stack
	if !stack.IsAttached() {
		return false
	}
	raw, err := stack.GetProvision()
	if err != nil {
		return false
	}
	current := NewNetworkConfig(it.driver.parser)
	if err := current.Init(raw); err != nil {
		return false
	}
	return MatchesNetworkID(current, staged[:]) == StatusSuccess
}
