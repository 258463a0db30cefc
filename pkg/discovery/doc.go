// Package discovery finds mesh border agents over mDNS/DNS-SD.
//
// Border agents advertise the _meshcop._udp service. Their TXT records name
// the mesh network they route for, so a device can list nearby networks
// without a radio scan:
//
//	nn  network name
//	xp  extended PAN ID (16 hex characters)
//	xa  border agent extended address (16 hex characters, optional)
//	tv  mesh protocol version, e.g. "1.3.0" (optional)
//	sb  state bitmap (8 hex characters, optional)
//
// Services are aggregated by instance name: addresses seen on several
// interfaces are merged into one BorderAgent, and an agent is dropped once
// all of its addresses have been removed.
//
// # Scanners
//
// A Scanner returns the networks currently visible as netcomm.ScanResponse
// values. MDNSScanner browses for a fixed window; StaticScanner returns a
// fixed list and is meant for tests and simulated stacks.
package discovery
