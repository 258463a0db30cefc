// Package commissioning implements the network commissioning server that sits
// in front of a netcomm.Driver.
//
// # Overview
//
// A commissioner configures the device's mesh network in a session guarded
// by a fail-safe:
//
//  1. ArmFailSafe starts (or extends) the fail-safe
//  2. AddOrUpdateNetwork stages the operational dataset
//  3. ConnectNetwork attaches to the staged network and waits for the result
//  4. CommissioningComplete commits the configuration and disarms
//
// If the fail-safe expires first, the staged configuration is reverted to the
// last committed one. Commands that change the configuration or attach are
// refused with ErrFailSafeRequired while the fail-safe is not armed.
//
// # Concurrency
//
// The driver does no locking of its own. The Server serializes every driver
// call behind one mutex, and releases it while waiting for connect and scan
// results so status changes reported by the stack are never blocked.
//
// # Wire Protocol
//
// Commands can also be sent as CBOR messages with integer keys, each
// carrying its message type under key 1. On a stream connection every
// message is prefixed with its length as a 4 byte big-endian integer:
//
//	ArmFailSafe          { 1: 1,  2: expirySeconds, 3: breadcrumb }
//	AddOrUpdateNetwork   { 1: 3,  2: dataset, 3: breadcrumb }
//	ConnectNetwork       { 1: 7,  2: networkID, 3: breadcrumb }
//	ScanNetworks         { 1: 9,  2: breadcrumb }
//
// See messages.go for the complete set.
package commissioning
