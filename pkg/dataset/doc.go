// Package dataset implements the operational dataset format used by meshprov
// devices.
//
// A dataset carries everything a node needs to join a mesh network: channel,
// PAN ID, extended PAN ID, network name, mesh-local prefix, network key and
// PSKc, plus the active timestamp and security policy. It is encoded as CBOR
// with integer keys and is limited to 254 bytes on the wire.
//
// The network-commissioning driver treats datasets as opaque blobs and only
// asks this package, through Parser, whether a blob is complete and which
// extended PAN ID it belongs to.
package dataset
