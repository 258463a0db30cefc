package discovery

import (
	"errors"
	"time"

	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Service type constants for mDNS.
const (
	// ServiceTypeMeshCoP is the service type advertised by border agents.
	ServiceTypeMeshCoP = "_meshcop._udp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// TXT record key constants.
const (
	TXTKeyNetworkName     = "nn" // Network name
	TXTKeyExtendedPANID   = "xp" // Extended PAN ID (hex)
	TXTKeyExtendedAddress = "xa" // Border agent extended address (hex, optional)
	TXTKeyVersion         = "tv" // Protocol version string (optional)
	TXTKeyStateBitmap     = "sb" // State bitmap (hex, optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default browse window of an MDNSScanner.
	BrowseTimeout = 5 * time.Second
)

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingRequired  = errors.New("missing required field")
)

// BorderAgent is a border agent discovered over mDNS.
type BorderAgent struct {
	// InstanceName is the mDNS service instance name.
	InstanceName string

	// Host is the hostname.
	Host string

	// Port is the MeshCoP port.
	Port uint16

	// Addresses are the IP addresses seen for the agent.
	Addresses []string

	// NetworkName is the name of the mesh network.
	NetworkName string

	// ExtendedPANID identifies the mesh network.
	ExtendedPANID netcomm.ExtendedPANID

	// ExtendedAddress is the agent's radio address, zero if not advertised.
	ExtendedAddress [8]byte

	// Version is the advertised protocol version string, empty if unknown.
	Version string

	// StateBitmap is the advertised state bitmap.
	StateBitmap uint32
}

// ScanResponse converts the agent into a scan result. mDNS does not carry
// the PAN ID, channel or link quality, so those are left zero.
func (b *BorderAgent) ScanResponse() netcomm.ScanResponse {
	return netcomm.ScanResponse{
		ExtendedPANID:   b.ExtendedPANID,
		NetworkName:     b.NetworkName,
		Version:         ProtocolVersion(b.Version),
		ExtendedAddress: b.ExtendedAddress,
	}
}

// ProtocolVersion maps a version string to the numeric protocol version
// reported in scan results. Unknown versions map to 0.
func ProtocolVersion(s string) uint8 {
	switch {
	case s == "1.1" || hasVersionPrefix(s, "1.1."):
		return 2
	case s == "1.2" || hasVersionPrefix(s, "1.2."):
		return 3
	case s == "1.3" || hasVersionPrefix(s, "1.3."):
		return 4
	case s == "1.4" || hasVersionPrefix(s, "1.4."):
		return 5
	default:
		return 0
	}
}

func hasVersionPrefix(s, prefix string) bool {
	return len(s) > len(prefix) && s[:len(prefix)] == prefix
}
