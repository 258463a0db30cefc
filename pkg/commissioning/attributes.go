package commissioning

import (
	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// NetworkConfigResult is the response to AddOrUpdateNetwork, RemoveNetwork
// and ReorderNetwork.
// CBOR: { 1: status, 2: debugText, 3: networkIndex }
type NetworkConfigResult struct {
	Status    netcomm.Status `cbor:"1,keyasint"`
	DebugText string         `cbor:"2,keyasint,omitempty"`

	// NetworkIndex is set only on success.
	NetworkIndex *uint8 `cbor:"3,keyasint,omitempty"`
}

func newNetworkConfigResult(status netcomm.Status, debugText string, index uint8) NetworkConfigResult {
	result := NetworkConfigResult{Status: status, DebugText: debugText}
	if status == netcomm.StatusSuccess {
		result.NetworkIndex = &index
	}
	return result
}

// NetworkInfo is one entry of the Networks attribute.
// CBOR: { 1: networkID, 2: connected }
type NetworkInfo struct {
	NetworkID []byte `cbor:"1,keyasint"`
	Connected bool   `cbor:"2,keyasint"`
}

// Attributes is a snapshot of the network commissioning attributes.
type Attributes struct {
	MaxNetworks           uint8         `cbor:"1,keyasint"`
	Networks              []NetworkInfo `cbor:"2,keyasint"`
	ScanMaxTimeSeconds    uint8         `cbor:"3,keyasint"`
	ConnectMaxTimeSeconds uint8         `cbor:"4,keyasint"`
	InterfaceEnabled      bool          `cbor:"5,keyasint"`

	// Last* are unset until a connect, scan or status change is reported.
	LastNetworkingStatus  *netcomm.Status `cbor:"6,keyasint,omitempty"`
	LastNetworkID         []byte          `cbor:"7,keyasint,omitempty"`
	LastConnectErrorValue *int32          `cbor:"8,keyasint,omitempty"`

	Breadcrumb uint64 `cbor:"9,keyasint"`

	// FailSafe is the fail-safe state name.
	FailSafe string `cbor:"10,keyasint"`
}
