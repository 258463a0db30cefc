package commissioning

import (
	"errors"

	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Commissioning message types.
const (
	// MsgArmFailSafe arms or extends the fail-safe.
	MsgArmFailSafe uint8 = 1

	// MsgArmFailSafeResponse confirms ArmFailSafe.
	MsgArmFailSafeResponse uint8 = 2

	// MsgAddOrUpdateNetwork stages an operational dataset.
	MsgAddOrUpdateNetwork uint8 = 3

	// MsgRemoveNetwork removes the staged network.
	MsgRemoveNetwork uint8 = 4

	// MsgReorderNetwork moves the staged network.
	MsgReorderNetwork uint8 = 5

	// MsgNetworkConfigResponse answers add, remove and reorder.
	MsgNetworkConfigResponse uint8 = 6

	// MsgConnectNetwork attaches to the staged network.
	MsgConnectNetwork uint8 = 7

	// MsgConnectNetworkResponse carries the attach result.
	MsgConnectNetworkResponse uint8 = 8

	// MsgScanNetworks scans for nearby networks.
	MsgScanNetworks uint8 = 9

	// MsgScanNetworksResponse carries the scan results.
	MsgScanNetworksResponse uint8 = 10

	// MsgCommissioningComplete commits the configuration.
	MsgCommissioningComplete uint8 = 20

	// MsgCommissioningCompleteResponse confirms CommissioningComplete.
	MsgCommissioningCompleteResponse uint8 = 21

	// MsgReadAttributes requests an attribute snapshot.
	MsgReadAttributes uint8 = 30

	// MsgAttributes carries an attribute snapshot.
	MsgAttributes uint8 = 31

	// MsgCommissioningError indicates a command was refused.
	MsgCommissioningError uint8 = 255
)

// Commissioning error codes.
const (
	ErrCodeSuccess           uint8 = 0
	ErrCodeFailSafeRequired  uint8 = 1
	ErrCodeInvalidExpiry     uint8 = 2
	ErrCodeInterfaceDisabled uint8 = 3
	ErrCodeTimeout           uint8 = 4
	ErrCodeInvalidMessage    uint8 = 5
	ErrCodeNotStarted        uint8 = 6
	ErrCodeInternalError     uint8 = 255
)

// Message errors.
var (
	ErrInvalidMessage = errors.New("invalid commissioning message")
)

// ArmFailSafe arms the fail-safe for ExpirySeconds.
// CBOR: { 1: msgType, 2: expirySeconds, 3: breadcrumb }
type ArmFailSafe struct {
	MsgType       uint8  `cbor:"1,keyasint"`
	ExpirySeconds uint16 `cbor:"2,keyasint"`
	Breadcrumb    uint64 `cbor:"3,keyasint"`
}

// ArmFailSafeResponse confirms ArmFailSafe.
// CBOR: { 1: msgType, 2: errorCode, 3: debugText }
type ArmFailSafeResponse struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	ErrorCode uint8  `cbor:"2,keyasint"`
	DebugText string `cbor:"3,keyasint,omitempty"`
}

// AddOrUpdateNetwork stages Dataset.
// CBOR: { 1: msgType, 2: dataset, 3: breadcrumb }
type AddOrUpdateNetwork struct {
	MsgType    uint8   `cbor:"1,keyasint"`
	Dataset    []byte  `cbor:"2,keyasint"`
	Breadcrumb *uint64 `cbor:"3,keyasint,omitempty"`
}

// RemoveNetwork removes the network with NetworkID.
// CBOR: { 1: msgType, 2: networkID, 3: breadcrumb }
type RemoveNetwork struct {
	MsgType    uint8   `cbor:"1,keyasint"`
	NetworkID  []byte  `cbor:"2,keyasint"`
	Breadcrumb *uint64 `cbor:"3,keyasint,omitempty"`
}

// ReorderNetwork moves the network with NetworkID to NetworkIndex.
// CBOR: { 1: msgType, 2: networkID, 3: networkIndex, 4: breadcrumb }
type ReorderNetwork struct {
	MsgType      uint8   `cbor:"1,keyasint"`
	NetworkID    []byte  `cbor:"2,keyasint"`
	NetworkIndex uint8   `cbor:"3,keyasint"`
	Breadcrumb   *uint64 `cbor:"4,keyasint,omitempty"`
}

// NetworkConfigResponse answers add, remove and reorder.
// CBOR: { 1: msgType, 2: result }
type NetworkConfigResponse struct {
	MsgType uint8               `cbor:"1,keyasint"`
	Result  NetworkConfigResult `cbor:"2,keyasint"`
}

// ConnectNetwork attaches to the network with NetworkID.
// CBOR: { 1: msgType, 2: networkID, 3: breadcrumb }
type ConnectNetwork struct {
	MsgType    uint8   `cbor:"1,keyasint"`
	NetworkID  []byte  `cbor:"2,keyasint"`
	Breadcrumb *uint64 `cbor:"3,keyasint,omitempty"`
}

// ConnectNetworkResponse carries the attach result.
// CBOR: { 1: msgType, 2: status, 3: debugText, 4: errorValue }
type ConnectNetworkResponse struct {
	MsgType    uint8          `cbor:"1,keyasint"`
	Status     netcomm.Status `cbor:"2,keyasint"`
	DebugText  string         `cbor:"3,keyasint,omitempty"`
	ErrorValue int32          `cbor:"4,keyasint"`
}

// ScanNetworks scans for nearby networks.
// CBOR: { 1: msgType, 2: breadcrumb }
type ScanNetworks struct {
	MsgType    uint8   `cbor:"1,keyasint"`
	Breadcrumb *uint64 `cbor:"2,keyasint,omitempty"`
}

// ScanEntry is one network in a ScanNetworksResponse.
// CBOR: { 1: panID, 2: extendedPANID, 3: networkName, 4: channel, 5: version,
// 6: extendedAddress, 7: rssi, 8: lqi }
type ScanEntry struct {
	PANID           uint16 `cbor:"1,keyasint"`
	ExtendedPANID   []byte `cbor:"2,keyasint"`
	NetworkName     string `cbor:"3,keyasint"`
	Channel         uint16 `cbor:"4,keyasint"`
	Version         uint8  `cbor:"5,keyasint"`
	ExtendedAddress []byte `cbor:"6,keyasint"`
	RSSI            int8   `cbor:"7,keyasint"`
	LQI             uint8  `cbor:"8,keyasint"`
}

// ScanNetworksResponse carries the scan results.
// CBOR: { 1: msgType, 2: status, 3: debugText, 4: networks }
type ScanNetworksResponse struct {
	MsgType   uint8          `cbor:"1,keyasint"`
	Status    netcomm.Status `cbor:"2,keyasint"`
	DebugText string         `cbor:"3,keyasint,omitempty"`
	Networks  []ScanEntry    `cbor:"4,keyasint"`
}

// CommissioningComplete commits the staged configuration.
// CBOR: { 1: msgType }
type CommissioningComplete struct {
	MsgType uint8 `cbor:"1,keyasint"`
}

// CommissioningCompleteResponse confirms CommissioningComplete.
// CBOR: { 1: msgType, 2: errorCode, 3: debugText }
type CommissioningCompleteResponse struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	ErrorCode uint8  `cbor:"2,keyasint"`
	DebugText string `cbor:"3,keyasint,omitempty"`
}

// ReadAttributes requests an attribute snapshot.
// CBOR: { 1: msgType }
type ReadAttributes struct {
	MsgType uint8 `cbor:"1,keyasint"`
}

// AttributesReport carries an attribute snapshot.
// CBOR: { 1: msgType, 2: attributes }
type AttributesReport struct {
	MsgType    uint8      `cbor:"1,keyasint"`
	Attributes Attributes `cbor:"2,keyasint"`
}

// CommissioningError indicates a command was refused.
// CBOR: { 1: msgType, 2: errorCode, 3: message }
type CommissioningError struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	ErrorCode uint8  `cbor:"2,keyasint"`
	Message   string `cbor:"3,keyasint,omitempty"`
}

// Error implements error.
func (e *CommissioningError) Error() string {
	return "commissioning error " + errorCodeName(e.ErrorCode) + ": " + e.Message
}

func errorCodeName(code uint8) string {
	switch code {
	case ErrCodeSuccess:
		return "SUCCESS"
	case ErrCodeFailSafeRequired:
		return "FAILSAFE_REQUIRED"
	case ErrCodeInvalidExpiry:
		return "INVALID_EXPIRY"
	case ErrCodeInterfaceDisabled:
		return "INTERFACE_DISABLED"
	case ErrCodeTimeout:
		return "TIMEOUT"
	case ErrCodeInvalidMessage:
		return "INVALID_MESSAGE"
	case ErrCodeNotStarted:
		return "NOT_STARTED"
	default:
		return "INTERNAL_ERROR"
	}
}

func scanEntry(n netcomm.ScanResponse) ScanEntry {
	return ScanEntry{
		PANID:           n.PANID,
		ExtendedPANID:   n.ExtendedPANID.Bytes(),
		NetworkName:     n.NetworkName,
		Channel:         n.Channel,
		Version:         n.Version,
		ExtendedAddress: append([]byte(nil), n.ExtendedAddress[:]...),
		RSSI:            n.RSSI,
		LQI:             n.LQI,
	}
}
