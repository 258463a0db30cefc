package commissioning

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// EncodeMessage encodes a commissioning message to CBOR bytes.
func EncodeMessage(msg any) ([]byte, error) {
	return cbor.Marshal(msg)
}

// DecodeMessage decodes CBOR bytes to the appropriate message type.
func DecodeMessage(data []byte) (any, error) {
	// First, decode just to get the message type
	var header struct {
		MsgType uint8 `cbor:"1,keyasint"`
	}
	if err := cbor.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	// Decode based on message type
	switch header.MsgType {
	case MsgArmFailSafe:
		return decodeAs[ArmFailSafe](data)
	case MsgArmFailSafeResponse:
		return decodeAs[ArmFailSafeResponse](data)
	case MsgAddOrUpdateNetwork:
		return decodeAs[AddOrUpdateNetwork](data)
	case MsgRemoveNetwork:
		return decodeAs[RemoveNetwork](data)
	case MsgReorderNetwork:
		return decodeAs[ReorderNetwork](data)
	case MsgNetworkConfigResponse:
		return decodeAs[NetworkConfigResponse](data)
	case MsgConnectNetwork:
		return decodeAs[ConnectNetwork](data)
	case MsgConnectNetworkResponse:
		return decodeAs[ConnectNetworkResponse](data)
	case MsgScanNetworks:
		return decodeAs[ScanNetworks](data)
	case MsgScanNetworksResponse:
		return decodeAs[ScanNetworksResponse](data)
	case MsgCommissioningComplete:
		return decodeAs[CommissioningComplete](data)
	case MsgCommissioningCompleteResponse:
		return decodeAs[CommissioningCompleteResponse](data)
	case MsgReadAttributes:
		return decodeAs[ReadAttributes](data)
	case MsgAttributes:
		return decodeAs[AttributesReport](data)
	case MsgCommissioningError:
		return decodeAs[CommissioningError](data)
	default:
		return nil, fmt.Errorf("%w: unknown message type %d", ErrInvalidMessage, header.MsgType)
	}
}

func decodeAs[T any](data []byte) (any, error) {
	var msg T
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &msg, nil
}

// MessageType returns the message type from a decoded message.
func MessageType(msg any) uint8 {
	switch m := msg.(type) {
	case *ArmFailSafe:
		return m.MsgType
	case *ArmFailSafeResponse:
		return m.MsgType
	case *AddOrUpdateNetwork:
		return m.MsgType
	case *RemoveNetwork:
		return m.MsgType
	case *ReorderNetwork:
		return m.MsgType
	case *NetworkConfigResponse:
		return m.MsgType
	case *ConnectNetwork:
		return m.MsgType
	case *ConnectNetworkResponse:
		return m.MsgType
	case *ScanNetworks:
		return m.MsgType
	case *ScanNetworksResponse:
		return m.MsgType
	case *CommissioningComplete:
		return m.MsgType
	case *CommissioningCompleteResponse:
		return m.MsgType
	case *ReadAttributes:
		return m.MsgType
	case *AttributesReport:
		return m.MsgType
	case *CommissioningError:
		return m.MsgType
	default:
		return 0
	}
}
