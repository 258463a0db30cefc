package log

import (
	"encoding/hex"
	"time"
)

// Event represents a commissioning event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RequestID correlates the events of one connect or scan request (UUID).
	// Empty for synchronous operations.
	RequestID string `cbor:"2,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Operation that produced the event.
	Operation Operation `cbor:"5,keyasint"`

	// NetworkID is the extended PAN ID the operation targeted, if any.
	NetworkID []byte `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Result      *ResultEvent      `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	ScanResult  *ScanResultEvent  `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// NetworkIDString returns the network ID as lower-case hex, or "" when unset.
func (e Event) NetworkIDString() string {
	if len(e.NetworkID) == 0 {
		return ""
	}
	return hex.EncodeToString(e.NetworkID)
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerDriver is the network-provisioning driver.
	LayerDriver Layer = 0
	// LayerStack is the mesh stack performing attach and scan.
	LayerStack Layer = 1
	// LayerServer is the commissioning server in front of the driver.
	LayerServer Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerDriver:
		return "DRIVER"
	case LayerStack:
		return "STACK"
	case LayerServer:
		return "SERVER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryOperation indicates an operation was requested.
	CategoryOperation Category = 0
	// CategoryResult indicates an operation completed with a status.
	CategoryResult Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryOperation:
		return "OPERATION"
	case CategoryResult:
		return "RESULT"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Operation identifies what was being done when the event was captured.
type Operation uint8

const (
	OperationInit                  Operation = 0
	OperationShutdown              Operation = 1
	OperationCommit                Operation = 2
	OperationRevert                Operation = 3
	OperationAddOrUpdate           Operation = 4
	OperationRemove                Operation = 5
	OperationReorder               Operation = 6
	OperationConnect               Operation = 7
	OperationScan                  Operation = 8
	OperationAttach                Operation = 9
	OperationDetach                Operation = 10
	OperationArmFailSafe           Operation = 11
	OperationFailSafeExpired       Operation = 12
	OperationCommissioningComplete Operation = 13
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OperationInit:
		return "INIT"
	case OperationShutdown:
		return "SHUTDOWN"
	case OperationCommit:
		return "COMMIT"
	case OperationRevert:
		return "REVERT"
	case OperationAddOrUpdate:
		return "ADD_OR_UPDATE"
	case OperationRemove:
		return "REMOVE"
	case OperationReorder:
		return "REORDER"
	case OperationConnect:
		return "CONNECT"
	case OperationScan:
		return "SCAN"
	case OperationAttach:
		return "ATTACH"
	case OperationDetach:
		return "DETACH"
	case OperationArmFailSafe:
		return "ARM_FAILSAFE"
	case OperationFailSafeExpired:
		return "FAILSAFE_EXPIRED"
	case OperationCommissioningComplete:
		return "COMMISSIONING_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// ResultEvent captures the outcome of an operation.
type ResultEvent struct {
	// Status is the numeric networking status.
	Status uint8 `cbor:"1,keyasint"`

	// StatusName is the status name at the time of logging.
	StatusName string `cbor:"2,keyasint,omitempty"`

	// DebugText is the diagnostic text returned with the status.
	DebugText string `cbor:"3,keyasint,omitempty"`

	// NetworkIndex is the network index reported by CRUD operations.
	NetworkIndex *uint8 `cbor:"4,keyasint,omitempty"`

	// ConnectError is the stack-specific connect error value.
	ConnectError *int32 `cbor:"5,keyasint,omitempty"`

	// Duration from submission to completion (asynchronous results only).
	// Stored as nanoseconds.
	Duration *time.Duration `cbor:"6,keyasint,omitempty"`
}

// StateChangeEvent captures transitions of the configuration slots,
// the attach state and the fail-safe.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityStaged is the staged (working) configuration slot.
	StateEntityStaged StateEntity = 0
	// StateEntitySaved is the saved (committed) configuration slot.
	StateEntitySaved StateEntity = 1
	// StateEntityAttachment is the stack's attach state.
	StateEntityAttachment StateEntity = 2
	// StateEntityFailSafe is the commissioning fail-safe.
	StateEntityFailSafe StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityStaged:
		return "STAGED"
	case StateEntitySaved:
		return "SAVED"
	case StateEntityAttachment:
		return "ATTACHMENT"
	case StateEntityFailSafe:
		return "FAILSAFE"
	default:
		return "UNKNOWN"
	}
}

// ScanResultEvent captures one network reported by a scan.
type ScanResultEvent struct {
	NetworkName   string `cbor:"1,keyasint,omitempty"`
	ExtendedPANID []byte `cbor:"2,keyasint,omitempty"`
	PANID         uint16 `cbor:"3,keyasint"`
	Channel       uint16 `cbor:"4,keyasint"`
	RSSI          int8   `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
