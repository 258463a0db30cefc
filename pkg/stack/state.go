package stack

// AttachState is the simulator's attachment state.
type AttachState uint8

const (
	// StateDetached indicates the stack is not attached to any network.
	StateDetached AttachState = iota

	// StateAttaching indicates an attach is in progress.
	StateAttaching

	// StateAttached indicates the stack is attached to its provisioned network.
	StateAttached
)

// String returns a human-readable state name.
func (s AttachState) String() string {
	switch s {
	case StateDetached:
		return "DETACHED"
	case StateAttaching:
		return "ATTACHING"
	case StateAttached:
		return "ATTACHED"
	default:
		return "UNKNOWN"
	}
}

// Connect error values reported alongside a failed attach.
const (
	ConnectErrorNone     int32 = 0
	ConnectErrorNoParent int32 = 1
	ConnectErrorSecurity int32 = 2
	ConnectErrorPersist  int32 = 3
	ConnectErrorStopped  int32 = 4
)
