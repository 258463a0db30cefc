package netcomm

// Status is a network commissioning status code.
// Values are fixed by the commissioning protocol; statuses the driver does not
// produce itself are passed through unmodified from the StackManager.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusOutOfRange indicates a value was outside its valid range,
	// including a dataset that could not be parsed or is not commissioned.
	StatusOutOfRange Status = 1

	// StatusBoundsExceeded indicates the network slot is occupied by a
	// different network.
	StatusBoundsExceeded Status = 2

	// StatusNetworkIDNotFound indicates the network ID does not match the
	// staged network.
	StatusNetworkIDNotFound Status = 3

	// StatusDuplicateNetworkID indicates the network ID is already present.
	StatusDuplicateNetworkID Status = 4

	// StatusNetworkNotFound indicates the network could not be found while
	// connecting.
	StatusNetworkNotFound Status = 5

	// StatusRegulatoryError indicates a regulatory domain error.
	StatusRegulatoryError Status = 6

	// StatusAuthFailure indicates the credentials were rejected.
	StatusAuthFailure Status = 7

	// StatusUnsupportedSecurity indicates an unsupported security mode.
	StatusUnsupportedSecurity Status = 8

	// StatusOtherConnectionFailure indicates any other connection failure.
	StatusOtherConnectionFailure Status = 9

	// StatusIPV6Failed indicates IPv6 configuration failed.
	StatusIPV6Failed Status = 10

	// StatusIPBindFailed indicates binding a socket failed.
	StatusIPBindFailed Status = 11

	// StatusUnknownError indicates an unclassified error.
	StatusUnknownError Status = 12
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusOutOfRange:
		return "OUT_OF_RANGE"
	case StatusBoundsExceeded:
		return "BOUNDS_EXCEEDED"
	case StatusNetworkIDNotFound:
		return "NETWORK_ID_NOT_FOUND"
	case StatusDuplicateNetworkID:
		return "DUPLICATE_NETWORK_ID"
	case StatusNetworkNotFound:
		return "NETWORK_NOT_FOUND"
	case StatusRegulatoryError:
		return "REGULATORY_ERROR"
	case StatusAuthFailure:
		return "AUTH_FAILURE"
	case StatusUnsupportedSecurity:
		return "UNSUPPORTED_SECURITY"
	case StatusOtherConnectionFailure:
		return "OTHER_CONNECTION_FAILURE"
	case StatusIPV6Failed:
		return "IPV6_FAILED"
	case StatusIPBindFailed:
		return "IP_BIND_FAILED"
	case StatusUnknownError:
		return "UNKNOWN_ERROR"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
