package netcomm

// StackManager is the mesh stack capability the driver delegates to.
// Attach and StartScan only submit work: the returned error reports a
// submission failure, and the outcome of accepted work is delivered later
// through the callback, exactly once, usually from the stack's own goroutine.
type StackManager interface {
	// IsAttached reports whether the stack is currently attached to a network.
	IsAttached() bool

	// GetProvision returns the dataset the stack is currently provisioned with.
	GetProvision() ([]byte, error)

	// SetStatusChangeCallback registers cb for networking status changes,
	// replacing any previous registration. nil unregisters.
	SetStatusChangeCallback(cb StatusChangeCallback)

	// Attach submits an attach to the network described by dataset.
	Attach(dataset []byte, cb ConnectCallback) error

	// StartScan submits a scan for nearby networks.
	StartScan(cb ScanCallback) error
}

// ConnectCallback receives the result of a ConnectNetwork request.
type ConnectCallback interface {
	// OnResult is called exactly once per request. connectErr carries a
	// stack-specific error value, 0 when there is none.
	OnResult(status Status, debugText string, connectErr int32)
}

// ScanCallback receives the results of a ScanNetworks request.
type ScanCallback interface {
	// OnNetworkFound is called zero or more times, before OnFinished.
	OnNetworkFound(network ScanResponse)

	// OnFinished is called exactly once per request.
	OnFinished(status Status, debugText string)
}

// StatusChangeCallback receives networking status changes reported by the
// stack outside of a request, e.g. after a reattach or a detach.
type StatusChangeCallback interface {
	// OnNetworkingStatusChange reports a new networking status. networkID is
	// the extended PAN ID involved, or nil. connectErr is nil when the stack
	// has no error value to report.
	OnNetworkingStatusChange(status Status, networkID []byte, connectErr *int32)
}

// ScanResponse describes one network found by a scan.
type ScanResponse struct {
	PANID           uint16
	ExtendedPANID   ExtendedPANID
	NetworkName     string
	Channel         uint16
	Version         uint8
	ExtendedAddress [8]byte
	RSSI            int8
	LQI             uint8
}

// ConnectCallbackFunc adapts a function to ConnectCallback.
type ConnectCallbackFunc func(status Status, debugText string, connectErr int32)

// OnResult calls f.
func (f ConnectCallbackFunc) OnResult(status Status, debugText string, connectErr int32) {
	f(status, debugText, connectErr)
}

// StatusChangeFunc adapts a function to StatusChangeCallback.
type StatusChangeFunc func(status Status, networkID []byte, connectErr *int32)

// OnNetworkingStatusChange calls f.
func (f StatusChangeFunc) OnNetworkingStatusChange(status Status, networkID []byte, connectErr *int32) {
	f(status, networkID, connectErr)
}
