package netcomm

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/meshprov/pkg/log"
)

// Driver limits and defaults.
const (
	// MaxNetworks is the number of network slots. Only one dataset can be
	// active at a time.
	MaxNetworks = 1

	// DefaultScanNetworkTimeout is the time a scan is expected to take at most.
	DefaultScanNetworkTimeout = 10 * time.Second

	// DefaultConnectNetworkTimeout is the time an attach is expected to take at most.
	DefaultConnectNetworkTimeout = 20 * time.Second
)

// Driver is the network-provisioning driver for a single-network mesh
// interface. It is not safe for concurrent use; see the package docs.
type Driver struct {
	stack  StackManager
	parser DatasetParser

	// staged is the working copy mutated by commissioning commands; saved is
	// the last committed copy. Both are values and never alias.
	staged NetworkConfig
	saved  NetworkConfig

	statusCallback StatusChangeCallback

	// scanStatus is the outcome of the last scan submission.
	scanStatus *Status

	scanTimeout    time.Duration
	connectTimeout time.Duration

	logger *slog.Logger
	events log.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = orDiscard(logger)
	}
}

// WithEventLogger sets the commissioning event logger.
func WithEventLogger(events log.Logger) Option {
	return func(d *Driver) {
		d.events = log.OrNoop(events)
	}
}

// WithScanTimeout overrides DefaultScanNetworkTimeout.
func WithScanTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.scanTimeout = timeout
		}
	}
}

// WithConnectTimeout overrides DefaultConnectNetworkTimeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.connectTimeout = timeout
		}
	}
}

// NewDriver creates a driver over stack. Both slots start uncommissioned
// until Init hydrates them from the stack.
func NewDriver(stack StackManager, parser DatasetParser, opts ...Option) *Driver {
	d := &Driver{
		stack:          stack,
		parser:         parser,
		staged:         NewNetworkConfig(parser),
		saved:          NewNetworkConfig(parser),
		scanTimeout:    DefaultScanNetworkTimeout,
		connectTimeout: DefaultConnectNetworkTimeout,
		logger:         orDiscard(nil),
		events:         log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init registers cb with the stack and loads the dataset the stack is
// attached with into both slots. A stack that is not attached, or whose
// provision cannot be read or parsed, leaves both slots uncommissioned; that
// is a normal startup state, not an error.
func (d *Driver) Init(cb StatusChangeCallback) error {
	d.statusCallback = cb
	d.stack.SetStatusChangeCallback(cb)

	d.staged.Clear()
	d.saved.Clear()

	if !d.stack.IsAttached() {
		d.logger.Debug("stack not attached, starting uncommissioned")
		d.logOperation(log.OperationInit, nil, StatusSuccess, "not attached")
		return nil
	}

	raw, err := d.stack.GetProvision()
	if err != nil {
		d.logger.Warn("reading current provision failed, starting uncommissioned", "error", err)
		d.logOperation(log.OperationInit, nil, StatusSuccess, "provision unavailable")
		return nil
	}
	if err := d.staged.Init(raw); err != nil {
		d.logger.Warn("current provision is not a valid dataset, starting uncommissioned", "error", err)
		d.logOperation(log.OperationInit, nil, StatusSuccess, "provision invalid")
		return nil
	}

	// Plain assignment: the array inside NetworkConfig is copied.
	d.saved = d.staged

	d.logger.Info("loaded attached network", "network_id", d.staged.describe())
	d.logSlot(log.OperationInit, log.StateEntityStaged, "UNCOMMISSIONED", d.staged.describe(), "hydrated from stack")
	d.logSlot(log.OperationInit, log.StateEntitySaved, "UNCOMMISSIONED", d.saved.describe(), "hydrated from stack")
	return nil
}

// Shutdown unregisters the status change callback. The slots are kept.
func (d *Driver) Shutdown() error {
	d.statusCallback = nil
	d.stack.SetStatusChangeCallback(nil)
	d.logOperation(log.OperationShutdown, nil, StatusSuccess, "")
	return nil
}

// CommitConfiguration makes the staged configuration the saved one.
// Persistence happens in the stack when it attaches; the driver only tracks
// which configuration is confirmed.
func (d *Driver) CommitConfiguration() error {
	old := d.saved.describe()
	d.saved = d.staged
	d.logSlot(log.OperationCommit, log.StateEntitySaved, old, d.saved.describe(), "")
	return nil
}

// RevertConfiguration discards uncommitted edits by restoring the saved
// configuration into the staged slot.
func (d *Driver) RevertConfiguration() error {
	old := d.staged.describe()
	d.staged = d.saved
	d.logSlot(log.OperationRevert, log.StateEntityStaged, old, d.staged.describe(), "")
	return nil
}

// AddOrUpdateNetwork stages dataset. It is accepted when the staged slot is
// empty or holds the same network (same extended PAN ID). The network index
// is always 0 and the debug text always empty.
func (d *Driver) AddOrUpdateNetwork(dataset []byte) (status Status, debugText string, networkIndex uint8) {
	candidate := NewNetworkConfig(d.parser)
	if err := candidate.Init(dataset); err != nil || !candidate.IsCommissioned() {
		d.logger.Debug("rejected dataset", "error", err, "commissioned", candidate.IsCommissioned())
		d.logResult(log.OperationAddOrUpdate, nil, StatusOutOfRange, 0)
		return StatusOutOfRange, "", 0
	}

	xpanid, err := candidate.ExtendedPANID()
	if err != nil {
		d.logResult(log.OperationAddOrUpdate, nil, StatusOutOfRange, 0)
		return StatusOutOfRange, "", 0
	}

	if d.staged.IsCommissioned() && MatchesNetworkID(d.staged, xpanid[:]) != StatusSuccess {
		d.logResult(log.OperationAddOrUpdate, xpanid[:], StatusBoundsExceeded, 0)
		return StatusBoundsExceeded, "", 0
	}

	old := d.staged.describe()
	d.staged = candidate
	d.logSlot(log.OperationAddOrUpdate, log.StateEntityStaged, old, d.staged.describe(), "")
	d.logResult(log.OperationAddOrUpdate, xpanid[:], StatusSuccess, 0)
	return StatusSuccess, "", 0
}

// RemoveNetwork clears the staged slot if networkID matches it.
func (d *Driver) RemoveNetwork(networkID []byte) (status Status, debugText string, networkIndex uint8) {
	status = MatchesNetworkID(d.staged, networkID)
	if status != StatusSuccess {
		d.logResult(log.OperationRemove, networkID, status, 0)
		return status, "", 0
	}

	old := d.staged.describe()
	d.staged.Clear()
	d.logSlot(log.OperationRemove, log.StateEntityStaged, old, d.staged.describe(), "")
	d.logResult(log.OperationRemove, networkID, StatusSuccess, 0)
	return StatusSuccess, "", 0
}

// ReorderNetwork validates a reorder request. With a single slot the only
// valid index is 0 and nothing changes.
func (d *Driver) ReorderNetwork(networkID []byte, index uint8) (status Status, debugText string) {
	status = MatchesNetworkID(d.staged, networkID)
	if status == StatusSuccess && index != 0 {
		status = StatusOutOfRange
	}
	d.logResult(log.OperationReorder, networkID, status, index)
	return status, ""
}

// ConnectNetwork asks the stack to attach with the staged dataset.
//
// cb is resolved exactly once. If networkID does not match the staged network
// or the stack refuses the submission, the driver resolves cb before
// returning. Otherwise the stack resolves it when the attach completes.
func (d *Driver) ConnectNetwork(networkID []byte, cb ConnectCallback) {
	reqID := uuid.NewString()
	guard := OnceConnect(&connectRecorder{
		cb:        cb,
		events:    d.events,
		requestID: reqID,
		networkID: bytes.Clone(networkID),
		started:   time.Now(),
	}, d.logger)

	d.events.Log(log.Event{
		Timestamp: time.Now(),
		RequestID: reqID,
		Layer:     log.LayerDriver,
		Category:  log.CategoryOperation,
		Operation: log.OperationConnect,
		NetworkID: bytes.Clone(networkID),
	})

	status := MatchesNetworkID(d.staged, networkID)
	if status == StatusSuccess {
		if err := d.stack.Attach(d.staged.AsBytes(), guard); err != nil {
			d.logger.Warn("attach submission failed", "error", err, "request_id", reqID)
			status = StatusUnknownError
		}
	}

	if status != StatusSuccess {
		guard.OnResult(status, "", 0)
	}
}

// ScanNetworks asks the stack to scan for nearby networks. A scan that starts
// is considered successful; the stack reports results and the final
// OnFinished. If the scan cannot start, the driver calls OnFinished with
// StatusUnknownError before returning.
func (d *Driver) ScanNetworks(cb ScanCallback) {
	reqID := uuid.NewString()
	guard := OnceScan(&scanRecorder{
		cb:        cb,
		events:    d.events,
		requestID: reqID,
		started:   time.Now(),
	}, d.logger)

	d.events.Log(log.Event{
		Timestamp: time.Now(),
		RequestID: reqID,
		Layer:     log.LayerDriver,
		Category:  log.CategoryOperation,
		Operation: log.OperationScan,
	})

	if err := d.stack.StartScan(guard); err != nil {
		d.logger.Warn("scan submission failed", "error", err, "request_id", reqID)
		d.setScanStatus(StatusUnknownError)
		guard.OnFinished(StatusUnknownError, "")
		return
	}

	// The scan always succeeds once started; the result is recorded now.
	d.setScanStatus(StatusSuccess)
}

// MatchesNetworkID compares id with the extended PAN ID of cfg.
// Returns StatusNetworkIDNotFound when cfg is uncommissioned or the IDs
// differ, and StatusUnknownError when the ID cannot be derived from cfg.
func MatchesNetworkID(cfg NetworkConfig, id []byte) Status {
	if !cfg.IsCommissioned() {
		return StatusNetworkIDNotFound
	}
	xpanid, err := cfg.ExtendedPANID()
	if err != nil {
		return StatusUnknownError
	}
	if !bytes.Equal(id, xpanid[:]) {
		return StatusNetworkIDNotFound
	}
	return StatusSuccess
}

// MaxNetworks returns the number of network slots.
func (d *Driver) MaxNetworks() int {
	return MaxNetworks
}

// ScanNetworkTimeout returns the expected upper bound of a scan.
func (d *Driver) ScanNetworkTimeout() time.Duration {
	return d.scanTimeout
}

// ConnectNetworkTimeout returns the expected upper bound of an attach.
func (d *Driver) ConnectNetworkTimeout() time.Duration {
	return d.connectTimeout
}

// LastScanStatus returns the outcome of the last scan submission.
// ok is false if no scan has been requested.
func (d *Driver) LastScanStatus() (status Status, ok bool) {
	if d.scanStatus == nil {
		return 0, false
	}
	return *d.scanStatus, true
}

// StagedExtendedPANID returns the extended PAN ID of the staged network.
func (d *Driver) StagedExtendedPANID() (ExtendedPANID, error) {
	return d.staged.ExtendedPANID()
}

// Staged returns a copy of the staged configuration.
func (d *Driver) Staged() NetworkConfig {
	return d.staged
}

// Saved returns a copy of the saved configuration.
func (d *Driver) Saved() NetworkConfig {
	return d.saved
}

// Networks returns a single-use iterator over the configured networks.
func (d *Driver) Networks() *NetworkIterator {
	return &NetworkIterator{driver: d}
}

func (d *Driver) setScanStatus(s Status) {
	d.scanStatus = &s
}

func (d *Driver) logOperation(op log.Operation, networkID []byte, status Status, debugText string) {
	d.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerDriver,
		Category:  log.CategoryResult,
		Operation: op,
		NetworkID: bytes.Clone(networkID),
		Result: &log.ResultEvent{
			Status:     uint8(status),
			StatusName: status.String(),
			DebugText:  debugText,
		},
	})
}

func (d *Driver) logResult(op log.Operation, networkID []byte, status Status, networkIndex uint8) {
	d.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerDriver,
		Category:  log.CategoryResult,
		Operation: op,
		NetworkID: bytes.Clone(networkID),
		Result: &log.ResultEvent{
			Status:       uint8(status),
			StatusName:   status.String(),
			NetworkIndex: &networkIndex,
		},
	})
}

func (d *Driver) logSlot(op log.Operation, entity log.StateEntity, oldState, newState, reason string) {
	d.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerDriver,
		Category:  log.CategoryState,
		Operation: op,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// connectRecorder logs the outcome of a connect request before forwarding it.
// It runs on whichever goroutine resolves the request and must not touch
// driver state.
type connectRecorder struct {
	cb        ConnectCallback
	events    log.Logger
	requestID string
	networkID []byte
	started   time.Time
}

func (r *connectRecorder) OnResult(status Status, debugText string, connectErr int32) {
	elapsed := time.Since(r.started)
	result := &log.ResultEvent{
		Status:     uint8(status),
		StatusName: status.String(),
		DebugText:  debugText,
		Duration:   &elapsed,
	}
	if connectErr != 0 {
		result.ConnectError = &connectErr
	}
	r.events.Log(log.Event{
		Timestamp: time.Now(),
		RequestID: r.requestID,
		Layer:     log.LayerDriver,
		Category:  log.CategoryResult,
		Operation: log.OperationConnect,
		NetworkID: r.networkID,
		Result:    result,
	})
	if r.cb != nil {
		r.cb.OnResult(status, debugText, connectErr)
	}
}

// scanRecorder logs scan results and completion before forwarding them.
type scanRecorder struct {
	cb        ScanCallback
	events    log.Logger
	requestID string
	started   time.Time
}

func (r *scanRecorder) OnNetworkFound(network ScanResponse) {
	r.events.Log(log.Event{
		Timestamp: time.Now(),
		RequestID: r.requestID,
		Layer:     log.LayerDriver,
		Category:  log.CategoryResult,
		Operation: log.OperationScan,
		NetworkID: network.ExtendedPANID.Bytes(),
		ScanResult: &log.ScanResultEvent{
			NetworkName:   network.NetworkName,
			ExtendedPANID: network.ExtendedPANID.Bytes(),
			PANID:         network.PANID,
			Channel:       network.Channel,
			RSSI:          network.RSSI,
		},
	})
	if r.cb != nil {
		r.cb.OnNetworkFound(network)
	}
}

func (r *scanRecorder) OnFinished(status Status, debugText string) {
	elapsed := time.Since(r.started)
	r.events.Log(log.Event{
		Timestamp: time.Now(),
		RequestID: r.requestID,
		Layer:     log.LayerDriver,
		Category:  log.CategoryResult,
		Operation: log.OperationScan,
		Result: &log.ResultEvent{
			Status:     uint8(status),
			StatusName: status.String(),
			DebugText:  debugText,
			Duration:   &elapsed,
		},
	})
	if r.cb != nil {
		r.cb.OnFinished(status, debugText)
	}
}
