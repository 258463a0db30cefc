package stack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mash-protocol/meshprov/pkg/dataset"
	"github.com/mash-protocol/meshprov/pkg/discovery"
	mlog "github.com/mash-protocol/meshprov/pkg/log"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
	"github.com/mash-protocol/meshprov/pkg/persistence"
)

// Simulator errors.
var (
	ErrNotRunning      = errors.New("stack not running")
	ErrBusy            = errors.New("stack request queue full")
	ErrNotProvisioned  = errors.New("stack not provisioned")
	ErrAlreadyRunning  = errors.New("stack already running")
	ErrNetworkRequired = errors.New("network must be commissioned")
)

// Defaults.
const (
	DefaultConnectTimeout = netcomm.DefaultConnectNetworkTimeout
	DefaultScanTimeout    = netcomm.DefaultScanNetworkTimeout
	DefaultQueueSize      = 4

	// ThreadVersion is the protocol version reported for simulated networks.
	ThreadVersion uint8 = 4
)

// Config configures a Simulator.
type Config struct {
	// Store persists the attached dataset. Nil keeps it in memory only.
	Store *persistence.ProvisionStore

	// Scanner serves scan requests. Nil reports the reachable networks.
	Scanner discovery.Scanner

	// ConnectTimeout bounds one attach including retries.
	ConnectTimeout time.Duration

	// ScanTimeout bounds one scan.
	ScanTimeout time.Duration

	// Backoff configures the delay between attach attempts.
	Backoff BackoffConfig

	// QueueSize is the number of attach and scan requests that may wait.
	QueueSize int

	// Logger receives operational logs. Nil disables logging.
	Logger *slog.Logger

	// Events receives stack events. Nil disables event logging.
	Events mlog.Logger
}

// Network is a network within reach of the simulated radio.
type Network struct {
	// Dataset describes the network. It must be commissioned.
	Dataset *dataset.Dataset

	// RSSI and LQI are reported by scans.
	RSSI int8
	LQI  uint8

	// JoinAttempts is the number of attach attempts that fail before the
	// network accepts the device.
	JoinAttempts int

	// ExtendedAddress is the address of the responding router.
	ExtendedAddress [8]byte
}

func (n *Network) scanResponse() netcomm.ScanResponse {
	xp, _ := n.Dataset.XPANID()
	return netcomm.ScanResponse{
		PANID:           *n.Dataset.PANID,
		ExtendedPANID:   xp,
		NetworkName:     n.Dataset.NetworkName,
		Channel:         *n.Dataset.Channel,
		Version:         ThreadVersion,
		ExtendedAddress: n.ExtendedAddress,
		RSSI:            n.RSSI,
		LQI:             n.LQI,
	}
}

type attachRequest struct {
	id        string
	raw       []byte
	dataset   *dataset.Dataset
	cb        netcomm.ConnectCallback
	submitted time.Time
}

type scanRequest struct {
	id        string
	cb        netcomm.ScanCallback
	submitted time.Time
}

// Simulator is a simulated mesh stack. It implements netcomm.StackManager.
type Simulator struct {
	config Config
	logger *slog.Logger
	events mlog.Logger

	attachQ chan *attachRequest
	scanQ   chan *scanRequest
	ready   chan struct{}

	mu        sync.Mutex
	running   bool
	stopped   bool
	state     AttachState
	provision []byte
	networks  map[netcomm.ExtendedPANID]*Network
	joins     map[netcomm.ExtendedPANID]int
	statusCB  netcomm.StatusChangeCallback
}

// NewSimulator creates a new simulated stack.
func NewSimulator(config Config) *Simulator {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = DefaultScanTimeout
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}

	s := &Simulator{
		config:   config,
		logger:   config.Logger,
		events:   mlog.OrNoop(config.Events),
		attachQ:  make(chan *attachRequest, config.QueueSize),
		scanQ:    make(chan *scanRequest, config.QueueSize),
		ready:    make(chan struct{}),
		networks: make(map[netcomm.ExtendedPANID]*Network),
		joins:    make(map[netcomm.ExtendedPANID]int),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// AddNetwork puts a network within reach, replacing one with the same
// extended PAN ID.
func (s *Simulator) AddNetwork(n Network) error {
	if n.Dataset == nil || !n.Dataset.IsCommissioned() {
		return ErrNetworkRequired
	}
	xp, err := n.Dataset.XPANID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks[xp] = &n
	delete(s.joins, xp)
	return nil
}

// RemoveNetwork takes a network out of reach. An attachment to it is lost.
func (s *Simulator) RemoveNetwork(xp netcomm.ExtendedPANID) {
	s.mu.Lock()
	delete(s.networks, xp)
	delete(s.joins, xp)
	lost := s.state == StateAttached && s.attachedTo(xp)
	s.mu.Unlock()

	if lost {
		s.detach("network out of reach")
	}
}

// Networks returns the reachable networks as scan results.
func (s *Simulator) Networks() []netcomm.ScanResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]netcomm.ScanResponse, 0, len(s.networks))
	for _, n := range s.networks {
		result = append(result, n.scanResponse())
	}
	return result
}

// Ready returns a channel that is closed once Run accepts requests.
func (s *Simulator) Ready() <-chan struct{} {
	return s.ready
}

// Run processes attach and scan requests until ctx is done. Requests still
// queued when Run returns are answered with StatusUnknownError.
func (s *Simulator) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running || s.stopped {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("mesh stack running",
		"connectTimeout", s.config.ConnectTimeout,
		"scanTimeout", s.config.ScanTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.attachWorker(gctx) })
	g.Go(func() error { return s.scanWorker(gctx) })
	err := g.Wait()

	s.mu.Lock()
	s.running = false
	s.stopped = true
	s.mu.Unlock()
	s.drain()

	s.logger.Info("mesh stack stopped")
	return err
}

// drain answers every request left in the queues.
func (s *Simulator) drain() {
	for {
		select {
		case req := <-s.attachQ:
			s.finishAttach(req, netcomm.StatusUnknownError, ErrNotRunning.Error(), ConnectErrorStopped)
		case req := <-s.scanQ:
			s.finishScan(req, netcomm.StatusUnknownError, ErrNotRunning.Error())
		default:
			return
		}
	}
}

// IsAttached reports whether the stack is attached.
func (s *Simulator) IsAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAttached
}

// State returns the attach state.
func (s *Simulator) State() AttachState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetProvision returns the dataset the stack is provisioned with.
func (s *Simulator) GetProvision() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provision == nil {
		return nil, ErrNotProvisioned
	}
	return bytes.Clone(s.provision), nil
}

// SetStatusChangeCallback registers cb for status changes. nil unregisters.
func (s *Simulator) SetStatusChangeCallback(cb netcomm.StatusChangeCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCB = cb
}

// Attach queues an attach to the network described by raw.
func (s *Simulator) Attach(raw []byte, cb netcomm.ConnectCallback) error {
	ds, err := dataset.Decode(raw)
	if err != nil {
		return err
	}
	if !ds.IsCommissioned() {
		return ErrNetworkRequired
	}

	req := &attachRequest{
		id:        uuid.NewString(),
		raw:       bytes.Clone(raw),
		dataset:   ds,
		cb:        cb,
		submitted: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	select {
	case s.attachQ <- req:
	default:
		return ErrBusy
	}

	s.events.Log(mlog.Event{
		Timestamp: req.submitted,
		RequestID: req.id,
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryOperation,
		Operation: mlog.OperationAttach,
		NetworkID: ds.ExtendedPANID,
	})
	return nil
}

// StartScan queues a scan.
func (s *Simulator) StartScan(cb netcomm.ScanCallback) error {
	req := &scanRequest{id: uuid.NewString(), cb: cb, submitted: time.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	select {
	case s.scanQ <- req:
	default:
		return ErrBusy
	}

	s.events.Log(mlog.Event{
		Timestamp: req.submitted,
		RequestID: req.id,
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryOperation,
		Operation: mlog.OperationScan,
	})
	return nil
}

// Restore loads the persisted provision and reattaches to it if the network
// is within reach. It returns the restored dataset, or nil when nothing was
// persisted.
func (s *Simulator) Restore() ([]byte, error) {
	if s.config.Store == nil {
		return nil, nil
	}
	p, err := s.config.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("restore provision: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	ds, err := dataset.Decode(p.Dataset)
	if err != nil {
		return nil, fmt.Errorf("restore provision: %w", err)
	}

	s.mu.Lock()
	s.provision = bytes.Clone(p.Dataset)
	network, reachable := s.lookup(ds)
	joined := reachable && bytes.Equal(network.Dataset.NetworkKey, ds.NetworkKey)
	if joined {
		s.state = StateAttached
	}
	s.mu.Unlock()

	s.logger.Info("provision restored",
		"network", ds.NetworkName,
		"savedAt", p.SavedAt,
		"attached", joined)
	if joined {
		s.logState(StateDetached, StateAttached, ds.ExtendedPANID, "restored")
		s.notify(netcomm.StatusSuccess, ds.ExtendedPANID, nil)
	}
	return bytes.Clone(p.Dataset), nil
}

// Detach leaves the current network. The provision is kept.
func (s *Simulator) Detach() {
	s.detach("detach requested")
}

// Reset detaches, forgets the provision and clears the store.
func (s *Simulator) Reset() error {
	s.detach("reset")

	s.mu.Lock()
	s.provision = nil
	s.mu.Unlock()

	if s.config.Store != nil {
		if err := s.config.Store.Clear(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

func (s *Simulator) detach(reason string) {
	s.mu.Lock()
	if s.state != StateAttached {
		s.mu.Unlock()
		return
	}
	s.state = StateDetached
	xp := s.provisionXPANID()
	s.mu.Unlock()

	s.logger.Info("detached", "reason", reason)
	s.logState(StateAttached, StateDetached, xp, reason)
	s.events.Log(mlog.Event{
		Timestamp: time.Now(),
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryOperation,
		Operation: mlog.OperationDetach,
		NetworkID: xp,
	})
	noParent := ConnectErrorNoParent
	s.notify(netcomm.StatusNetworkNotFound, xp, &noParent)
}

func (s *Simulator) attachWorker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.attachQ:
			s.processAttach(ctx, req)
		}
	}
}

func (s *Simulator) scanWorker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.scanQ:
			s.processScan(ctx, req)
		}
	}
}

// processAttach tries to join the requested network until it succeeds, the
// credentials are rejected or the connect timeout passes.
func (s *Simulator) processAttach(ctx context.Context, req *attachRequest) {
	s.mu.Lock()
	old := s.state
	s.state = StateAttaching
	s.mu.Unlock()
	s.logState(old, StateAttaching, req.dataset.ExtendedPANID, "")

	ctx, cancel := context.WithTimeout(ctx, s.config.ConnectTimeout)
	defer cancel()

	backoff := NewBackoffWithConfig(s.config.Backoff)
	for {
		status, connectErr := s.tryJoin(req.dataset)
		switch status {
		case netcomm.StatusSuccess:
			s.completeAttach(req)
			return
		case netcomm.StatusAuthFailure:
			s.failAttach(req, status, "network key rejected", connectErr)
			return
		}

		delay := backoff.Next()
		s.logger.Debug("attach attempt failed",
			"network", req.dataset.NetworkName,
			"attempt", backoff.Attempts(),
			"retryIn", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				s.failAttach(req, netcomm.StatusNetworkNotFound,
					fmt.Sprintf("no parent found after %d attempts", backoff.Attempts()), ConnectErrorNoParent)
			} else {
				s.failAttach(req, netcomm.StatusUnknownError, ErrNotRunning.Error(), ConnectErrorStopped)
			}
			return
		case <-timer.C:
		}
	}
}

// tryJoin makes one attach attempt.
func (s *Simulator) tryJoin(ds *dataset.Dataset) (netcomm.Status, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	network, ok := s.lookup(ds)
	if !ok {
		return netcomm.StatusNetworkNotFound, ConnectErrorNoParent
	}
	if !bytes.Equal(network.Dataset.NetworkKey, ds.NetworkKey) {
		return netcomm.StatusAuthFailure, ConnectErrorSecurity
	}

	xp, _ := ds.XPANID()
	s.joins[xp]++
	if s.joins[xp] <= network.JoinAttempts {
		return netcomm.StatusNetworkNotFound, ConnectErrorNoParent
	}
	return netcomm.StatusSuccess, ConnectErrorNone
}

func (s *Simulator) completeAttach(req *attachRequest) {
	if s.config.Store != nil {
		if err := s.config.Store.Save(req.raw); err != nil {
			s.logger.Error("persist provision failed", "error", err)
			s.logError(req, err)
			s.failAttach(req, netcomm.StatusUnknownError, err.Error(), ConnectErrorPersist)
			return
		}
	}

	s.mu.Lock()
	s.provision = req.raw
	s.state = StateAttached
	s.mu.Unlock()

	s.logger.Info("attached", "network", req.dataset.NetworkName, "request", req.id)
	s.logState(StateAttaching, StateAttached, req.dataset.ExtendedPANID, "")
	s.finishAttach(req, netcomm.StatusSuccess, "", ConnectErrorNone)
	s.notify(netcomm.StatusSuccess, req.dataset.ExtendedPANID, nil)
}

func (s *Simulator) failAttach(req *attachRequest, status netcomm.Status, debugText string, connectErr int32) {
	s.mu.Lock()
	s.state = StateDetached
	s.mu.Unlock()

	s.logger.Warn("attach failed",
		"network", req.dataset.NetworkName,
		"status", status,
		"reason", debugText)
	s.logState(StateAttaching, StateDetached, req.dataset.ExtendedPANID, debugText)
	s.finishAttach(req, status, debugText, connectErr)
	s.notify(status, req.dataset.ExtendedPANID, &connectErr)
}

// finishAttach delivers the attach result.
func (s *Simulator) finishAttach(req *attachRequest, status netcomm.Status, debugText string, connectErr int32) {
	elapsed := time.Since(req.submitted)
	s.events.Log(mlog.Event{
		Timestamp: time.Now(),
		RequestID: req.id,
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryResult,
		Operation: mlog.OperationAttach,
		NetworkID: req.dataset.ExtendedPANID,
		Result: &mlog.ResultEvent{
			Status:       uint8(status),
			StatusName:   status.String(),
			DebugText:    debugText,
			ConnectError: &connectErr,
			Duration:     &elapsed,
		},
	})
	if req.cb != nil {
		req.cb.OnResult(status, debugText, connectErr)
	}
}

func (s *Simulator) processScan(ctx context.Context, req *scanRequest) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	var (
		networks []netcomm.ScanResponse
		err      error
	)
	if s.config.Scanner != nil {
		networks, err = s.config.Scanner.Scan(ctx)
	} else {
		networks = s.Networks()
	}
	if err != nil {
		s.logger.Warn("scan failed", "error", err)
		s.finishScan(req, netcomm.StatusUnknownError, err.Error())
		return
	}

	for _, n := range networks {
		s.events.Log(mlog.Event{
			Timestamp: time.Now(),
			RequestID: req.id,
			Layer:     mlog.LayerStack,
			Category:  mlog.CategoryResult,
			Operation: mlog.OperationScan,
			NetworkID: n.ExtendedPANID.Bytes(),
			ScanResult: &mlog.ScanResultEvent{
				NetworkName:   n.NetworkName,
				ExtendedPANID: n.ExtendedPANID.Bytes(),
				PANID:         n.PANID,
				Channel:       n.Channel,
				RSSI:          n.RSSI,
			},
		})
		if req.cb != nil {
			req.cb.OnNetworkFound(n)
		}
	}
	s.logger.Debug("scan finished", "networks", len(networks))
	s.finishScan(req, netcomm.StatusSuccess, "")
}

// finishScan delivers the scan completion.
func (s *Simulator) finishScan(req *scanRequest, status netcomm.Status, debugText string) {
	elapsed := time.Since(req.submitted)
	s.events.Log(mlog.Event{
		Timestamp: time.Now(),
		RequestID: req.id,
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryResult,
		Operation: mlog.OperationScan,
		Result: &mlog.ResultEvent{
			Status:     uint8(status),
			StatusName: status.String(),
			DebugText:  debugText,
			Duration:   &elapsed,
		},
	})
	if req.cb != nil {
		req.cb.OnFinished(status, debugText)
	}
}

// notify reports a status change outside the lock.
func (s *Simulator) notify(status netcomm.Status, networkID []byte, connectErr *int32) {
	s.mu.Lock()
	cb := s.statusCB
	s.mu.Unlock()
	if cb != nil {
		cb.OnNetworkingStatusChange(status, bytes.Clone(networkID), connectErr)
	}
}

func (s *Simulator) logState(from, to AttachState, networkID []byte, reason string) {
	s.events.Log(mlog.Event{
		Timestamp: time.Now(),
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryState,
		Operation: mlog.OperationAttach,
		NetworkID: networkID,
		StateChange: &mlog.StateChangeEvent{
			Entity:   mlog.StateEntityAttachment,
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (s *Simulator) logError(req *attachRequest, err error) {
	s.events.Log(mlog.Event{
		Timestamp: time.Now(),
		RequestID: req.id,
		Layer:     mlog.LayerStack,
		Category:  mlog.CategoryError,
		Operation: mlog.OperationAttach,
		NetworkID: req.dataset.ExtendedPANID,
		Error: &mlog.ErrorEventData{
			Layer:   mlog.LayerStack,
			Message: err.Error(),
		},
	})
}

// lookup finds the reachable network for ds. Caller holds s.mu.
func (s *Simulator) lookup(ds *dataset.Dataset) (*Network, bool) {
	xp, err := ds.XPANID()
	if err != nil {
		return nil, false
	}
	n, ok := s.networks[xp]
	return n, ok
}

// attachedTo reports whether the provision is for xp. Caller holds s.mu.
func (s *Simulator) attachedTo(xp netcomm.ExtendedPANID) bool {
	return bytes.Equal(s.provisionXPANID(), xp[:])
}

// provisionXPANID returns the provisioned extended PAN ID, or nil. Caller
// holds s.mu.
func (s *Simulator) provisionXPANID() []byte {
	if s.provision == nil {
		return nil
	}
	ds, err := dataset.Decode(s.provision)
	if err != nil {
		return nil
	}
	return ds.ExtendedPANID
}

var _ netcomm.StackManager = (*Simulator)(nil)
