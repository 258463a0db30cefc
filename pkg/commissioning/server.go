package commissioning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mash-protocol/meshprov/pkg/failsafe"
	"github.com/mash-protocol/meshprov/pkg/log"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Server errors.
var (
	ErrNoDriver          = errors.New("commissioning server requires a driver")
	ErrFailSafeRequired  = errors.New("fail-safe not armed")
	ErrInterfaceDisabled = errors.New("network interface disabled")
	ErrTimeout           = errors.New("request timed out")
	ErrNotStarted        = errors.New("commissioning server not started")
)

// Config configures a Server.
type Config struct {
	// Driver is the network driver being commissioned. Required.
	Driver *netcomm.Driver

	// FailSafe guards configuration changes. Nil creates a default timer.
	FailSafe *failsafe.Timer

	// Logger receives operational logs. Nil disables logging.
	Logger *slog.Logger

	// Events receives commissioning events. Nil disables event logging.
	Events log.Logger
}

// Server exposes the network commissioning commands and attributes of one
// driver.
type Server struct {
	driver   *netcomm.Driver
	failsafe *failsafe.Timer
	logger   *slog.Logger
	events   log.Logger

	// mu serializes driver calls and guards the fields below.
	mu               sync.Mutex
	started          bool
	interfaceEnabled bool
	lastStatus       *netcomm.Status
	lastNetworkID    []byte
	lastConnectErr   *int32
}

// NewServer creates a new commissioning server.
func NewServer(config Config) (*Server, error) {
	if config.Driver == nil {
		return nil, ErrNoDriver
	}
	s := &Server{
		driver:           config.Driver,
		failsafe:         config.FailSafe,
		logger:           config.Logger,
		events:           log.OrNoop(config.Events),
		interfaceEnabled: true,
	}
	if s.failsafe == nil {
		s.failsafe = failsafe.NewTimer()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// Start initializes the driver and hooks the fail-safe.
func (s *Server) Start() error {
	s.failsafe.OnExpire(s.onFailSafeExpired)
	s.failsafe.OnStateChange(s.onFailSafeStateChange)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.driver.Init(s); err != nil {
		return fmt.Errorf("init driver: %w", err)
	}
	s.started = true
	return nil
}

// Close shuts the driver down and disarms the fail-safe. Uncommitted changes
// are reverted.
func (s *Server) Close() error {
	if s.failsafe.IsArmed() {
		_ = s.failsafe.Disarm()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	if err := s.driver.RevertConfiguration(); err != nil {
		return err
	}
	return s.driver.Shutdown()
}

// FailSafe returns the fail-safe timer.
func (s *Server) FailSafe() *failsafe.Timer {
	return s.failsafe
}

// ArmFailSafe arms or extends the fail-safe. An expiry of zero expires an
// armed fail-safe at once, reverting uncommitted changes.
func (s *Server) ArmFailSafe(expiry time.Duration, breadcrumb uint64) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	// Arm may run the expiry callbacks synchronously, which take s.mu.
	if err := s.failsafe.Arm(expiry, breadcrumb); err != nil {
		return err
	}
	s.logServer(log.OperationArmFailSafe, nil, fmt.Sprintf("expiry=%s breadcrumb=%d", expiry, breadcrumb))
	return nil
}

// SetBreadcrumb records commissioning progress.
func (s *Server) SetBreadcrumb(breadcrumb uint64) {
	s.failsafe.SetBreadcrumb(breadcrumb)
}

// AddOrUpdateNetwork stages dataset.
func (s *Server) AddOrUpdateNetwork(dataset []byte) (NetworkConfigResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkArmedLocked(); err != nil {
		return NetworkConfigResult{}, err
	}

	status, debugText, index := s.driver.AddOrUpdateNetwork(dataset)
	return newNetworkConfigResult(status, debugText, index), nil
}

// RemoveNetwork removes the staged network with networkID.
func (s *Server) RemoveNetwork(networkID []byte) (NetworkConfigResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkArmedLocked(); err != nil {
		return NetworkConfigResult{}, err
	}

	status, debugText, index := s.driver.RemoveNetwork(networkID)
	return newNetworkConfigResult(status, debugText, index), nil
}

// ReorderNetwork moves the network with networkID to index.
func (s *Server) ReorderNetwork(networkID []byte, index uint8) (NetworkConfigResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkArmedLocked(); err != nil {
		return NetworkConfigResult{}, err
	}

	status, debugText := s.driver.ReorderNetwork(networkID, index)
	result := NetworkConfigResult{Status: status, DebugText: debugText}
	if status == netcomm.StatusSuccess {
		result.NetworkIndex = &index
	}
	return result, nil
}

// ConnectNetwork attaches to the staged network with networkID and waits for
// the result, at most the driver's connect timeout.
func (s *Server) ConnectNetwork(ctx context.Context, networkID []byte) (netcomm.ConnectResult, error) {
	future := netcomm.NewConnectFuture()

	s.mu.Lock()
	if err := s.checkArmedLocked(); err != nil {
		s.mu.Unlock()
		return netcomm.ConnectResult{}, err
	}
	if !s.interfaceEnabled {
		s.mu.Unlock()
		return netcomm.ConnectResult{}, ErrInterfaceDisabled
	}
	timeout := s.driver.ConnectNetworkTimeout()
	s.driver.ConnectNetwork(networkID, future)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := future.Wait(ctx)
	if err != nil {
		s.logger.Warn("connect did not complete", "network_id", fmt.Sprintf("%x", networkID), "error", err)
		return netcomm.ConnectResult{}, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	s.mu.Lock()
	s.setLastLocked(result.Status, networkID, &result.ConnectError)
	s.mu.Unlock()
	return result, nil
}

// ScanNetworks scans for nearby networks and waits for the result, at most
// the driver's scan timeout.
func (s *Server) ScanNetworks(ctx context.Context) (netcomm.ScanResult, error) {
	future := netcomm.NewScanFuture()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return netcomm.ScanResult{}, ErrNotStarted
	}
	if !s.interfaceEnabled {
		s.mu.Unlock()
		return netcomm.ScanResult{}, ErrInterfaceDisabled
	}
	timeout := s.driver.ScanNetworkTimeout()
	s.driver.ScanNetworks(future)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := future.Wait(ctx)
	if err != nil {
		s.logger.Warn("scan did not complete", "error", err)
		return netcomm.ScanResult{}, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	s.mu.Lock()
	s.setLastLocked(result.Status, nil, nil)
	s.mu.Unlock()
	return result, nil
}

// CommissioningComplete commits the staged configuration and disarms the
// fail-safe.
func (s *Server) CommissioningComplete() error {
	s.mu.Lock()
	if err := s.checkArmedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.driver.CommitConfiguration(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("commit configuration: %w", err)
	}
	s.mu.Unlock()

	// The fail-safe may have expired since the check; the commit stands.
	if err := s.failsafe.Disarm(); err != nil && !errors.Is(err, failsafe.ErrNotArmed) {
		return err
	}
	s.logger.Info("commissioning complete")
	s.logServer(log.OperationCommissioningComplete, nil, "")
	return nil
}

// SetInterfaceEnabled enables or disables the network interface. Connect and
// scan are refused while it is disabled.
func (s *Server) SetInterfaceEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interfaceEnabled = enabled
}

// Attributes returns a snapshot of the commissioning attributes.
func (s *Server) Attributes() Attributes {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs := Attributes{
		MaxNetworks:           uint8(s.driver.MaxNetworks()),
		Networks:              []NetworkInfo{},
		ScanMaxTimeSeconds:    seconds(s.driver.ScanNetworkTimeout()),
		ConnectMaxTimeSeconds: seconds(s.driver.ConnectNetworkTimeout()),
		InterfaceEnabled:      s.interfaceEnabled,
		LastNetworkID:         bytes.Clone(s.lastNetworkID),
		Breadcrumb:            s.failsafe.Breadcrumb(),
		FailSafe:              s.failsafe.State().String(),
	}
	if s.lastStatus != nil {
		status := *s.lastStatus
		attrs.LastNetworkingStatus = &status
	}
	if s.lastConnectErr != nil {
		v := *s.lastConnectErr
		attrs.LastConnectErrorValue = &v
	}

	it := s.driver.Networks()
	defer it.Release()
	for {
		network, ok := it.Next()
		if !ok {
			break
		}
		attrs.Networks = append(attrs.Networks, NetworkInfo{
			NetworkID: network.ID(),
			Connected: network.Connected,
		})
	}
	return attrs
}

// OnNetworkingStatusChange records status changes reported by the stack.
func (s *Server) OnNetworkingStatusChange(status netcomm.Status, networkID []byte, connectErr *int32) {
	s.mu.Lock()
	s.setLastLocked(status, networkID, connectErr)
	s.mu.Unlock()

	s.logger.Info("networking status changed",
		"status", status,
		"network_id", fmt.Sprintf("%x", networkID))
}

func (s *Server) onFailSafeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}

	s.logger.Warn("fail-safe expired, reverting network configuration")
	if err := s.driver.RevertConfiguration(); err != nil {
		s.logger.Error("revert failed", "error", err)
	}
	s.failsafe.SetBreadcrumb(0)
	s.logServer(log.OperationFailSafeExpired, nil, "reverted")
}

func (s *Server) onFailSafeStateChange(oldState, newState failsafe.State) {
	s.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerServer,
		Category:  log.CategoryState,
		Operation: log.OperationArmFailSafe,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityFailSafe,
			OldState: oldState.String(),
			NewState: newState.String(),
		},
	})
}

func (s *Server) checkStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// checkArmedLocked must be called with s.mu held.
func (s *Server) checkArmedLocked() error {
	if !s.started {
		return ErrNotStarted
	}
	if !s.failsafe.IsArmed() {
		return ErrFailSafeRequired
	}
	return nil
}

// setLastLocked must be called with s.mu held.
func (s *Server) setLastLocked(status netcomm.Status, networkID []byte, connectErr *int32) {
	s.lastStatus = &status
	s.lastNetworkID = bytes.Clone(networkID)
	s.lastConnectErr = nil
	if connectErr != nil {
		v := *connectErr
		s.lastConnectErr = &v
	}
}

func (s *Server) logServer(op log.Operation, networkID []byte, debugText string) {
	s.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerServer,
		Category:  log.CategoryResult,
		Operation: op,
		NetworkID: networkID,
		Result: &log.ResultEvent{
			Status:     uint8(netcomm.StatusSuccess),
			StatusName: netcomm.StatusSuccess.String(),
			DebugText:  debugText,
		},
	})
}

func seconds(d time.Duration) uint8 {
	secs := d / time.Second
	if secs > 255 {
		return 255
	}
	return uint8(secs)
}

var _ netcomm.StatusChangeCallback = (*Server)(nil)
