package netcomm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrAlreadyResolved is reported when a request callback is resolved twice.
var ErrAlreadyResolved = errors.New("request callback already resolved")

// OnceConnectCallback guards a ConnectCallback so it resolves at most once.
// Later calls are dropped and logged as errors.
type OnceConnectCallback struct {
	cb       ConnectCallback
	logger   *slog.Logger
	resolved atomic.Bool
	dropped  atomic.Int32
}

// OnceConnect wraps cb. A nil logger discards duplicate reports.
func OnceConnect(cb ConnectCallback, logger *slog.Logger) *OnceConnectCallback {
	return &OnceConnectCallback{cb: cb, logger: orDiscard(logger)}
}

// OnResult forwards the first result and drops any later one.
func (o *OnceConnectCallback) OnResult(status Status, debugText string, connectErr int32) {
	if !o.resolved.CompareAndSwap(false, true) {
		o.dropped.Add(1)
		o.logger.Error("connect callback resolved twice",
			"error", ErrAlreadyResolved,
			"status", status.String(),
		)
		return
	}
	if o.cb != nil {
		o.cb.OnResult(status, debugText, connectErr)
	}
}

// Resolved reports whether the result has been delivered.
func (o *OnceConnectCallback) Resolved() bool {
	return o.resolved.Load()
}

// Dropped returns how many duplicate results were discarded.
func (o *OnceConnectCallback) Dropped() int {
	return int(o.dropped.Load())
}

// OnceScanCallback guards a ScanCallback so OnFinished fires at most once and
// no network is reported after it.
type OnceScanCallback struct {
	cb       ScanCallback
	logger   *slog.Logger
	finished atomic.Bool
	dropped  atomic.Int32
}

// OnceScan wraps cb. A nil logger discards duplicate reports.
func OnceScan(cb ScanCallback, logger *slog.Logger) *OnceScanCallback {
	return &OnceScanCallback{cb: cb, logger: orDiscard(logger)}
}

// OnNetworkFound forwards network unless the scan already finished.
func (o *OnceScanCallback) OnNetworkFound(network ScanResponse) {
	if o.finished.Load() {
		o.dropped.Add(1)
		o.logger.Warn("scan result after scan finished", "network_name", network.NetworkName)
		return
	}
	if o.cb != nil {
		o.cb.OnNetworkFound(network)
	}
}

// OnFinished forwards the first completion and drops any later one.
func (o *OnceScanCallback) OnFinished(status Status, debugText string) {
	if !o.finished.CompareAndSwap(false, true) {
		o.dropped.Add(1)
		o.logger.Error("scan callback resolved twice",
			"error", ErrAlreadyResolved,
			"status", status.String(),
		)
		return
	}
	if o.cb != nil {
		o.cb.OnFinished(status, debugText)
	}
}

// Resolved reports whether the scan has finished.
func (o *OnceScanCallback) Resolved() bool {
	return o.finished.Load()
}

// Dropped returns how many late or duplicate notifications were discarded.
func (o *OnceScanCallback) Dropped() int {
	return int(o.dropped.Load())
}

// ConnectResult is the resolved value of a ConnectFuture.
type ConnectResult struct {
	Status       Status
	DebugText    string
	ConnectError int32
}

// ConnectFuture is a ConnectCallback backed by a one-shot channel.
type ConnectFuture struct {
	once   sync.Once
	done   chan struct{}
	result ConnectResult
}

// NewConnectFuture creates an unresolved ConnectFuture.
func NewConnectFuture() *ConnectFuture {
	return &ConnectFuture{done: make(chan struct{})}
}

// OnResult resolves the future. Only the first call has an effect.
func (f *ConnectFuture) OnResult(status Status, debugText string, connectErr int32) {
	f.once.Do(func() {
		f.result = ConnectResult{Status: status, DebugText: debugText, ConnectError: connectErr}
		close(f.done)
	})
}

// Done is closed once the future is resolved.
func (f *ConnectFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done.
func (f *ConnectFuture) Wait(ctx context.Context) (ConnectResult, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return ConnectResult{}, ctx.Err()
	}
}

// ScanResult is the resolved value of a ScanFuture.
type ScanResult struct {
	Status    Status
	DebugText string
	Networks  []ScanResponse
}

// ScanFuture is a ScanCallback that collects networks until OnFinished.
type ScanFuture struct {
	mu       sync.Mutex
	networks []ScanResponse
	once     sync.Once
	done     chan struct{}
	result   ScanResult
}

// NewScanFuture creates an unresolved ScanFuture.
func NewScanFuture() *ScanFuture {
	return &ScanFuture{done: make(chan struct{})}
}

// OnNetworkFound records network.
func (f *ScanFuture) OnNetworkFound(network ScanResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networks = append(f.networks, network)
}

// OnFinished resolves the future. Only the first call has an effect.
func (f *ScanFuture) OnFinished(status Status, debugText string) {
	f.once.Do(func() {
		f.mu.Lock()
		networks := f.networks
		f.mu.Unlock()

		f.result = ScanResult{Status: status, DebugText: debugText, Networks: networks}
		close(f.done)
	})
}

// Done is closed once the scan has finished.
func (f *ScanFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the scan finishes or ctx is done.
func (f *ScanFuture) Wait(ctx context.Context) (ScanResult, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return ScanResult{}, ctx.Err()
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// Compile-time interface satisfaction checks.
var (
	_ ConnectCallback = (*OnceConnectCallback)(nil)
	_ ConnectCallback = (*ConnectFuture)(nil)
	_ ScanCallback    = (*OnceScanCallback)(nil)
	_ ScanCallback    = (*ScanFuture)(nil)
)
