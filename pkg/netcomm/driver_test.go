package netcomm_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/meshprov/pkg/log"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
	"github.com/mash-protocol/meshprov/pkg/netcomm/mocks"
)

// newDetachedDriver returns a driver initialized against a stack that is not
// attached, so both slots start uncommissioned.
func newDetachedDriver(t *testing.T, opts ...netcomm.Option) (*netcomm.Driver, *mocks.MockStackManager) {
	t.Helper()
	stack := mocks.NewMockStackManager(t)
	stack.EXPECT().SetStatusChangeCallback(mock.Anything).Return().Once()
	stack.EXPECT().IsAttached().Return(false).Once()

	d := netcomm.NewDriver(stack, testParser{}, opts...)
	require.NoError(t, d.Init(nil))
	return d, stack
}

func TestDriverInitNotAttached(t *testing.T) {
	d, _ := newDetachedDriver(t)

	assert.False(t, d.Staged().IsCommissioned())
	assert.False(t, d.Saved().IsCommissioned())
	assert.Equal(t, 0, d.Networks().Count())
}

func TestDriverInitHydratesBothSlots(t *testing.T) {
	stack := mocks.NewMockStackManager(t)
	statusCb := mocks.NewMockStatusChangeCallback(t)
	stack.EXPECT().SetStatusChangeCallback(statusCb).Return().Once()
	stack.EXPECT().IsAttached().Return(true).Once()
	stack.EXPECT().GetProvision().Return(dataset(0x11), nil).Once()

	d := netcomm.NewDriver(stack, testParser{})
	require.NoError(t, d.Init(statusCb))

	assert.True(t, d.Staged().IsCommissioned())
	assert.True(t, d.Saved().IsCommissioned())
	assert.True(t, d.Staged().Equal(d.Saved()))

	x, err := d.StagedExtendedPANID()
	require.NoError(t, err)
	assert.Equal(t, xpanid(0x11), x.Bytes())
}

func TestDriverInitRetrievalFailureIsNotAnError(t *testing.T) {
	tests := []struct {
		name      string
		provision []byte
		err       error
	}{
		{"get provision fails", nil, errors.New("no active dataset")},
		{"provision malformed", []byte{0xFF}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := mocks.NewMockStackManager(t)
			stack.EXPECT().SetStatusChangeCallback(mock.Anything).Return().Once()
			stack.EXPECT().IsAttached().Return(true).Once()
			stack.EXPECT().GetProvision().Return(tt.provision, tt.err).Once()

			d := netcomm.NewDriver(stack, testParser{})
			require.NoError(t, d.Init(nil))

			assert.False(t, d.Staged().IsCommissioned())
			assert.False(t, d.Saved().IsCommissioned())
		})
	}
}

func TestDriverShutdownKeepsSlots(t *testing.T) {
	d, stack := newDetachedDriver(t)
	status, _, _ := d.AddOrUpdateNetwork(dataset(0x11))
	require.Equal(t, netcomm.StatusSuccess, status)

	stack.EXPECT().SetStatusChangeCallback(nil).Return().Once()
	require.NoError(t, d.Shutdown())

	assert.True(t, d.Staged().IsCommissioned())
}

func TestDriverAddOrUpdateNetwork(t *testing.T) {
	t.Run("empty slot accepts dataset", func(t *testing.T) {
		d, _ := newDetachedDriver(t)

		status, debugText, index := d.AddOrUpdateNetwork(dataset(0x11))
		assert.Equal(t, netcomm.StatusSuccess, status)
		assert.Empty(t, debugText)
		assert.Equal(t, uint8(0), index)

		x, err := d.StagedExtendedPANID()
		require.NoError(t, err)
		assert.Equal(t, xpanid(0x11), x.Bytes())
		assert.False(t, d.Saved().IsCommissioned(), "saved must not change before commit")
	})

	t.Run("same network updates dataset", func(t *testing.T) {
		d, _ := newDetachedDriver(t)
		d.AddOrUpdateNetwork(dataset(0x11, 0x01))

		status, _, index := d.AddOrUpdateNetwork(dataset(0x11, 0x02))
		assert.Equal(t, netcomm.StatusSuccess, status)
		assert.Equal(t, uint8(0), index)
		assert.Equal(t, dataset(0x11, 0x02), d.Staged().AsBytes())
	})

	t.Run("different network is rejected", func(t *testing.T) {
		d, _ := newDetachedDriver(t)
		d.AddOrUpdateNetwork(dataset(0x11))
		before := d.Staged()

		status, _, _ := d.AddOrUpdateNetwork(dataset(0x22))
		assert.Equal(t, netcomm.StatusBoundsExceeded, status)
		assert.True(t, before.Equal(d.Staged()))
	})

	rejected := []struct {
		name string
		raw  []byte
	}{
		{"malformed", []byte{0x01, 0x02, 0x03}},
		{"uncommissioned", partialDataset(0x11)},
		{"too long", dataset(0x11, make([]byte, netcomm.MaxDatasetLength)...)},
		{"empty", nil},
	}
	for _, tt := range rejected {
		t.Run(tt.name+" is out of range", func(t *testing.T) {
			d, _ := newDetachedDriver(t)
			d.AddOrUpdateNetwork(dataset(0x11))
			before := d.Staged()

			status, _, index := d.AddOrUpdateNetwork(tt.raw)
			assert.Equal(t, netcomm.StatusOutOfRange, status)
			assert.Equal(t, uint8(0), index)
			assert.True(t, before.Equal(d.Staged()))
		})
	}
}

func TestDriverCommitAndRevert(t *testing.T) {
	d, _ := newDetachedDriver(t)

	d.AddOrUpdateNetwork(dataset(0x11, 0x01))
	require.NoError(t, d.CommitConfiguration())
	assert.True(t, d.Saved().Equal(d.Staged()))

	d.AddOrUpdateNetwork(dataset(0x11, 0x02))
	assert.Equal(t, dataset(0x11, 0x01), d.Saved().AsBytes(), "staged edits must not leak into saved")

	require.NoError(t, d.RevertConfiguration())
	assert.Equal(t, dataset(0x11, 0x01), d.Staged().AsBytes())

	// Mutating staged after revert leaves saved untouched.
	status, _, _ := d.RemoveNetwork(xpanid(0x11))
	require.Equal(t, netcomm.StatusSuccess, status)
	assert.True(t, d.Saved().IsCommissioned())
}

func TestDriverRevertToUncommissioned(t *testing.T) {
	d, _ := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))

	require.NoError(t, d.RevertConfiguration())
	assert.False(t, d.Staged().IsCommissioned())
}

func TestDriverRemoveNetwork(t *testing.T) {
	d, _ := newDetachedDriver(t)

	status, _, index := d.RemoveNetwork(xpanid(0x11))
	assert.Equal(t, netcomm.StatusNetworkIDNotFound, status)
	assert.Equal(t, uint8(0), index)

	d.AddOrUpdateNetwork(dataset(0x11))

	status, _, _ = d.RemoveNetwork(xpanid(0x22))
	assert.Equal(t, netcomm.StatusNetworkIDNotFound, status)
	assert.True(t, d.Staged().IsCommissioned())

	status, _, index = d.RemoveNetwork(xpanid(0x11))
	assert.Equal(t, netcomm.StatusSuccess, status)
	assert.Equal(t, uint8(0), index)
	assert.False(t, d.Staged().IsCommissioned())

	// The slot is free again for any network.
	status, _, _ = d.AddOrUpdateNetwork(dataset(0x22))
	assert.Equal(t, netcomm.StatusSuccess, status)
}

func TestDriverReorderNetwork(t *testing.T) {
	d, _ := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))

	tests := []struct {
		name  string
		id    []byte
		index uint8
		want  netcomm.Status
	}{
		{"index zero", xpanid(0x11), 0, netcomm.StatusSuccess},
		{"index one", xpanid(0x11), 1, netcomm.StatusOutOfRange},
		{"unknown network", xpanid(0x22), 0, netcomm.StatusNetworkIDNotFound},
		{"unknown network bad index", xpanid(0x22), 5, netcomm.StatusNetworkIDNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, debugText := d.ReorderNetwork(tt.id, tt.index)
			assert.Equal(t, tt.want, status)
			assert.Empty(t, debugText)
		})
	}
	assert.Equal(t, dataset(0x11), d.Staged().AsBytes())
}

func TestDriverConnectNetworkMismatchResolvesSynchronously(t *testing.T) {
	d, _ := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))

	cb := mocks.NewMockConnectCallback(t)
	cb.EXPECT().OnResult(netcomm.StatusNetworkIDNotFound, "", int32(0)).Return().Once()

	// The stack mock has no Attach expectation: a submission would fail the test.
	d.ConnectNetwork(xpanid(0x22), cb)
}

func TestDriverConnectNetworkUncommissioned(t *testing.T) {
	d, _ := newDetachedDriver(t)

	cb := mocks.NewMockConnectCallback(t)
	cb.EXPECT().OnResult(netcomm.StatusNetworkIDNotFound, "", int32(0)).Return().Once()

	d.ConnectNetwork(xpanid(0x11), cb)
}

func TestDriverConnectNetworkSubmissionFailure(t *testing.T) {
	d, stack := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))

	stack.EXPECT().Attach(dataset(0x11), mock.Anything).Return(errors.New("busy")).Once()

	cb := mocks.NewMockConnectCallback(t)
	cb.EXPECT().OnResult(netcomm.StatusUnknownError, "", int32(0)).Return().Once()

	d.ConnectNetwork(xpanid(0x11), cb)
}

func TestDriverConnectNetworkAsyncResult(t *testing.T) {
	d, stack := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))

	var stackCb netcomm.ConnectCallback
	stack.EXPECT().Attach(dataset(0x11), mock.Anything).
		Run(func(_ []byte, cb netcomm.ConnectCallback) { stackCb = cb }).
		Return(nil).Once()

	future := netcomm.NewConnectFuture()
	d.ConnectNetwork(xpanid(0x11), future)

	select {
	case <-future.Done():
		t.Fatal("callback resolved before the stack reported")
	default:
	}

	require.NotNil(t, stackCb)
	go stackCb.OnResult(netcomm.StatusAuthFailure, "rejected", 7)

	select {
	case <-future.Done():
	case <-time.After(time.Second):
		t.Fatal("callback not resolved")
	}
	result, err := future.Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, netcomm.ConnectResult{Status: netcomm.StatusAuthFailure, DebugText: "rejected", ConnectError: 7}, result)
}

func TestDriverConnectNetworkResolvesExactlyOnce(t *testing.T) {
	d, stack := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))

	// A misbehaving stack that both reports and fails the submission.
	stack.EXPECT().Attach(mock.Anything, mock.Anything).
		RunAndReturn(func(_ []byte, cb netcomm.ConnectCallback) error {
			cb.OnResult(netcomm.StatusSuccess, "", 0)
			cb.OnResult(netcomm.StatusSuccess, "", 0)
			return errors.New("late failure")
		}).Once()

	cb := mocks.NewMockConnectCallback(t)
	cb.EXPECT().OnResult(netcomm.StatusSuccess, "", int32(0)).Return().Once()

	d.ConnectNetwork(xpanid(0x11), cb)
}

func TestDriverConnectNetworkDoesNotChangeSlots(t *testing.T) {
	d, stack := newDetachedDriver(t)
	d.AddOrUpdateNetwork(dataset(0x11))
	stack.EXPECT().Attach(mock.Anything, mock.Anything).Return(nil).Once()

	staged, saved := d.Staged(), d.Saved()
	d.ConnectNetwork(xpanid(0x11), netcomm.NewConnectFuture())

	assert.True(t, staged.Equal(d.Staged()))
	assert.True(t, saved.Equal(d.Saved()))
}

func TestDriverScanNetworksSubmissionFailure(t *testing.T) {
	d, stack := newDetachedDriver(t)
	stack.EXPECT().StartScan(mock.Anything).Return(errors.New("radio off")).Once()

	cb := mocks.NewMockScanCallback(t)
	cb.EXPECT().OnFinished(netcomm.StatusUnknownError, "").Return().Once()

	_, ok := d.LastScanStatus()
	assert.False(t, ok)

	d.ScanNetworks(cb)

	status, ok := d.LastScanStatus()
	require.True(t, ok)
	assert.Equal(t, netcomm.StatusUnknownError, status)
}

func TestDriverScanNetworksAsync(t *testing.T) {
	d, stack := newDetachedDriver(t)

	var stackCb netcomm.ScanCallback
	stack.EXPECT().StartScan(mock.Anything).
		Run(func(cb netcomm.ScanCallback) { stackCb = cb }).
		Return(nil).Once()

	found := netcomm.ScanResponse{PANID: 0x1234, NetworkName: "mesh-a", Channel: 15, RSSI: -60}
	cb := mocks.NewMockScanCallback(t)
	cb.EXPECT().OnNetworkFound(found).Return().Once()
	cb.EXPECT().OnFinished(netcomm.StatusSuccess, "").Return().Once()

	d.ScanNetworks(cb)

	status, ok := d.LastScanStatus()
	require.True(t, ok)
	assert.Equal(t, netcomm.StatusSuccess, status, "scan status is recorded on submission")

	require.NotNil(t, stackCb)
	stackCb.OnNetworkFound(found)
	stackCb.OnFinished(netcomm.StatusSuccess, "")

	// Late notifications are dropped.
	stackCb.OnNetworkFound(found)
	stackCb.OnFinished(netcomm.StatusUnknownError, "again")
}

func TestDriverTimeouts(t *testing.T) {
	d := netcomm.NewDriver(mocks.NewMockStackManager(t), testParser{})
	assert.Equal(t, netcomm.DefaultScanNetworkTimeout, d.ScanNetworkTimeout())
	assert.Equal(t, netcomm.DefaultConnectNetworkTimeout, d.ConnectNetworkTimeout())
	assert.Equal(t, 1, d.MaxNetworks())

	d = netcomm.NewDriver(mocks.NewMockStackManager(t), testParser{},
		netcomm.WithScanTimeout(3*time.Second),
		netcomm.WithConnectTimeout(0),
	)
	assert.Equal(t, 3*time.Second, d.ScanNetworkTimeout())
	assert.Equal(t, netcomm.DefaultConnectNetworkTimeout, d.ConnectNetworkTimeout())
}

func TestDriverEventLog(t *testing.T) {
	events := &recordingLogger{}
	d, stack := newDetachedDriver(t, netcomm.WithEventLogger(events))

	d.AddOrUpdateNetwork(dataset(0x11))
	require.NoError(t, d.CommitConfiguration())

	var stackCb netcomm.ConnectCallback
	stack.EXPECT().Attach(mock.Anything, mock.Anything).
		Run(func(_ []byte, cb netcomm.ConnectCallback) { stackCb = cb }).
		Return(nil).Once()
	d.ConnectNetwork(xpanid(0x11), netcomm.NewConnectFuture())
	stackCb.OnResult(netcomm.StatusSuccess, "", 0)

	adds := events.byOperation(log.OperationAddOrUpdate)
	require.Len(t, adds, 2)
	require.NotNil(t, adds[0].StateChange)
	assert.Equal(t, log.StateEntityStaged, adds[0].StateChange.Entity)
	assert.Equal(t, "UNCOMMISSIONED", adds[0].StateChange.OldState)
	assert.Equal(t, "1111111111111111", adds[0].StateChange.NewState)

	commits := events.byOperation(log.OperationCommit)
	require.Len(t, commits, 1)
	assert.Equal(t, log.StateEntitySaved, commits[0].StateChange.Entity)

	connects := events.byOperation(log.OperationConnect)
	require.Len(t, connects, 2)
	assert.Equal(t, log.CategoryOperation, connects[0].Category)
	assert.Equal(t, log.CategoryResult, connects[1].Category)
	assert.NotEmpty(t, connects[0].RequestID)
	assert.Equal(t, connects[0].RequestID, connects[1].RequestID)
	require.NotNil(t, connects[1].Result)
	assert.Equal(t, "SUCCESS", connects[1].Result.StatusName)
	assert.NotNil(t, connects[1].Result.Duration)
}

// TestDriverEndToEnd walks a device from first boot to an attached network.
func TestDriverEndToEnd(t *testing.T) {
	stack := mocks.NewMockStackManager(t)
	attached := false
	var provision []byte

	stack.EXPECT().SetStatusChangeCallback(mock.Anything).Return().Once()
	stack.EXPECT().IsAttached().RunAndReturn(func() bool { return attached })
	stack.EXPECT().GetProvision().RunAndReturn(func() ([]byte, error) { return provision, nil }).Maybe()
	stack.EXPECT().Attach(dataset(0x11), mock.Anything).
		RunAndReturn(func(raw []byte, cb netcomm.ConnectCallback) error {
			go func() {
				attached = true
				provision = raw
				cb.OnResult(netcomm.StatusSuccess, "", 0)
			}()
			return nil
		}).Once()

	d := netcomm.NewDriver(stack, testParser{})
	require.NoError(t, d.Init(nil))

	status, _, index := d.AddOrUpdateNetwork(dataset(0x11))
	require.Equal(t, netcomm.StatusSuccess, status)
	require.Equal(t, uint8(0), index)
	require.NoError(t, d.CommitConfiguration())

	future := netcomm.NewConnectFuture()
	d.ConnectNetwork(xpanid(0x11), future)
	result, err := future.Wait(t.Context())
	require.NoError(t, err)
	require.Equal(t, netcomm.StatusSuccess, result.Status)

	it := d.Networks()
	defer it.Release()
	require.Equal(t, 1, it.Count())
	network, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, xpanid(0x11), network.ID())
	assert.Equal(t, uint8(netcomm.ExtendedPANIDLength), network.NetworkIDLen)
	assert.True(t, network.Connected)
}
