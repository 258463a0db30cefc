package commissioning_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/meshprov/pkg/commissioning"
	"github.com/mash-protocol/meshprov/pkg/dataset"
	"github.com/mash-protocol/meshprov/pkg/failsafe"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
	"github.com/mash-protocol/meshprov/pkg/netcomm/mocks"
)

func newTestServer(t *testing.T, opts ...netcomm.Option) (*commissioning.Server, *mocks.MockStackManager) {
	t.Helper()

	stack := mocks.NewMockStackManager(t)
	stack.EXPECT().SetStatusChangeCallback(mock.Anything).Return().Maybe()
	stack.EXPECT().IsAttached().Return(false).Once()

	driver := netcomm.NewDriver(stack, dataset.Parser{}, opts...)
	srv, err := commissioning.NewServer(commissioning.Config{Driver: driver})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Close() })
	return srv, stack
}

func newDataset(t *testing.T, name string) (*dataset.Dataset, []byte) {
	t.Helper()
	ds, err := dataset.Generate(name, 20)
	require.NoError(t, err)
	raw, err := dataset.Encode(ds)
	require.NoError(t, err)
	return ds, raw
}

func TestNewServerRequiresDriver(t *testing.T) {
	_, err := commissioning.NewServer(commissioning.Config{})
	assert.ErrorIs(t, err, commissioning.ErrNoDriver)
}

func TestServerRequiresFailSafe(t *testing.T) {
	srv, _ := newTestServer(t)
	ds, raw := newDataset(t, "mesh")

	_, err := srv.AddOrUpdateNetwork(raw)
	assert.ErrorIs(t, err, commissioning.ErrFailSafeRequired)
	_, err = srv.RemoveNetwork(ds.ExtendedPANID)
	assert.ErrorIs(t, err, commissioning.ErrFailSafeRequired)
	_, err = srv.ReorderNetwork(ds.ExtendedPANID, 0)
	assert.ErrorIs(t, err, commissioning.ErrFailSafeRequired)
	_, err = srv.ConnectNetwork(t.Context(), ds.ExtendedPANID)
	assert.ErrorIs(t, err, commissioning.ErrFailSafeRequired)
	assert.ErrorIs(t, srv.CommissioningComplete(), commissioning.ErrFailSafeRequired)
}

func TestServerCommandsBeforeStart(t *testing.T) {
	stack := mocks.NewMockStackManager(t)
	srv, err := commissioning.NewServer(commissioning.Config{
		Driver: netcomm.NewDriver(stack, dataset.Parser{}),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, srv.ArmFailSafe(time.Minute, 0), commissioning.ErrNotStarted)
	_, err = srv.ScanNetworks(t.Context())
	assert.ErrorIs(t, err, commissioning.ErrNotStarted)
	assert.NoError(t, srv.Close())
}

func TestServerCommissioningFlow(t *testing.T) {
	srv, stack := newTestServer(t)
	ds, raw := newDataset(t, "mesh-home")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 1))

	result, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)
	require.Equal(t, netcomm.StatusSuccess, result.Status)
	require.NotNil(t, result.NetworkIndex)
	assert.Equal(t, uint8(0), *result.NetworkIndex)

	stack.EXPECT().Attach(raw, mock.Anything).
		RunAndReturn(func(_ []byte, cb netcomm.ConnectCallback) error {
			go cb.OnResult(netcomm.StatusSuccess, "", 0)
			return nil
		}).Once()

	connect, err := srv.ConnectNetwork(t.Context(), ds.ExtendedPANID)
	require.NoError(t, err)
	assert.Equal(t, netcomm.StatusSuccess, connect.Status)

	stack.EXPECT().IsAttached().Return(true).Once()
	stack.EXPECT().GetProvision().Return(raw, nil).Once()

	attrs := srv.Attributes()
	assert.Equal(t, uint8(1), attrs.MaxNetworks)
	require.Len(t, attrs.Networks, 1)
	assert.Equal(t, ds.ExtendedPANID, attrs.Networks[0].NetworkID)
	assert.True(t, attrs.Networks[0].Connected)
	require.NotNil(t, attrs.LastNetworkingStatus)
	assert.Equal(t, netcomm.StatusSuccess, *attrs.LastNetworkingStatus)
	assert.Equal(t, ds.ExtendedPANID, attrs.LastNetworkID)
	require.NotNil(t, attrs.LastConnectErrorValue)
	assert.Equal(t, int32(0), *attrs.LastConnectErrorValue)
	assert.Equal(t, uint64(1), attrs.Breadcrumb)
	assert.Equal(t, "ARMED", attrs.FailSafe)

	require.NoError(t, srv.CommissioningComplete())
	assert.False(t, srv.FailSafe().IsArmed())
	assert.Equal(t, uint64(0), srv.FailSafe().Breadcrumb())
}

func TestServerFailSafeExpiryReverts(t *testing.T) {
	srv, stack := newTestServer(t)
	_, raw := newDataset(t, "mesh")
	stack.EXPECT().IsAttached().Return(false).Maybe()

	require.NoError(t, srv.ArmFailSafe(30*time.Millisecond, 0))
	result, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)
	require.Equal(t, netcomm.StatusSuccess, result.Status)
	require.Len(t, srv.Attributes().Networks, 1)

	require.Eventually(t, func() bool {
		return srv.FailSafe().State() == failsafe.StateExpired
	}, time.Second, 5*time.Millisecond)

	// The expiry callback runs right after the state change.
	assert.Eventually(t, func() bool {
		return len(srv.Attributes().Networks) == 0
	}, time.Second, 5*time.Millisecond)

	_, err = srv.AddOrUpdateNetwork(raw)
	assert.ErrorIs(t, err, commissioning.ErrFailSafeRequired)
}

func TestServerArmZeroExpiresImmediately(t *testing.T) {
	srv, _ := newTestServer(t)
	_, raw := newDataset(t, "mesh")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 3))
	_, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)

	require.NoError(t, srv.ArmFailSafe(0, 0))
	assert.Equal(t, failsafe.StateExpired, srv.FailSafe().State())
	assert.Empty(t, srv.Attributes().Networks)
}

func TestServerArmInvalidExpiry(t *testing.T) {
	srv, _ := newTestServer(t)
	err := srv.ArmFailSafe(failsafe.MaxCumulativeExpiry+time.Second, 0)
	assert.ErrorIs(t, err, failsafe.ErrInvalidExpiry)
}

func TestServerCommitSurvivesExpiry(t *testing.T) {
	srv, stack := newTestServer(t)
	ds, raw := newDataset(t, "mesh")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))
	_, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)
	require.NoError(t, srv.CommissioningComplete())

	// A later session that expires reverts to the committed network.
	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))
	_, err = srv.RemoveNetwork(ds.ExtendedPANID)
	require.NoError(t, err)
	require.NoError(t, srv.ArmFailSafe(0, 0))

	stack.EXPECT().IsAttached().Return(false).Once()
	attrs := srv.Attributes()
	require.Len(t, attrs.Networks, 1)
	assert.Equal(t, ds.ExtendedPANID, attrs.Networks[0].NetworkID)
}

func TestServerReorderNetwork(t *testing.T) {
	srv, _ := newTestServer(t)
	ds, raw := newDataset(t, "mesh")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))
	_, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)

	result, err := srv.ReorderNetwork(ds.ExtendedPANID, 0)
	require.NoError(t, err)
	assert.Equal(t, netcomm.StatusSuccess, result.Status)
	require.NotNil(t, result.NetworkIndex)

	result, err = srv.ReorderNetwork(ds.ExtendedPANID, 1)
	require.NoError(t, err)
	assert.Equal(t, netcomm.StatusOutOfRange, result.Status)
	assert.Nil(t, result.NetworkIndex)
}

func TestServerConnectTimeout(t *testing.T) {
	srv, stack := newTestServer(t, netcomm.WithConnectTimeout(20*time.Millisecond))
	ds, raw := newDataset(t, "mesh")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))
	_, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)

	stack.EXPECT().Attach(raw, mock.Anything).Return(nil).Once()

	_, err = srv.ConnectNetwork(t.Context(), ds.ExtendedPANID)
	assert.ErrorIs(t, err, commissioning.ErrTimeout)
}

func TestServerConnectSubmissionFailure(t *testing.T) {
	srv, stack := newTestServer(t)
	ds, raw := newDataset(t, "mesh")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))
	_, err := srv.AddOrUpdateNetwork(raw)
	require.NoError(t, err)

	stack.EXPECT().Attach(raw, mock.Anything).Return(errors.New("queue full")).Once()

	result, err := srv.ConnectNetwork(t.Context(), ds.ExtendedPANID)
	require.NoError(t, err)
	assert.Equal(t, netcomm.StatusUnknownError, result.Status)
}

func TestServerConnectUnknownNetwork(t *testing.T) {
	srv, _ := newTestServer(t)
	other, _ := newDataset(t, "other")

	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))

	result, err := srv.ConnectNetwork(t.Context(), other.ExtendedPANID)
	require.NoError(t, err)
	assert.Equal(t, netcomm.StatusNetworkIDNotFound, result.Status)
}

func TestServerInterfaceDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	require.NoError(t, srv.ArmFailSafe(time.Minute, 0))

	srv.SetInterfaceEnabled(false)
	assert.False(t, srv.Attributes().InterfaceEnabled)

	_, err := srv.ConnectNetwork(t.Context(), make([]byte, 8))
	assert.ErrorIs(t, err, commissioning.ErrInterfaceDisabled)
	_, err = srv.ScanNetworks(t.Context())
	assert.ErrorIs(t, err, commissioning.ErrInterfaceDisabled)
}

func TestServerScanNetworks(t *testing.T) {
	srv, stack := newTestServer(t)
	found := netcomm.ScanResponse{NetworkName: "mesh-a", Channel: 15}

	stack.EXPECT().StartScan(mock.Anything).
		RunAndReturn(func(cb netcomm.ScanCallback) error {
			go func() {
				cb.OnNetworkFound(found)
				cb.OnFinished(netcomm.StatusSuccess, "")
			}()
			return nil
		}).Once()

	// Scanning needs no fail-safe.
	result, err := srv.ScanNetworks(t.Context())
	require.NoError(t, err)
	assert.Equal(t, netcomm.StatusSuccess, result.Status)
	assert.Equal(t, []netcomm.ScanResponse{found}, result.Networks)

	attrs := srv.Attributes()
	require.NotNil(t, attrs.LastNetworkingStatus)
	assert.Equal(t, netcomm.StatusSuccess, *attrs.LastNetworkingStatus)
	assert.Nil(t, attrs.LastNetworkID)
}

func TestServerScanTimeout(t *testing.T) {
	srv, stack := newTestServer(t, netcomm.WithScanTimeout(20*time.Millisecond))
	stack.EXPECT().StartScan(mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	_, err := srv.ScanNetworks(ctx)
	assert.ErrorIs(t, err, commissioning.ErrTimeout)
}

func TestServerStatusChangeUpdatesAttributes(t *testing.T) {
	srv, _ := newTestServer(t)
	xp := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	connectErr := int32(1)

	srv.OnNetworkingStatusChange(netcomm.StatusNetworkNotFound, xp, &connectErr)
	connectErr = 99

	attrs := srv.Attributes()
	require.NotNil(t, attrs.LastNetworkingStatus)
	assert.Equal(t, netcomm.StatusNetworkNotFound, *attrs.LastNetworkingStatus)
	assert.Equal(t, xp, attrs.LastNetworkID)
	require.NotNil(t, attrs.LastConnectErrorValue)
	assert.Equal(t, int32(1), *attrs.LastConnectErrorValue)

	srv.OnNetworkingStatusChange(netcomm.StatusSuccess, xp, nil)
	assert.Nil(t, srv.Attributes().LastConnectErrorValue)
}

func TestServerAttributeTimeouts(t *testing.T) {
	srv, _ := newTestServer(t)
	attrs := srv.Attributes()
	assert.Equal(t, uint8(10), attrs.ScanMaxTimeSeconds)
	assert.Equal(t, uint8(20), attrs.ConnectMaxTimeSeconds)
	assert.True(t, attrs.InterfaceEnabled)
	assert.Equal(t, "DISARMED", attrs.FailSafe)
	assert.NotNil(t, attrs.Networks)
}
