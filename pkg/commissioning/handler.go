package commissioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mash-protocol/meshprov/pkg/failsafe"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Handle executes a decoded command message and returns the response
// message. Refused commands are answered with a *CommissioningError.
func (s *Server) Handle(ctx context.Context, msg any) any {
	switch m := msg.(type) {
	case *ArmFailSafe:
		if err := s.ArmFailSafe(time.Duration(m.ExpirySeconds)*time.Second, m.Breadcrumb); err != nil {
			return &ArmFailSafeResponse{MsgType: MsgArmFailSafeResponse, ErrorCode: errorCode(err), DebugText: err.Error()}
		}
		return &ArmFailSafeResponse{MsgType: MsgArmFailSafeResponse}

	case *AddOrUpdateNetwork:
		result, err := s.AddOrUpdateNetwork(m.Dataset)
		return s.networkConfigResponse(result, err, m.Breadcrumb)

	case *RemoveNetwork:
		result, err := s.RemoveNetwork(m.NetworkID)
		return s.networkConfigResponse(result, err, m.Breadcrumb)

	case *ReorderNetwork:
		result, err := s.ReorderNetwork(m.NetworkID, m.NetworkIndex)
		return s.networkConfigResponse(result, err, m.Breadcrumb)

	case *ConnectNetwork:
		result, err := s.ConnectNetwork(ctx, m.NetworkID)
		if err != nil {
			return newCommissioningError(err)
		}
		if result.Status == netcomm.StatusSuccess {
			s.updateBreadcrumb(m.Breadcrumb)
		}
		return &ConnectNetworkResponse{
			MsgType:    MsgConnectNetworkResponse,
			Status:     result.Status,
			DebugText:  result.DebugText,
			ErrorValue: result.ConnectError,
		}

	case *ScanNetworks:
		result, err := s.ScanNetworks(ctx)
		if err != nil {
			return newCommissioningError(err)
		}
		if result.Status == netcomm.StatusSuccess {
			s.updateBreadcrumb(m.Breadcrumb)
		}
		resp := &ScanNetworksResponse{
			MsgType:   MsgScanNetworksResponse,
			Status:    result.Status,
			DebugText: result.DebugText,
			Networks:  make([]ScanEntry, 0, len(result.Networks)),
		}
		for _, n := range result.Networks {
			resp.Networks = append(resp.Networks, scanEntry(n))
		}
		return resp

	case *CommissioningComplete:
		if err := s.CommissioningComplete(); err != nil {
			return &CommissioningCompleteResponse{MsgType: MsgCommissioningCompleteResponse, ErrorCode: errorCode(err), DebugText: err.Error()}
		}
		return &CommissioningCompleteResponse{MsgType: MsgCommissioningCompleteResponse}

	case *ReadAttributes:
		return &AttributesReport{MsgType: MsgAttributes, Attributes: s.Attributes()}

	default:
		return &CommissioningError{
			MsgType:   MsgCommissioningError,
			ErrorCode: ErrCodeInvalidMessage,
			Message:   fmt.Sprintf("unexpected message type %d", MessageType(msg)),
		}
	}
}

func (s *Server) networkConfigResponse(result NetworkConfigResult, err error, breadcrumb *uint64) any {
	if err != nil {
		return newCommissioningError(err)
	}
	if result.Status == netcomm.StatusSuccess {
		s.updateBreadcrumb(breadcrumb)
	}
	return &NetworkConfigResponse{MsgType: MsgNetworkConfigResponse, Result: result}
}

func (s *Server) updateBreadcrumb(breadcrumb *uint64) {
	if breadcrumb != nil {
		s.SetBreadcrumb(*breadcrumb)
	}
}

func newCommissioningError(err error) *CommissioningError {
	return &CommissioningError{
		MsgType:   MsgCommissioningError,
		ErrorCode: errorCode(err),
		Message:   err.Error(),
	}
}

// errorCode maps a server error to its wire error code.
func errorCode(err error) uint8 {
	switch {
	case err == nil:
		return ErrCodeSuccess
	case errors.Is(err, ErrFailSafeRequired):
		return ErrCodeFailSafeRequired
	case errors.Is(err, failsafe.ErrInvalidExpiry):
		return ErrCodeInvalidExpiry
	case errors.Is(err, ErrInterfaceDisabled):
		return ErrCodeInterfaceDisabled
	case errors.Is(err, ErrTimeout):
		return ErrCodeTimeout
	case errors.Is(err, ErrInvalidMessage):
		return ErrCodeInvalidMessage
	case errors.Is(err, ErrNotStarted):
		return ErrCodeNotStarted
	default:
		return ErrCodeInternalError
	}
}
