// Package gatewaytest provides a testify mock of the gateway contracts.
package gatewaytest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// MockGateway implements gateway.Gateway, gateway.Accounts and gateway.Events.
type MockGateway struct {
	mock.Mock
}

var (
	_ gateway.Gateway  = (*MockGateway)(nil)
	_ gateway.Accounts = (*MockGateway)(nil)
	_ gateway.Events   = (*MockGateway)(nil)
)

func (m *MockGateway) CreateCharge(ctx context.Context, params gateway.ChargeParams) (*gateway.Charge, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockGateway) RetrieveCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockGateway) CaptureCharge(ctx context.Context, chargeID string, params gateway.CaptureParams) (*gateway.Charge, error) {
	args := m.Called(ctx, chargeID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockGateway) ReverseCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockGateway) RefundCharge(ctx context.Context, chargeID string, params gateway.RefundParams) (*gateway.Refund, error) {
	args := m.Called(ctx, chargeID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Refund), args.Error(1)
}

func (m *MockGateway) CreateSource(ctx context.Context, params gateway.SourceParams) (*gateway.Source, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Source), args.Error(1)
}

func (m *MockGateway) CreateToken(ctx context.Context, params gateway.TokenParams) (*gateway.Token, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Token), args.Error(1)
}

func (m *MockGateway) RetrieveAccount(ctx context.Context) (*gateway.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Account), args.Error(1)
}

func (m *MockGateway) RetrieveBalance(ctx context.Context) (*gateway.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Balance), args.Error(1)
}

func (m *MockGateway) RetrieveCapabilities(ctx context.Context) (*gateway.Capabilities, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Capabilities), args.Error(1)
}

func (m *MockGateway) RetrieveEvent(ctx context.Context, eventID string) (*gateway.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Event), args.Error(1)
}
