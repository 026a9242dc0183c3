package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SigNoz/storefront-go-app/internal/payment"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockProcessor) ConstructEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}
