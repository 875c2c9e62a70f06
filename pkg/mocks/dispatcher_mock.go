package mocks

import (
	"context"

	"github.com/dukex/autoflow/pkg/dispatch"
	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock implementation of dispatch.Dispatcher interface.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, req dispatch.Request) error {
	args := m.Called(ctx, req)

	return args.Error(0)
}
