package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	args := m.Called(ctx, base, quote)
	return args.Get(0).(Rate), args.Error(1)
}
