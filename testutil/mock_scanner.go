package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, projectName, projectVersion string) error {
	args := m.Called(ctx, projectName, projectVersion)
	return args.Error(0)
}
