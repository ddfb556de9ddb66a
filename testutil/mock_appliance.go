package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cfme-qe/coverage-reporter/internal/appliance"
	"github.com/cfme-qe/coverage-reporter/internal/version"
)

type MockAppliance struct {
	mock.Mock
}

func (m *MockAppliance) RunCommand(
	ctx context.Context,
	command string,
	timeout time.Duration,
) (*appliance.CommandResult, error) {
	args := m.Called(ctx, command, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appliance.CommandResult), args.Error(1)
}

func (m *MockAppliance) PutBytes(data []byte, remotePath string) error {
	args := m.Called(data, remotePath)
	return args.Error(0)
}

func (m *MockAppliance) GetFile(remotePath, localDir string) (string, error) {
	args := m.Called(remotePath, localDir)
	return args.String(0), args.Error(1)
}

func (m *MockAppliance) Version(ctx context.Context) (version.Version, error) {
	args := m.Called(ctx)
	return args.Get(0).(version.Version), args.Error(1)
}

func (m *MockAppliance) StopService(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
