package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cfme-qe/coverage-reporter/internal/jenkins"
	"github.com/cfme-qe/coverage-reporter/internal/version"
)

type MockBuildSelector struct {
	mock.Mock
}

func (m *MockBuildSelector) EligibleBuilds(
	ctx context.Context,
	job string,
	target version.Version,
) ([]jenkins.EligibleBuild, error) {
	args := m.Called(ctx, job, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jenkins.EligibleBuild), args.Error(1)
}
