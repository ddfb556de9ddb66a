package testutil

import (
	"github.com/stretchr/testify/mock"
)

type MockArtifactResolver struct {
	mock.Mock
}

func (m *MockArtifactResolver) ArtifactURL(
	job string,
	build int,
	artifactPath string,
) (string, error) {
	args := m.Called(job, build, artifactPath)
	return args.String(0), args.Error(1)
}
