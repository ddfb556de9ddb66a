package jenkins

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cfme-qe/coverage-reporter/internal/version"
)

type MockBuildAPI struct {
	mock.Mock
}

func (m *MockBuildAPI) JobInfo(ctx context.Context, job string) (*Job, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockBuildAPI) BuildInfo(ctx context.Context, job string, number int) (*Build, error) {
	args := m.Called(ctx, job, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Build), args.Error(1)
}

func (m *MockBuildAPI) FetchArtifact(
	ctx context.Context,
	job string,
	build int,
	artifactPath string,
) (string, error) {
	args := m.Called(ctx, job, build, artifactPath)
	return args.String(0), args.Error(1)
}

func (m *MockBuildAPI) ArtifactExists(
	ctx context.Context,
	job string,
	build int,
	artifactPath string,
) (bool, error) {
	args := m.Called(ctx, job, build, artifactPath)
	return args.Bool(0), args.Error(1)
}

func fullBuild(number int) *Build {
	return &Build{
		Number: number,
		Artifacts: []Artifact{
			{FileName: "appliance_version", RelativePath: "log/appliance_version"},
			{FileName: "coverage-results.tgz", RelativePath: "log/coverage-results.tgz"},
		},
	}
}

func mustParse(t *testing.T, s string) version.Version {
	v, err := version.Parse(s)
	assert.NoError(t, err)
	return v
}

func TestSelector_EligibleBuilds(t *testing.T) {
	ctx := context.Background()
	job := "downstream-59z-tests"

	t.Run("success - matching build with coverage path", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).Return(&Job{Builds: []BuildMeta{{Number: 7}}}, nil)
		api.On("BuildInfo", ctx, job, 7).Return(fullBuild(7), nil)
		api.On("FetchArtifact", ctx, job, 7, "log/appliance_version").
			Return("5.9.0.21\n", nil)
		api.On("ArtifactExists", ctx, job, 7, "log/coverage-results.tgz").
			Return(true, nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		eligible, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.NoError(t, err)
		assert.Equal(t, []EligibleBuild{
			{Number: 7, CoveragePath: "log/coverage-results.tgz"},
		}, eligible)
	})

	t.Run("success - result sorted by ascending build number", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).
			Return(&Job{Builds: []BuildMeta{{Number: 9}, {Number: 8}}}, nil)
		for _, n := range []int{9, 8} {
			api.On("BuildInfo", ctx, job, n).Return(fullBuild(n), nil)
			api.On("FetchArtifact", ctx, job, n, "log/appliance_version").
				Return("5.9.0.21", nil)
			api.On("ArtifactExists", ctx, job, n, "log/coverage-results.tgz").
				Return(true, nil)
		}
		selector := NewSelector(api, zerolog.Nop())

		// act
		eligible, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.NoError(t, err)
		assert.Len(t, eligible, 2)
		assert.Equal(t, 8, eligible[0].Number)
		assert.Equal(t, 9, eligible[1].Number)
	})

	t.Run("success - scan stops at first lower version", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).
			Return(&Job{Builds: []BuildMeta{{Number: 10}, {Number: 9}, {Number: 8}}}, nil)
		api.On("BuildInfo", ctx, job, 10).Return(fullBuild(10), nil)
		api.On("FetchArtifact", ctx, job, 10, "log/appliance_version").
			Return("5.9.0.21", nil)
		api.On("ArtifactExists", ctx, job, 10, "log/coverage-results.tgz").
			Return(true, nil)
		api.On("BuildInfo", ctx, job, 9).Return(fullBuild(9), nil)
		api.On("FetchArtifact", ctx, job, 9, "log/appliance_version").
			Return("5.8.4.2", nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		eligible, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.NoError(t, err)
		assert.Equal(t, []EligibleBuild{
			{Number: 10, CoveragePath: "log/coverage-results.tgz"},
		}, eligible)
		api.AssertNotCalled(t, "BuildInfo", ctx, job, 8)
	})

	t.Run("success - builds without required artifacts are skipped", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).
			Return(&Job{Builds: []BuildMeta{{Number: 12}, {Number: 11}, {Number: 10}}}, nil)
		// aborted build, no artifacts at all
		api.On("BuildInfo", ctx, job, 12).Return(&Build{Number: 12}, nil)
		// archived without the coverage tarball
		api.On("BuildInfo", ctx, job, 11).Return(&Build{
			Number: 11,
			Artifacts: []Artifact{
				{FileName: "appliance_version", RelativePath: "log/appliance_version"},
			},
		}, nil)
		api.On("FetchArtifact", ctx, job, 11, "log/appliance_version").
			Return("5.9.0.21", nil)
		api.On("BuildInfo", ctx, job, 10).Return(fullBuild(10), nil)
		api.On("FetchArtifact", ctx, job, 10, "log/appliance_version").
			Return("5.9.0.21", nil)
		api.On("ArtifactExists", ctx, job, 10, "log/coverage-results.tgz").
			Return(true, nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		eligible, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.NoError(t, err)
		assert.Equal(t, []EligibleBuild{
			{Number: 10, CoveragePath: "log/coverage-results.tgz"},
		}, eligible)
	})

	t.Run("success - unparseable and blank versions are skipped", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).
			Return(&Job{Builds: []BuildMeta{{Number: 6}, {Number: 5}, {Number: 4}}}, nil)
		api.On("BuildInfo", ctx, job, 6).Return(fullBuild(6), nil)
		api.On("FetchArtifact", ctx, job, 6, "log/appliance_version").
			Return("nightly", nil)
		api.On("BuildInfo", ctx, job, 5).Return(fullBuild(5), nil)
		api.On("FetchArtifact", ctx, job, 5, "log/appliance_version").
			Return("  \n", nil)
		api.On("BuildInfo", ctx, job, 4).Return(fullBuild(4), nil)
		api.On("FetchArtifact", ctx, job, 4, "log/appliance_version").
			Return("5.9.0.21", nil)
		api.On("ArtifactExists", ctx, job, 4, "log/coverage-results.tgz").
			Return(true, nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		eligible, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.NoError(t, err)
		assert.Len(t, eligible, 1)
		assert.Equal(t, 4, eligible[0].Number)
	})

	t.Run("success - undownloadable coverage archive is skipped", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).
			Return(&Job{Builds: []BuildMeta{{Number: 3}, {Number: 2}}}, nil)
		for _, n := range []int{3, 2} {
			api.On("BuildInfo", ctx, job, n).Return(fullBuild(n), nil)
			api.On("FetchArtifact", ctx, job, n, "log/appliance_version").
				Return("5.9.0.21", nil)
		}
		api.On("ArtifactExists", ctx, job, 3, "log/coverage-results.tgz").
			Return(false, nil)
		api.On("ArtifactExists", ctx, job, 2, "log/coverage-results.tgz").
			Return(true, nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		eligible, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.NoError(t, err)
		assert.Len(t, eligible, 1)
		assert.Equal(t, 2, eligible[0].Number)
	})

	t.Run("failure - job has no builds", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).Return(&Job{}, nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		_, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		var noBuilds NoBuildsError
		assert.ErrorAs(t, err, &noBuilds)
		assert.Equal(t, job, noBuilds.Job)
	})

	t.Run("failure - nothing matches the target version", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		api.On("JobInfo", ctx, job).Return(&Job{Builds: []BuildMeta{{Number: 1}}}, nil)
		api.On("BuildInfo", ctx, job, 1).Return(fullBuild(1), nil)
		api.On("FetchArtifact", ctx, job, 1, "log/appliance_version").
			Return("5.10.0.3", nil)
		api.On("ArtifactExists", ctx, job, 1, "log/coverage-results.tgz").
			Return(true, nil)
		selector := NewSelector(api, zerolog.Nop())

		// act
		_, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		var noEligible NoEligibleBuildsError
		assert.ErrorAs(t, err, &noEligible)
		assert.Equal(t, "5.9.0.21", noEligible.Version)
	})

	t.Run("failure - api error is returned as is", func(t *testing.T) {
		// arrange
		api := new(MockBuildAPI)
		expectedErr := errors.New("503 service unavailable")
		api.On("JobInfo", ctx, job).Return(nil, expectedErr)
		selector := NewSelector(api, zerolog.Nop())

		// act
		_, err := selector.EligibleBuilds(ctx, job, mustParse(t, "5.9.0.21"))

		// assert
		assert.ErrorIs(t, err, expectedErr)
	})
}
