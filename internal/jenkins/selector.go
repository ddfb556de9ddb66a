package jenkins

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cfme-qe/coverage-reporter/internal"
	"github.com/cfme-qe/coverage-reporter/internal/version"
)

// BuildAPI is the slice of the Jenkins client the selector needs.
type BuildAPI interface {
	JobInfo(ctx context.Context, job string) (*Job, error)
	BuildInfo(ctx context.Context, job string, number int) (*Build, error)
	FetchArtifact(ctx context.Context, job string, build int, artifactPath string) (string, error)
	ArtifactExists(ctx context.Context, job string, build int, artifactPath string) (bool, error)
}

// EligibleBuild is a build whose declared appliance version matches the
// target and whose coverage archive is confirmed downloadable.
type EligibleBuild struct {
	Number int
	// Relative path of the coverage-results.tgz artifact within the build.
	CoveragePath string
}

type Selector struct {
	api BuildAPI
	log zerolog.Logger
}

func NewSelector(api BuildAPI, log zerolog.Logger) *Selector {
	return &Selector{
		api: api,
		log: log.With().Str("component", "selector").Logger(),
	}
}

// EligibleBuilds scans the job's build history, newest first, and returns
// the builds carrying coverage results for the target version, sorted by
// ascending build number.
//
// Versions are assumed monotonically non-increasing as the build number
// decreases, so the scan stops at the first build whose declared version is
// strictly less than the target.
func (s *Selector) EligibleBuilds(
	ctx context.Context,
	job string,
	target version.Version,
) ([]EligibleBuild, error) {
	info, err := s.api.JobInfo(ctx, job)
	if err != nil {
		return nil, err
	}
	if len(info.Builds) == 0 {
		return nil, NoBuildsError{Job: job}
	}

	eligible := make([]EligibleBuild, 0)
	for _, meta := range info.Builds {
		build, err := s.api.BuildInfo(ctx, job, meta.Number)
		if err != nil {
			return nil, err
		}
		if len(build.Artifacts) == 0 {
			s.log.Info().Int("build", meta.Number).Msg("no artifacts")
			continue
		}
		artifacts := groupByFileName(build.Artifacts)

		versionArtifact, ok := artifacts[internal.ApplianceVersionArtifact]
		if !ok {
			s.log.Info().Int("build", meta.Number).
				Msgf("%s not in artifacts", internal.ApplianceVersionArtifact)
			continue
		}

		raw, err := s.api.FetchArtifact(ctx, job, meta.Number, versionArtifact.RelativePath)
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			s.log.Info().Int("build", meta.Number).Msg("appliance version unspecified")
			continue
		}
		buildVersion, err := version.Parse(raw)
		if err != nil {
			s.log.Info().Int("build", meta.Number).Str("version", raw).
				Msg("unparseable appliance version")
			continue
		}

		if buildVersion.Less(target) {
			s.log.Info().Int("build", meta.Number).
				Str("version", buildVersion.String()).
				Msg("build already has lower version, ending here")
			break
		}

		coverageArtifact, ok := artifacts[internal.CoverageResultsArtifact]
		if !ok {
			s.log.Info().Int("build", meta.Number).
				Msgf("%s not in artifacts", internal.CoverageResultsArtifact)
			continue
		}
		exists, err := s.api.ArtifactExists(ctx, job, meta.Number, coverageArtifact.RelativePath)
		if err != nil {
			return nil, err
		}
		if !exists {
			s.log.Info().Int("build", meta.Number).
				Msg("coverage archive not downloadable, skipping")
			continue
		}

		if buildVersion.Equal(target) {
			s.log.Info().Int("build", meta.Number).Msg("build contains what is needed")
			eligible = append(eligible, EligibleBuild{
				Number:       meta.Number,
				CoveragePath: coverageArtifact.RelativePath,
			})
		} else {
			s.log.Info().Int("build", meta.Number).
				Str("version", buildVersion.String()).
				Msg("skipping build with different version")
		}
	}

	if len(eligible) == 0 {
		return nil, NoEligibleBuildsError{Job: job, Version: target.String()}
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].Number < eligible[j].Number
	})
	return eligible, nil
}

func groupByFileName(artifacts []Artifact) map[string]Artifact {
	result := make(map[string]Artifact, len(artifacts))
	for _, a := range artifacts {
		result[a.FileName] = a
	}
	return result
}
