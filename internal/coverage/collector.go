// Package coverage orchestrates a collection run: selecting eligible
// Jenkins builds, consolidating their coverage archives on the appliance,
// pulling the merged report and triggering the sonar scan.
package coverage

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	assets "github.com/cfme-qe/coverage-reporter"
	"github.com/cfme-qe/coverage-reporter/internal"
	"github.com/cfme-qe/coverage-reporter/internal/appliance"
	"github.com/cfme-qe/coverage-reporter/internal/jenkins"
	"github.com/cfme-qe/coverage-reporter/internal/settings"
	"github.com/cfme-qe/coverage-reporter/internal/store"
	"github.com/cfme-qe/coverage-reporter/internal/util"
	"github.com/cfme-qe/coverage-reporter/internal/version"
)

// Executor is the slice of the appliance the collector needs.
type Executor interface {
	RunCommand(ctx context.Context, command string, timeout time.Duration) (*appliance.CommandResult, error)
	PutBytes(data []byte, remotePath string) error
	GetFile(remotePath, localDir string) (string, error)
	Version(ctx context.Context) (version.Version, error)
	StopService(ctx context.Context, name string) error
}

type BuildSelector interface {
	EligibleBuilds(ctx context.Context, job string, target version.Version) ([]jenkins.EligibleBuild, error)
}

type ArtifactResolver interface {
	ArtifactURL(job string, build int, artifactPath string) (string, error)
}

type Scanner interface {
	Scan(ctx context.Context, projectName, projectVersion string) error
}

var locPercentRe = regexp.MustCompile(`LOC\s+\((\d+\.\d+%)\)\s+covered\.`)

type Collector struct {
	selector  BuildSelector
	resolver  ArtifactResolver
	appliance Executor
	scanner   Scanner
	reports   store.ReportStore
	settings  *settings.AppSettings
	log       zerolog.Logger
}

func NewCollector(
	selector BuildSelector,
	resolver ArtifactResolver,
	exec Executor,
	scanner Scanner,
	reports store.ReportStore,
	as *settings.AppSettings,
	log zerolog.Logger,
) *Collector {
	return &Collector{
		selector:  selector,
		resolver:  resolver,
		appliance: exec,
		scanner:   scanner,
		reports:   reports,
		settings:  as,
		log:       log.With().Str("component", "collector").Logger(),
	}
}

// Run performs one full collection against a job and records its outcome.
func (c *Collector) Run(ctx context.Context, job string) error {
	target, err := c.appliance.Version(ctx)
	if err != nil {
		return fmt.Errorf("reading appliance version: %w", err)
	}

	report, err := c.reports.CreateReport(ctx, uuid.NewString(), job, target.String())
	if err != nil {
		return fmt.Errorf("recording report: %w", err)
	}

	coveragePct, runErr := c.collect(ctx, report, job, target)

	endedOn := time.Now().UTC()
	status := store.StatusPassed
	var errorMessage *string
	if runErr != nil {
		status = store.StatusFailed
		errorMessage = util.AsPtr(runErr.Error())
	}
	if err := c.reports.UpdateReportEnded(
		ctx, report.ReportID, status, coveragePct, errorMessage, &endedOn,
	); err != nil {
		c.log.Error().Err(err).Msg("updating report outcome")
	}
	return runErr
}

func (c *Collector) collect(
	ctx context.Context,
	report *store.Report,
	job string,
	target version.Version,
) (*string, error) {
	c.log.Info().
		Str("version", target.String()).
		Str("job", job).
		Msg("looking for builds with matching appliance version")

	eligible, err := c.selector.EligibleBuilds(ctx, job, target)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(eligible))
	for i, b := range eligible {
		numbers[i] = strconv.Itoa(b.Number)
	}
	if err := c.reports.UpdateReportBuilds(
		ctx, report.ReportID, strings.Join(numbers, ","),
	); err != nil {
		return nil, err
	}
	c.log.Info().Strs("builds", numbers).Msg("eligible builds")

	c.log.Info().Str("service", internal.EVMService).Msg("stopping appliance service")
	if err := c.appliance.StopService(ctx, internal.EVMService); err != nil {
		return nil, err
	}

	if err := c.installCoverageTools(ctx); err != nil {
		return nil, err
	}

	if _, err := c.appliance.RunCommand(
		ctx, "mkdir -p "+c.settings.CoverageDir, c.settings.CommandTimeout,
	); err != nil {
		return nil, fmt.Errorf("could not create coverage directory on the appliance: %w", err)
	}

	for _, build := range eligible {
		if err := c.downloadAndExtract(ctx, job, build); err != nil {
			return nil, err
		}
	}

	coveragePct, err := c.merge(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.pullMerged(ctx); err != nil {
		return nil, err
	}

	if err := c.scanner.Scan(ctx, c.settings.ProjectName, target.String()); err != nil {
		return nil, err
	}
	return coveragePct, nil
}

// installCoverageTools installs simplecov and uploads the embedded merger
// script into the rails root.
func (c *Collector) installCoverageTools(ctx context.Context) error {
	c.log.Info().Msg("installing simplecov")
	if _, err := c.appliance.RunCommand(
		ctx,
		fmt.Sprintf("cd %s && gem install --no-document simplecov", internal.RailsRoot),
		c.settings.CommandTimeout,
	); err != nil {
		return err
	}

	c.log.Info().Msg("installing coverage merger")
	script, err := assets.ScriptsFS.ReadFile("scripts/" + internal.MergerScriptName)
	if err != nil {
		return err
	}
	return c.appliance.PutBytes(
		script,
		internal.RailsRoot+"/"+internal.MergerScriptName,
	)
}

func (c *Collector) downloadAndExtract(
	ctx context.Context,
	job string,
	build jenkins.EligibleBuild,
) error {
	c.log.Info().Int("build", build.Number).Msg("downloading coverage data")
	downloadURL, err := c.resolver.ArtifactURL(job, build.Number, build.CoveragePath)
	if err != nil {
		return err
	}
	if _, err := c.appliance.RunCommand(
		ctx,
		shellquote.Join("curl", "-k", "-o", c.settings.CoverageDir+"/tmp.tgz", downloadURL),
		c.settings.CommandTimeout,
	); err != nil {
		return fmt.Errorf("could not download coverage archive of build %d: %w", build.Number, err)
	}

	c.log.Info().Int("build", build.Number).Msg("extracting coverage data")
	extract := strings.Join([]string{
		"cd " + c.settings.CoverageDir,
		"tar xf tmp.tgz --strip-components=1",
		"rm -f tmp.tgz",
	}, " && ")
	if _, err := c.appliance.RunCommand(ctx, extract, c.settings.CommandTimeout); err != nil {
		return fmt.Errorf("could not extract coverage archive of build %d: %w", build.Number, err)
	}
	return nil
}

// merge runs the merger on the appliance and returns the overall coverage
// percentage when it can be read off the merger output.
func (c *Collector) merge(ctx context.Context) (*string, error) {
	c.log.Info().Msg("merging coverage data")
	result, err := c.appliance.RunCommand(
		ctx,
		fmt.Sprintf(
			"cd %s && bin/rails runner %s --coverageRoot=%s",
			internal.RailsRoot, internal.MergerScriptName, c.settings.CoverageDir,
		),
		c.settings.MergeTimeout,
	)
	if err != nil {
		return nil, err
	}
	c.log.Info().Msg("coverage report generation was successful")

	var coveragePct *string
	if m := locPercentRe.FindStringSubmatch(result.Output()); m != nil {
		coveragePct = util.AsPtr(m[1])
		c.log.Info().Str("coverage", m[1]).Msg("overall coverage")
	} else {
		c.log.Info().Msg("coverage unknown")
	}

	// sonar-scanner needs the resultset at the root of the coverage dir.
	if _, err := c.appliance.RunCommand(
		ctx,
		fmt.Sprintf(
			"ln -s merged/.resultset.json %s/.resultset.json", c.settings.CoverageDir,
		),
		c.settings.CommandTimeout,
	); err != nil {
		return nil, err
	}
	return coveragePct, nil
}

// pullMerged packages the merged output on the appliance, copies it to the
// local log directory and unpacks it there.
func (c *Collector) pullMerged(ctx context.Context) error {
	c.log.Info().Msg("packing the generated HTML")
	if _, err := c.appliance.RunCommand(
		ctx,
		fmt.Sprintf("cd %s; tar cfz /tmp/merged.tgz merged", c.settings.CoverageDir),
		c.settings.CommandTimeout,
	); err != nil {
		return fmt.Errorf("could not compress merged results: %w", err)
	}

	c.log.Info().Msg("grabbing the generated HTML")
	localPath, err := c.appliance.GetFile("/tmp/merged.tgz", c.settings.LogDir)
	if err != nil {
		return err
	}

	c.log.Info().Msg("locally decompressing the generated HTML")
	cmd := exec.CommandContext(ctx, "tar", "xf", localPath, "-C", c.settings.LogDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("unpacking %s: %s: %w", localPath, string(out), err)
	}
	c.log.Info().Msg("done")
	return nil
}
