// Package sonar installs and runs sonar-scanner on the appliance and
// generates the project configuration for the scan.
package sonar

import (
	"context"
	"fmt"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/cfme-qe/coverage-reporter/internal/appliance"
	"github.com/cfme-qe/coverage-reporter/internal/settings"
)

const scannerZip = "/root/scanner.zip"

// The scanner expects sonar.sources as paths relative to /, and all CFME
// ruby sources live in these two trees.
const projectSources = "opt/rh/cfme-gemset,var/www/miq/vmdb"

// Executor is the slice of the appliance the scanner needs.
type Executor interface {
	RunCommand(ctx context.Context, command string, timeout time.Duration) (*appliance.CommandResult, error)
	PutBytes(data []byte, remotePath string) error
}

type Scanner struct {
	exec       Executor
	cfg        settings.SonarSettings
	scannerDir string
	cmdTimeout time.Duration
	log        zerolog.Logger
}

func NewScanner(
	exec Executor,
	cfg settings.SonarSettings,
	scannerDir string,
	cmdTimeout time.Duration,
	log zerolog.Logger,
) *Scanner {
	return &Scanner{
		exec:       exec,
		cfg:        cfg,
		scannerDir: scannerDir,
		cmdTimeout: cmdTimeout,
		log:        log.With().Str("component", "sonar").Logger(),
	}
}

// Scan installs the scanner on the appliance and runs it.
func (s *Scanner) Scan(ctx context.Context, projectName, projectVersion string) error {
	if err := s.Install(ctx, projectName, projectVersion); err != nil {
		return err
	}
	return s.Run(ctx)
}

// Install pulls sonar-scanner onto the appliance, installs it under the
// scanner directory, points it at the configured SonarQube server and
// uploads the generated project configuration.
func (s *Scanner) Install(ctx context.Context, projectName, projectVersion string) error {
	s.log.Info().Str("dir", s.scannerDir).Msg("installing sonar scanner on appliance")

	if _, err := s.exec.RunCommand(
		ctx, "mkdir -p "+s.scannerDir, s.cmdTimeout,
	); err != nil {
		return err
	}
	if _, err := s.exec.RunCommand(
		ctx,
		shellquote.Join("wget", "-O", scannerZip, s.cfg.ScannerURL),
		s.cmdTimeout,
	); err != nil {
		return err
	}
	if _, err := s.exec.RunCommand(
		ctx,
		shellquote.Join("unzip", "-d", s.scannerDir, scannerZip),
		s.cmdTimeout,
	); err != nil {
		return err
	}
	// The zip unpacks into a single versioned directory whose name we do
	// not want to depend on; flatten it into the scanner dir.
	if _, err := s.exec.RunCommand(
		ctx,
		fmt.Sprintf("cd %s; mv $(ls)/* .", s.scannerDir),
		s.cmdTimeout,
	); err != nil {
		return err
	}

	scannerConf := fmt.Sprintf("%s/conf/sonar-scanner.properties", s.scannerDir)
	if _, err := s.exec.RunCommand(
		ctx,
		fmt.Sprintf("echo \"sonar.host.url=%s\" > %s", s.cfg.URL, scannerConf),
		s.cmdTimeout,
	); err != nil {
		return err
	}

	projectConf, err := s.projectConfig(projectName, projectVersion)
	if err != nil {
		return err
	}
	s.log.Info().Msg("uploading sonar-project.properties")
	return s.exec.PutBytes(projectConf, "/sonar-project.properties")
}

// Run runs the scan from / so that both source trees sit under the project
// root, with the configured timeout.
func (s *Scanner) Run(ctx context.Context) error {
	s.log.Info().
		Dur("timeout", s.cfg.ScanTimeout).
		Msg("running sonar scan, this may take a while")

	cmd := fmt.Sprintf(
		`cd /; SONAR_SCANNER_OPTS="-Xmx4096m" %s/bin/sonar-scanner -X`,
		s.scannerDir,
	)
	started := time.Now()
	if _, err := s.exec.RunCommand(ctx, cmd, s.cfg.ScanTimeout); err != nil {
		return err
	}
	s.log.Info().Dur("elapsed", time.Since(started)).Msg("sonar scan finished")
	return nil
}

func (s *Scanner) projectConfig(projectName, projectVersion string) ([]byte, error) {
	key, err := ProjectKey(projectName, projectVersion)
	if err != nil {
		return nil, err
	}
	conf := fmt.Sprintf(`sonar.projectKey=%s
sonar.projectName=%s
sonar.projectVersion=%s
sonar.language=ruby
sonar.sources=%s
`, key, projectName, projectVersion, projectSources)
	return []byte(conf), nil
}
