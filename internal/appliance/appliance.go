// Package appliance drives a work appliance over SSH: timed remote
// commands, file transfer, service control and version probing.
package appliance

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/cfme-qe/coverage-reporter/internal"
	"github.com/cfme-qe/coverage-reporter/internal/settings"
	"github.com/cfme-qe/coverage-reporter/internal/version"
)

type CommandResult struct {
	Stdout string
	Stderr string
}

// Output returns combined stdout and stderr for log and error messages.
func (r *CommandResult) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + r.Stderr
}

type Appliance struct {
	host   string
	config *ssh.ClientConfig
	log    zerolog.Logger

	mu     sync.Mutex
	client *ssh.Client
}

func New(host string, cfg settings.ApplianceSettings, log zerolog.Logger) (*Appliance, error) {
	auth := make([]ssh.AuthMethod, 0, 2)
	if cfg.SSHKeyPath != "" {
		privateKey, err := os.ReadFile(cfg.SSHKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading ssh private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(privateKey)
		if err != nil {
			return nil, fmt.Errorf("parsing ssh private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.SSHPassword != "" {
		auth = append(auth, ssh.Password(cfg.SSHPassword))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no ssh credentials configured for appliance %s", host)
	}

	if !strings.Contains(host, ":") {
		host += ":22"
	}

	return &Appliance{
		host: host,
		config: &ssh.ClientConfig{
			User:            cfg.SSHUser,
			Auth:            auth,
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         10 * time.Second,
		},
		log: log.With().Str("component", "appliance").Str("host", host).Logger(),
	}, nil
}

func (a *Appliance) connect() (*ssh.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	client, err := ssh.Dial("tcp", a.host, a.config)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", a.host, err)
	}
	a.client = client
	return client, nil
}

func (a *Appliance) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

// RunCommand executes a command on the appliance and waits for it to finish
// within the timeout. A non-zero exit or a timeout is returned as a
// RemoteCommandError.
func (a *Appliance) RunCommand(
	ctx context.Context,
	command string,
	timeout time.Duration,
) (*CommandResult, error) {
	client, err := a.connect()
	if err != nil {
		return nil, err
	}
	sess, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("creating ssh session: %w", err)
	}
	defer sess.Close()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	sess.Stdout = stdout
	sess.Stderr = stderr

	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a.log.Debug().Str("command", command).Msg("running remote command")

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- sess.Run(command)
	}()

	select {
	case <-ctxTimeout.Done():
		sess.Signal(ssh.SIGKILL)
		return nil, RemoteCommandError{
			Command: command,
			Output:  stdout.String() + stderr.String(),
			Err: fmt.Errorf(
				"timeout after %d seconds", int(timeout.Seconds()),
			),
		}
	case err := <-doneCh:
		result := &CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			return nil, RemoteCommandError{
				Command: command,
				Output:  result.Output(),
				Err:     err,
			}
		}
		return result, nil
	}
}

// Version reads the version string the appliance declares.
func (a *Appliance) Version(ctx context.Context) (version.Version, error) {
	result, err := a.RunCommand(
		ctx,
		fmt.Sprintf("cat %s/VERSION", internal.RailsRoot),
		30*time.Second,
	)
	if err != nil {
		return version.Version{}, err
	}
	return version.Parse(strings.TrimSpace(result.Stdout))
}

// StopService stops a systemd unit on the appliance.
func (a *Appliance) StopService(ctx context.Context, name string) error {
	_, err := a.RunCommand(ctx, "systemctl stop "+name, 2*time.Minute)
	return err
}
