package jenkins

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// retryLogger adapts zerolog to the retryablehttp.LeveledLogger interface.
type retryLogger struct {
	log zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...any) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...any) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

// Client talks to the Jenkins JSON API and artifact store with basic auth.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	username   string
	token      string
	limiter    *rate.Limiter
	log        zerolog.Logger
}

func NewClient(
	baseURL, username, token string,
	insecureSkipVerify bool,
	log zerolog.Logger,
) *Client {
	transport := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecureSkipVerify}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &nethttp.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
	// Single-shot CI step: transport failures abort the whole run.
	retryClient.RetryMax = 0
	retryClient.Logger = &retryLogger{log: log}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		token:      token,
		// Keep artifact probing polite towards the shared Jenkins.
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		log:     log.With().Str("component", "jenkins").Logger(),
	}
}

// JobInfo fetches the build list of a job, newest build first.
func (c *Client) JobInfo(ctx context.Context, job string) (*Job, error) {
	u := fmt.Sprintf(
		"%s/job/%s/api/json?tree=builds[number]",
		c.baseURL, url.PathEscape(job),
	)
	j := new(Job)
	if err := c.getJSON(ctx, u, j); err != nil {
		return nil, err
	}
	return j, nil
}

// BuildInfo fetches a single build's artifact listing.
func (c *Client) BuildInfo(ctx context.Context, job string, number int) (*Build, error) {
	u := fmt.Sprintf(
		"%s/job/%s/%d/api/json?tree=number,artifacts[fileName,relativePath]",
		c.baseURL, url.PathEscape(job), number,
	)
	b := new(Build)
	if err := c.getJSON(ctx, u, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ArtifactURL builds a fetchable artifact URL with the credentials embedded
// in the authority component, for consumers that cannot send auth headers
// (curl on the appliance).
func (c *Client) ArtifactURL(job string, build int, artifactPath string) (string, error) {
	raw := fmt.Sprintf("%s/job/%s/%d/artifact/%s", c.baseURL, job, build, artifactPath)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("building artifact URL: %w", err)
	}
	u.User = url.UserPassword(c.username, c.token)
	return u.String(), nil
}

// FetchArtifact downloads an artifact and returns its body as text.
func (c *Client) FetchArtifact(
	ctx context.Context,
	job string, build int, artifactPath string,
) (string, error) {
	u := fmt.Sprintf("%s/job/%s/%d/artifact/%s", c.baseURL, job, build, artifactPath)
	resp, err := c.do(ctx, nethttp.MethodGet, u)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading artifact body: %w", err)
	}
	return string(body), nil
}

// ArtifactExists reports whether an artifact responds to HEAD with a status
// in the success/redirect range.
func (c *Client) ArtifactExists(
	ctx context.Context,
	job string, build int, artifactPath string,
) (bool, error) {
	u := fmt.Sprintf("%s/job/%s/%d/artifact/%s", c.baseURL, job, build, artifactPath)
	resp, err := c.do(ctx, nethttp.MethodHead, u)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	resp, err := c.do(ctx, nethttp.MethodGet, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.token)
	c.log.Debug().Str("method", method).Str("url", u).Msg("jenkins request")
	return c.httpClient.Do(req)
}
