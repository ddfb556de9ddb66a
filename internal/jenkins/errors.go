package jenkins

import "fmt"

type NoBuildsError struct {
	Job string
}

func (e NoBuildsError) Error() string {
	return fmt.Sprintf("no builds for job %s", e.Job)
}

type NoEligibleBuildsError struct {
	Job     string
	Version string
}

func (e NoEligibleBuildsError) Error() string {
	return fmt.Sprintf(
		"could not find any coverage reports for %s in %s", e.Version, e.Job,
	)
}

type StatusError struct {
	URL        string
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}
