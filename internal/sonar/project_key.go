package sonar

import (
	"fmt"

	"github.com/cfme-qe/coverage-reporter/internal/version"
)

// ProjectKey generates the Central CI project key for a coverage scan,
// of the form <name>_<major>_<minor>_ruby_coverage. Any number of version
// components after major.minor is accepted.
func ProjectKey(name, projectVersion string) (string, error) {
	v, err := version.Parse(projectVersion)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d_%d_ruby_coverage", name, v.Major(), v.Minor()), nil
}
