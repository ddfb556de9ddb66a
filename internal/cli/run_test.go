package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cfme-qe/coverage-reporter/internal/settings"
)

func TestResolveCredentials(t *testing.T) {
	t.Run("success - flags override settings", func(t *testing.T) {
		// arrange
		appSettings = settings.NewSettings()
		appSettings.Jenkins.User = "config-user"
		appSettings.Jenkins.Token = "config-token"

		// act
		err := resolveCredentials("flag-user", "flag-token")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "flag-user", appSettings.Jenkins.User)
		assert.Equal(t, "flag-token", appSettings.Jenkins.Token)
	})
	t.Run("success - settings used when flags are empty", func(t *testing.T) {
		// arrange
		appSettings = settings.NewSettings()
		appSettings.Jenkins.User = "config-user"
		appSettings.Jenkins.Token = "config-token"

		// act
		err := resolveCredentials("", "")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "config-user", appSettings.Jenkins.User)
		assert.Equal(t, "config-token", appSettings.Jenkins.Token)
	})
	t.Run("failure - nothing configured", func(t *testing.T) {
		// arrange
		t.Setenv("COVREP_JENKINS_USER", "")
		t.Setenv("COVREP_JENKINS_TOKEN", "")
		appSettings = settings.NewSettings()

		// act
		err := resolveCredentials("", "")

		// assert
		assert.ErrorAs(t, err, &MissingCredentialsError{})
	})
}
