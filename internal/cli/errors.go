package cli

type MissingCredentialsError struct{}

func (e MissingCredentialsError) Error() string {
	return "--jenkins-user and --jenkins-token not provided and the config " +
		"file does not contain the jenkins_app entry with user and token"
}
