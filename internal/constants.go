package internal

const (
	DotEnvPath = "./.env"

	// Artifact file names published by the appliance build jobs.
	ApplianceVersionArtifact = "appliance_version"
	CoverageResultsArtifact  = "coverage-results.tgz"

	// Paths on the work appliance.
	RailsRoot        = "/var/www/miq/vmdb"
	MergerScriptName = "coverage_merger.rb"

	EVMService = "evmserverd"

	DBTimestampLayout = "2006-01-02 15:04:05"
)
