package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cfme-qe/coverage-reporter/internal/appliance"
	"github.com/cfme-qe/coverage-reporter/internal/coverage"
	"github.com/cfme-qe/coverage-reporter/internal/jenkins"
	"github.com/cfme-qe/coverage-reporter/internal/sonar"
	"github.com/cfme-qe/coverage-reporter/internal/store"
)

func newRunCmd() *cobra.Command {
	var jenkinsUser, jenkinsToken string

	cmd := &cobra.Command{
		Use:   "run <jenkins-url> <jenkins-job-name> <work-appliance-ip>",
		Short: "Collect coverage for the appliance's version and upload the merged result",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveCredentials(jenkinsUser, jenkinsToken); err != nil {
				return err
			}
			return runCollection(cmd.Context(), args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVar(&jenkinsUser, "jenkins-user", "", "Jenkins login")
	cmd.Flags().StringVar(&jenkinsToken, "jenkins-token", "", "Jenkins API token")
	return cmd
}

// resolveCredentials settles the Jenkins credentials from flags, environment
// and config file, in that order. When only the token is missing and stdin
// is a terminal, it is prompted for.
func resolveCredentials(user, token string) error {
	if user != "" {
		appSettings.Jenkins.User = user
	}
	if token != "" {
		appSettings.Jenkins.Token = token
	}

	if appSettings.Jenkins.User != "" && appSettings.Jenkins.Token == "" &&
		term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Jenkins token for %s: ", appSettings.Jenkins.User)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}
		appSettings.Jenkins.Token = strings.TrimSpace(string(b))
	}

	if appSettings.Jenkins.User == "" || appSettings.Jenkins.Token == "" {
		return MissingCredentialsError{}
	}
	return nil
}

func runCollection(ctx context.Context, jenkinsURL, jobName, applianceIP string) error {
	reports, closeStore, err := openReportStore()
	if err != nil {
		return err
	}
	defer closeStore()

	collector, closeAppliance, err := buildCollector(jenkinsURL, applianceIP, reports)
	if err != nil {
		return err
	}
	defer closeAppliance()

	return collector.Run(ctx, jobName)
}

func buildCollector(
	jenkinsURL, applianceIP string,
	reports store.ReportStore,
) (*coverage.Collector, func(), error) {
	client := jenkins.NewClient(
		jenkinsURL,
		appSettings.Jenkins.User,
		appSettings.Jenkins.Token,
		appSettings.InsecureSkipVerify,
		log,
	)
	selector := jenkins.NewSelector(client, log)

	app, err := appliance.New(applianceIP, appSettings.Appliance, log)
	if err != nil {
		return nil, nil, err
	}

	scanner := sonar.NewScanner(
		app,
		appSettings.Sonar,
		appSettings.ScannerDir,
		appSettings.CommandTimeout,
		log,
	)
	collector := coverage.NewCollector(
		selector, client, app, scanner, reports, appSettings, log,
	)
	return collector, func() { app.Close() }, nil
}

func openReportStore() (store.ReportStore, func(), error) {
	rwdb, err := store.InitDatabase(appSettings, false)
	if err != nil {
		return nil, nil, err
	}
	if err := store.RunMigrations(rwdb); err != nil {
		rwdb.Close()
		return nil, nil, err
	}
	rdb, err := store.InitDatabase(appSettings, true)
	if err != nil {
		rwdb.Close()
		return nil, nil, err
	}
	cleanup := func() {
		rdb.Close()
		rwdb.Close()
	}
	return store.NewReportSQLiteStore(rdb, rwdb), cleanup, nil
}
