package cli

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jenkinsUser, jenkinsToken, schedule string

	cmd := &cobra.Command{
		Use:   "watch <jenkins-url> <jenkins-job-name> <work-appliance-ip>",
		Short: "Run collection repeatedly on a cron schedule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveCredentials(jenkinsUser, jenkinsToken); err != nil {
				return err
			}

			scheduler, err := gocron.NewScheduler()
			if err != nil {
				return err
			}
			job, err := scheduler.NewJob(
				gocron.CronJob(schedule, false),
				gocron.NewTask(func() {
					if err := runCollection(
						cmd.Context(), args[0], args[1], args[2],
					); err != nil {
						log.Error().Err(err).Msg("collection failed")
					}
				}),
			)
			if err != nil {
				return err
			}

			log.Info().
				Str("job_id", job.ID().String()).
				Str("schedule", schedule).
				Msg("watching for coverage results")
			scheduler.Start()

			<-cmd.Context().Done()
			return scheduler.Shutdown()
		},
	}

	cmd.Flags().StringVar(&jenkinsUser, "jenkins-user", "", "Jenkins login")
	cmd.Flags().StringVar(&jenkinsToken, "jenkins-token", "", "Jenkins API token")
	cmd.Flags().StringVar(&schedule, "schedule", "0 2 * * *", "Cron schedule for collection runs")
	return cmd
}
