package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/cfme-qe/coverage-reporter/internal/util"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pulled merged coverage report over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reportDir := filepath.Join(appSettings.LogDir, "merged")
			if exists, _ := util.PathExists(reportDir); !exists {
				return fmt.Errorf(
					"no merged report found under %s, run a collection first",
					appSettings.LogDir,
				)
			}

			e := echo.New()
			e.HideBanner = true
			e.Static("/", reportDir)

			go func() {
				<-cmd.Context().Done()
				e.Shutdown(context.Background())
			}()

			log.Info().Str("addr", addr).Str("dir", reportDir).
				Msg("serving merged coverage report")
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
