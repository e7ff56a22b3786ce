package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/syncer"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync daemon, polling all configured providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(a.engine.ProviderIDs()) == 0 {
			return fmt.Errorf("no providers configured in %s", a.cfgPath)
		}

		poller := syncer.NewPoller(a.engine, a.log)
		for _, pc := range a.cfg.Providers {
			if pc.Enabled {
				poller.Add(pc)
			}
		}

		ctx := cmd.Context()
		poller.Start(ctx)
		defer poller.Stop()

		a.log.Info("marksync daemon started",
			logger.Int("providers", len(a.engine.ProviderIDs())))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case <-ctx.Done():
				logStatuses(poller, a.log)
				return nil
			case sig := <-sigCh:
				a.log.Info("shutting down", logger.String("signal", sig.String()))
				logStatuses(poller, a.log)
				return nil
			case result := <-poller.Results():
				if result.Err != nil {
					continue // already logged by the engine
				}
				a.log.Debug("cycle finished",
					logger.String("provider", result.ProviderID),
					logger.String("result", result.Message))
			}
		}
	},
}

// logStatuses records each provider's final polling state on shutdown.
func logStatuses(poller *syncer.Poller, log *logger.Logger) {
	for _, st := range poller.Statuses() {
		fields := []logger.Field{
			logger.String("provider", st.ProviderID),
		}
		if !st.LastSync.IsZero() {
			fields = append(fields, logger.String("last_sync",
				st.LastSync.Format("2006-01-02 15:04:05")))
		}
		if st.Error != nil {
			fields = append(fields, logger.Error(st.Error))
		}
		log.Info("provider status", fields...)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
