package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [provider]",
	Short: "Run one sync cycle for a provider (or all providers)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ids := a.engine.ProviderIDs()
		if len(args) == 1 {
			ids = args[:1]
		}
		if len(ids) == 0 {
			return fmt.Errorf("no providers configured in %s", a.cfgPath)
		}

		failed := 0
		for _, id := range ids {
			result := a.engine.RunSync(cmd.Context(), id)
			if result.Err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: sync failed: %v\n",
					id, result.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%.1fs)\n",
				id, result.Message, result.Elapsed.Seconds())
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d providers failed", failed, len(ids))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
