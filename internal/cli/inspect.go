package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks [provider]",
	Short: "List synced bookmarks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ids := make([]string, 0, len(a.cfg.Providers))
		for _, pc := range a.cfg.Providers {
			if len(args) == 1 && pc.ID != args[0] {
				continue
			}
			ids = append(ids, pc.ID)
		}

		total := 0
		for _, id := range ids {
			bookmarks, err := a.store.ListBookmarks(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, bm := range bookmarks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					bm.ItemID, bm.Title, bm.URL)
			}
			total += len(bookmarks)
		}

		if total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no bookmarks synced yet")
		}
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show recent sync notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := a.store.ListNotifications(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no notifications recorded")
			return nil
		}

		for _, n := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%-7s\t%s: %s\n",
				n.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				n.Kind, n.Title, n.Message)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marksync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "marksync %s\n", version)
	},
}

func init() {
	notificationsCmd.Flags().Int("limit", 20, "maximum records to show")
	rootCmd.AddCommand(bookmarksCmd, notificationsCmd, versionCmd)
}
