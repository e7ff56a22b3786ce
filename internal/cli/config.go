package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/marksync/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the marksync configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = model.DefaultConfigPath()
		}
		return initConfig(cmd, path)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		path := flagConfig
		if path == "" {
			path = model.DefaultConfigPath()
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	},
}

// initConfig writes the default configuration to path, refusing to clobber
// an existing file.
func initConfig(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := model.SaveConfig(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return nil
}

func init() {
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
