package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/marksync/internal/credential"
	"github.com/nhle/marksync/internal/provider"
)

var validateCmd = &cobra.Command{
	Use:   "validate [provider]",
	Short: "Check provider credentials and connectivity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		failed := 0
		for _, pc := range a.cfg.Providers {
			if len(args) == 1 && pc.ID != args[0] {
				continue
			}

			p, err := buildProvider(pc)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", pc.ID, err)
				continue
			}

			who, err := p.ValidateConnection(cmd.Context())
			if err != nil {
				failed++
				if provider.IsAuthError(err) {
					fmt.Fprintf(cmd.OutOrStdout(),
						"%s: authentication failed (run: marksync credential set %s)\n",
						pc.ID, pc.ID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", pc.ID, err)
				}
				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (authenticated as %s)\n",
				pc.ID, who)
		}

		if failed > 0 {
			return fmt.Errorf("%d provider(s) failed validation", failed)
		}
		return nil
	},
}

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage provider tokens in the system keyring",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store a provider's access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "Token for %s: ", args[0])

		var token string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &token); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		if token == "" {
			return fmt.Errorf("empty token")
		}

		if err := credential.Set(credential.TokenKey(args[0]), token); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Stored token for %s\n", args[0])
		return nil
	},
}

var credentialDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a provider's access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.Delete(credential.TokenKey(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed token for %s\n", args[0])
		return nil
	},
}

func init() {
	credentialCmd.AddCommand(credentialSetCmd, credentialDeleteCmd)
	rootCmd.AddCommand(validateCmd, credentialCmd)
}
