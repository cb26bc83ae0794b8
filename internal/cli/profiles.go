package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/aws-costs-tui/internal/config"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the profiles found in the shared AWS config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			profiles, err := config.ListProfiles(cfg)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no profiles found in", cfg.CredentialsFile, "or", cfg.ConfigFile)
				return nil
			}
			for _, name := range profiles {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
