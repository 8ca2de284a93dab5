package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/config"
	"github.com/filesift/filesift/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default user configuration",
		Long: `Write the default configuration to the user config file
(~/.config/filesift/config.yaml). An existing config is only replaced
with --force, which backs it up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config (backed up first)")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	path := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
		backup, err := config.BackupUserConfig()
		if err != nil {
			return err
		}
		if backup != "" {
			out.Statusf("", "backed up existing config to %s", backup)
		}
	}

	if err := config.NewConfig().WriteYAML(path); err != nil {
		return err
	}
	out.Success("wrote " + path)
	return nil
}
