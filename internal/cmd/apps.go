package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/appupdate/internal/output"
	"github.com/adamancini/appupdate/internal/update"
)

func newAppsCmd() *cobra.Command {
	var nonSystem bool

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List packages installed on the device",
		Long: `List packages installed on the device. System packages are marked with "s".
iOS devices report no packages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}

			list := update.Apps
			if nonSystem {
				list = update.NonSystemApps
			}
			apps, err := list(cmd.Context(), s.bridge, s.file.GetPlatform())
			if err != nil {
				return err
			}

			return s.out.Write(output.AppList{Apps: apps})
		},
	}

	cmd.Flags().BoolVar(&nonSystem, "non-system", false, "Only list user-installed packages")

	return cmd
}
