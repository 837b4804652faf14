package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/appupdate/internal/output"
	"github.com/adamancini/appupdate/internal/update"
)

func newPermissionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permission",
		Short: "Show whether the app may install packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}

			allowed, err := update.CanRequestPackageInstalls(cmd.Context(), s.bridge)
			if err != nil {
				return err
			}

			return s.out.Write(output.PermissionReport{Package: s.file.Package, Allowed: allowed})
		},
	}
}
