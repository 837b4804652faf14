package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/appupdate/internal/output"
	"github.com/adamancini/appupdate/internal/update"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show installed package metadata",
		Long: `Show the version, install times, installer and signing certificates of
the installed app.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}

			info, err := update.Installed(cmd.Context(), s.bridge)
			if err != nil {
				return err
			}

			return s.out.Write(output.PackageReport(*info))
		},
	}
}
