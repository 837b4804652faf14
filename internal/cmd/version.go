package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamancini/appupdate/internal/output"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (b buildInfo) String() string {
	return fmt.Sprintf("appupdate version %s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}

func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			return output.NewWriter(cmd.OutOrStdout(), format).Write(buildInfo{
				Version: version,
				Commit:  commit,
				Date:    date,
			})
		},
	}
}
