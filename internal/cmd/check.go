package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamancini/appupdate/internal/interactive"
	"github.com/adamancini/appupdate/internal/output"
	"github.com/adamancini/appupdate/internal/update"
)

func newCheckCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for an update and install it",
		Long: `Compare the installed app with the latest release and offer to update.

Android: the version endpoint is fetched, the package is downloaded into the
cache directory, its signing certificate must match the installed app, then
it is installed over adb.

iOS: the App Store is queried and the store listing is opened.

Without a terminal, prompts are declined unless --yes is given.

Examples:
  appupdate check           # Ask before installing
  appupdate check --yes     # Install without asking
  appupdate check -o json   # Machine-readable result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Install without asking")

	return cmd
}

func runCheck(cmd *cobra.Command, yes bool) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	// Prompts go to stderr so stdout stays parseable
	prompter := interactive.NewPrompterWithIO(cmd.InOrStdin(), cmd.ErrOrStderr())
	switch {
	case yes:
		prompter.SetMode(interactive.ModeApproveAll)
	case !isTerminal():
		s.log.Warn().Msg("no terminal attached, declining prompts (use --yes to install)")
		prompter.SetMode(interactive.ModeDeclineAll)
	}

	var progress *output.Progress
	if s.out.Format() == output.FormatText && !quiet {
		progress = output.NewProgress(cmd.ErrOrStderr())
	}

	report := output.CheckReport{
		Package:  s.file.Package,
		Platform: s.file.GetPlatform(),
	}
	var checkErr error

	opts := update.Options{
		Platform:              s.file.GetPlatform(),
		ApkVersionURL:         s.file.ApkVersionURL,
		ApkVersionOptions:     s.file.RequestOptions(),
		IOSAppID:              s.file.IOSAppID,
		FileProviderAuthority: s.file.FileProviderAuthority,
		NeedUpdateApp: func(ctx context.Context, remote *update.RemoteVersionInfo) bool {
			report.Remote = remote
			return prompter.ConfirmUpdate(remote)
		},
		DownloadApkProgress: func(percent float64) {
			if progress != nil {
				progress.Update(percent)
			}
		},
		DownloadApkEnd: func() {
			if progress != nil {
				progress.Done()
			}
		},
		OnError: func(err error) {
			checkErr = err
		},
		RequestInstallPermission: func(ctx context.Context) bool {
			return prompter.AcknowledgeInstallPermission(s.file.Package)
		},
	}

	controller := update.New(s.bridge, opts,
		update.WithLogger(s.log),
		update.WithHTTPClient(newHTTPClient(s.file.GetTimeout())),
		update.WithCacheDir(s.file.GetCacheDir()),
		update.WithAppStoreURL(appStoreURL),
	)

	start := time.Now()
	state := controller.CheckUpdate(cmd.Context())
	report.State = state.String()
	report.Duration = time.Since(start)
	if checkErr != nil {
		report.Error = checkErr.Error()
	}

	if err := s.out.Write(report); err != nil {
		return err
	}

	if state == update.StateError {
		return fmt.Errorf("update check failed: %w", checkErr)
	}
	return nil
}
