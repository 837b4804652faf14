package cmd

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adamancini/appupdate/internal/adb"
	"github.com/adamancini/appupdate/internal/config"
	"github.com/adamancini/appupdate/internal/interactive"
	"github.com/adamancini/appupdate/internal/ios"
	"github.com/adamancini/appupdate/internal/logging"
	"github.com/adamancini/appupdate/internal/output"
	"github.com/adamancini/appupdate/internal/update"
)

// Replaced in tests.
var (
	newBridge = func(u *config.Updatefile, log zerolog.Logger) update.Bridge {
		if u.GetPlatform() == update.PlatformIOS {
			return ios.New(u.Package,
				ios.WithUDID(u.Device),
				ios.WithInstalledVersion(u.InstalledVersion),
				ios.WithTools(u.GetIOSTools()),
				ios.WithLogger(log),
			)
		}
		return adb.New(u.Package,
			adb.WithSerial(u.Device),
			adb.WithTools(u.GetTools()),
			adb.WithLogger(log),
		)
	}
	isTerminal  = interactive.IsTerminal
	appStoreURL = update.DefaultAppStoreLookupURL
)

// session holds what every device command needs.
type session struct {
	file   *config.Updatefile
	log    zerolog.Logger
	out    *output.Writer
	bridge update.Bridge
}

// loadSession resolves the Updatefile, logger, output writer and bridge.
func loadSession(cmd *cobra.Command) (*session, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	path, err := config.FindUpdatefile(configPath)
	if err != nil {
		return nil, err
	}
	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Level: file.LogLevel, Verbose: verbose, Quiet: quiet}
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		logOpts.Out = w
	}
	log, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("package", file.Package).Logger()
	log.Debug().Str("updatefile", path).Msg("loaded configuration")

	return &session{
		file:   file,
		log:    log,
		out:    output.NewWriter(cmd.OutOrStdout(), format),
		bridge: newBridge(file, log),
	}, nil
}

// newHTTPClient bounds connection setup and response headers by timeout.
// The body is not bounded so large packages can finish downloading.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}
