// Package ios implements the update bridge for an iPhone or iPad attached to
// the workstation. The installed version comes from ideviceinstaller
// (libimobiledevice) or a pinned value in the Updatefile. Updates are
// delivered through the App Store, so package inspection and sideloading
// are unsupported.
package ios

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adamancini/appupdate/internal/adb"
	"github.com/adamancini/appupdate/internal/update"
)

// ErrUnsupported is returned for operations iOS does not allow
var ErrUnsupported = errors.New("not supported on ios")

// Tools names the host executables the bridge shells out to
type Tools struct {
	IDeviceInstaller string
	Opener           string
}

// DefaultTools returns the executables as found on PATH
func DefaultTools() Tools {
	return Tools{
		IDeviceInstaller: "ideviceinstaller",
		Opener:           adb.DefaultTools().Opener,
	}
}

// Bridge implements update.Bridge for one app on one iOS device
type Bridge struct {
	runner    adb.CommandRunner
	bundleID  string
	udid      string
	installed string
	tools     Tools
	log       zerolog.Logger
}

var _ update.Bridge = (*Bridge)(nil)

// Option configures a Bridge.
type Option func(*Bridge)

// WithRunner sets a custom command runner (for testing).
func WithRunner(runner adb.CommandRunner) Option {
	return func(b *Bridge) {
		b.runner = runner
	}
}

// WithUDID targets a specific device when several are attached.
func WithUDID(udid string) Option {
	return func(b *Bridge) {
		b.udid = udid
	}
}

// WithInstalledVersion pins the installed version instead of asking the device.
func WithInstalledVersion(version string) Option {
	return func(b *Bridge) {
		b.installed = version
	}
}

// WithTools overrides the executable names.
func WithTools(tools Tools) Option {
	return func(b *Bridge) {
		b.tools = tools
	}
}

// WithLogger sets the bridge logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bridge) {
		b.log = log
	}
}

// New creates a bridge for bundleID
func New(bundleID string, opts ...Option) *Bridge {
	b := &Bridge{
		runner:   &adb.DefaultCommandRunner{},
		bundleID: bundleID,
		tools:    DefaultTools(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// InstalledPackage returns the app's bundle id and short version string.
func (b *Bridge) InstalledPackage(ctx context.Context) (*update.PackageInfo, error) {
	if b.installed != "" {
		b.log.Debug().Str("version", b.installed).Msg("using pinned installed version")
		return &update.PackageInfo{PackageName: b.bundleID, VersionName: b.installed}, nil
	}

	args := []string{"-l"}
	if b.udid != "" {
		args = append([]string{"-u", b.udid}, args...)
	}
	out, err := b.runner.Run(ctx, b.tools.IDeviceInstaller, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s %s: %w: %s", b.tools.IDeviceInstaller, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}

	for _, app := range parseAppList(out) {
		if app.PackageName == b.bundleID {
			return &app, nil
		}
	}
	return nil, fmt.Errorf("%s is not installed on the device", b.bundleID)
}

// PackageInfo is unsupported, iOS apps are not sideloaded.
func (b *Bridge) PackageInfo(ctx context.Context, path string) (*update.PackageInfo, error) {
	return nil, fmt.Errorf("package inspection: %w", ErrUnsupported)
}

// CanRequestPackageInstalls is always false on iOS.
func (b *Bridge) CanRequestPackageInstalls(ctx context.Context) (bool, error) {
	return false, nil
}

// InstallApk is unsupported.
func (b *Bridge) InstallApk(ctx context.Context, path, authority string) error {
	return fmt.Errorf("apk install: %w", ErrUnsupported)
}

// InstallFromAppStore opens the store listing in the desktop browser
func (b *Bridge) InstallFromAppStore(ctx context.Context, url string) error {
	if _, err := b.runner.Run(ctx, b.tools.Opener, url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Apps returns no packages; iOS does not expose other apps.
func (b *Bridge) Apps(ctx context.Context) ([]update.PackageInfo, error) {
	return []update.PackageInfo{}, nil
}

// NonSystemApps returns no packages.
func (b *Bridge) NonSystemApps(ctx context.Context) ([]update.PackageInfo, error) {
	return []update.PackageInfo{}, nil
}
