package adb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	// Device zones must load on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/adamancini/appupdate/internal/update"
)

// Tools names the host executables the bridge shells out to
type Tools struct {
	ADB       string
	AAPT      string
	APKSigner string
	Opener    string // Opens URLs in the desktop browser
}

// DefaultTools returns the executables as found on PATH
func DefaultTools() Tools {
	opener := "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		opener = "open"
	case "windows":
		opener = "explorer"
	}
	return Tools{
		ADB:       "adb",
		AAPT:      "aapt",
		APKSigner: "apksigner",
		Opener:    opener,
	}
}

// Bridge implements update.Bridge for one package on one device
type Bridge struct {
	runner      CommandRunner
	packageName string
	serial      string
	tools       Tools
	tempDir     string
	log         zerolog.Logger
}

var _ update.Bridge = (*Bridge)(nil)

// Option configures a Bridge.
type Option func(*Bridge)

// WithRunner sets a custom command runner (for testing).
func WithRunner(runner CommandRunner) Option {
	return func(b *Bridge) {
		b.runner = runner
	}
}

// WithSerial targets a specific device when several are attached.
func WithSerial(serial string) Option {
	return func(b *Bridge) {
		b.serial = serial
	}
}

// WithTools overrides the executable names.
func WithTools(tools Tools) Option {
	return func(b *Bridge) {
		b.tools = tools
	}
}

// WithTempDir sets where installed packages are pulled for inspection.
func WithTempDir(dir string) Option {
	return func(b *Bridge) {
		b.tempDir = dir
	}
}

// WithLogger sets the bridge logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bridge) {
		b.log = log
	}
}

// New creates a bridge for packageName
func New(packageName string, opts ...Option) *Bridge {
	b := &Bridge{
		runner:      &DefaultCommandRunner{},
		packageName: packageName,
		tools:       DefaultTools(),
		tempDir:     os.TempDir(),
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// InstalledPackage reads the package's metadata from the device and the
// signing certificate from a pulled copy of its base APK.
func (b *Bridge) InstalledPackage(ctx context.Context) (*update.PackageInfo, error) {
	out, err := b.shell(ctx, "dumpsys", "package", b.packageName)
	if err != nil {
		return nil, err
	}
	info, err := parseDumpsys(out, b.packageName, b.deviceLocation(ctx))
	if err != nil {
		return nil, err
	}

	out, err = b.shell(ctx, "pm", "path", b.packageName)
	if err != nil {
		return nil, err
	}
	remotePath, err := parsePackagePath(out)
	if err != nil {
		return nil, err
	}
	info.Path = remotePath

	local := filepath.Join(b.tempDir, "installed-"+b.packageName+".apk")
	if _, err := b.adb(ctx, "pull", remotePath, local); err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(local) }()

	sigs, err := b.signers(ctx, local)
	if err != nil {
		return nil, err
	}
	info.Signatures = sigs

	return info, nil
}

// PackageInfo inspects a package file on the host
func (b *Bridge) PackageInfo(ctx context.Context, path string) (*update.PackageInfo, error) {
	out, err := b.runner.Run(ctx, b.tools.AAPT, "dump", "badging", path)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s dump badging: %w", b.tools.AAPT, err)
	}
	info, err := parseBadging(out)
	if err != nil {
		return nil, err
	}
	info.Path = path

	sigs, err := b.signers(ctx, path)
	if err != nil {
		return nil, err
	}
	info.Signatures = sigs

	return info, nil
}

// CanRequestPackageInstalls checks the REQUEST_INSTALL_PACKAGES app op
func (b *Bridge) CanRequestPackageInstalls(ctx context.Context) (bool, error) {
	out, err := b.shell(ctx, "appops", "get", b.packageName, "REQUEST_INSTALL_PACKAGES")
	if err != nil {
		return false, err
	}
	return parseAppOps(out), nil
}

// InstallApk replaces the installed package, keeping its data.
// The file provider authority only matters for on-device installs.
func (b *Bridge) InstallApk(ctx context.Context, path, authority string) error {
	if authority != "" {
		b.log.Debug().Str("authority", authority).Msg("file provider authority unused for adb installs")
	}
	out, err := b.adb(ctx, "install", "-r", path)
	if err != nil {
		return err
	}
	if !strings.Contains(string(out), "Success") {
		return fmt.Errorf("adb install failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// InstallFromAppStore opens the store listing in the desktop browser
func (b *Bridge) InstallFromAppStore(ctx context.Context, url string) error {
	if _, err := b.runner.Run(ctx, b.tools.Opener, url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Apps lists every package on the device
func (b *Bridge) Apps(ctx context.Context) ([]update.PackageInfo, error) {
	out, err := b.shell(ctx, "pm", "list", "packages", "-f")
	if err != nil {
		return nil, err
	}
	return parsePackageList(out), nil
}

// NonSystemApps lists third-party packages
func (b *Bridge) NonSystemApps(ctx context.Context) ([]update.PackageInfo, error) {
	out, err := b.shell(ctx, "pm", "list", "packages", "-f", "-3")
	if err != nil {
		return nil, err
	}
	pkgs := parsePackageList(out)
	for i := range pkgs {
		pkgs[i].System = false
	}
	return pkgs, nil
}

// deviceLocation returns the device's configured time zone, which dumpsys
// uses for install times. Falls back to the host zone when unknown.
func (b *Bridge) deviceLocation(ctx context.Context) *time.Location {
	out, err := b.shell(ctx, "getprop", "persist.sys.timezone")
	if err != nil {
		b.log.Debug().Err(err).Msg("device time zone unavailable, using host zone")
		return time.Local
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		b.log.Debug().Err(err).Str("zone", name).Msg("unknown device time zone, using host zone")
		return time.Local
	}
	return loc
}

func (b *Bridge) signers(ctx context.Context, path string) ([]update.Signature, error) {
	out, err := b.runner.Run(ctx, b.tools.APKSigner, "verify", "--print-certs", path)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s verify: %w", b.tools.APKSigner, err)
	}
	return parseSigners(out)
}

func (b *Bridge) shell(ctx context.Context, args ...string) ([]byte, error) {
	return b.adb(ctx, append([]string{"shell"}, args...)...)
}

func (b *Bridge) adb(ctx context.Context, args ...string) ([]byte, error) {
	if b.serial != "" {
		args = append([]string{"-s", b.serial}, args...)
	}
	out, err := b.runner.Run(ctx, b.tools.ADB, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run adb %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}
