package update

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultAppStoreLookupURL is the iTunes lookup endpoint
const DefaultAppStoreLookupURL = "https://itunes.apple.com/lookup"

// State is where a CheckUpdate run ended
type State int

const (
	StateIdle             State = iota
	StateSkipped                // Required option missing or App Store id unknown
	StateUpToDate               // Installed version is current
	StateDeclined               // User declined or no confirmation callback
	StatePermissionDenied       // User did not acknowledge the install permission prompt
	StateDone                   // Install or store redirect handed to the platform
	StateError                  // Failure reported through OnError
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateUpToDate:
		return "up-to-date"
	case StateDeclined:
		return "declined"
	case StatePermissionDenied:
		return "permission-denied"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Options configures an update check. Every callback is optional.
type Options struct {
	Platform              Platform
	ApkVersionURL         string
	ApkVersionOptions     RequestOptions
	IOSAppID              string
	FileProviderAuthority string

	// NeedUpdateApp asks whether to proceed with an available update
	NeedUpdateApp       func(ctx context.Context, remote *RemoteVersionInfo) bool
	NotNeedUpdateApp    func()
	DownloadApkProgress ProgressFunc
	DownloadApkEnd      func()
	OnError             func(err error)

	// RequestInstallPermission explains the "install unknown apps" setting
	RequestInstallPermission PermissionPrompt
}

// Controller runs the check, download, verify and install workflow
type Controller struct {
	bridge      Bridge
	opts        Options
	fs          afero.Fs
	client      *http.Client
	cacheDir    string
	appStoreURL string
	log         zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithHTTPClient sets the client used for lookups and downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.client = client
	}
}

// WithFs sets the filesystem holding the package cache.
func WithFs(fs afero.Fs) Option {
	return func(c *Controller) {
		c.fs = fs
	}
}

// WithCacheDir sets the directory the package is downloaded into.
func WithCacheDir(dir string) Option {
	return func(c *Controller) {
		c.cacheDir = dir
	}
}

// WithAppStoreURL overrides the App Store lookup endpoint.
func WithAppStoreURL(u string) Option {
	return func(c *Controller) {
		c.appStoreURL = u
	}
}

// New creates a controller. opts is copied and never mutated.
func New(bridge Bridge, opts Options, settings ...Option) *Controller {
	c := &Controller{
		bridge:      bridge,
		opts:        opts,
		fs:          afero.NewOsFs(),
		appStoreURL: DefaultAppStoreLookupURL,
		log:         zerolog.Nop(),
	}
	for _, s := range settings {
		s(c)
	}
	if c.cacheDir == "" {
		c.cacheDir = DefaultCacheDir()
	}
	if c.opts.Platform == "" {
		c.opts.Platform = PlatformAndroid
	}
	return c
}

// DefaultCacheDir returns the per-user cache directory for downloads
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "appupdate")
	}
	return filepath.Join(dir, "appupdate")
}

// CachePath returns where the Android package is downloaded
func (c *Controller) CachePath() string {
	return filepath.Join(c.cacheDir, CachedPackageName)
}

// CheckUpdate runs the whole workflow for the configured platform.
// Failures never escape: they are logged, passed to OnError, and reported
// as StateError.
func (c *Controller) CheckUpdate(ctx context.Context) State {
	if c.opts.Platform == PlatformIOS {
		return c.checkAppStore(ctx)
	}
	return c.checkApk(ctx)
}

func (c *Controller) checkApk(ctx context.Context) State {
	if c.opts.ApkVersionURL == "" {
		c.log.Info().Msg("apkVersionUrl doesn't exist, skipping update check")
		return StateSkipped
	}

	local, err := c.bridge.InstalledPackage(ctx)
	if err != nil {
		return c.fail(packageInfoError("Failed to get Installed APK Info", err))
	}

	var remote RemoteVersionInfo
	fetcher := NewFetcher(c.client)
	if err := fetcher.FetchJSON(ctx, c.opts.ApkVersionURL, c.opts.ApkVersionOptions, &remote); err != nil {
		return c.fail(err)
	}

	decision, err := Decide(local, &remote)
	if err != nil {
		return c.fail(err)
	}

	if !decision.Outdated {
		return c.upToDate()
	}

	basis := "version name"
	if decision.ByCode {
		basis = "version code"
	}
	c.log.Info().
		Str("basis", basis).
		Str("local", decision.Local).
		Str("remote", decision.Remote).
		Msg("apk outdated")

	if !c.confirm(ctx, &remote) {
		return StateDeclined
	}

	return c.downloadAndInstall(ctx, local, &remote)
}

// downloadAndInstall reuses local, the snapshot read for the decision, so the
// installed package is inspected once per run.
func (c *Controller) downloadAndInstall(ctx context.Context, local *PackageInfo, remote *RemoteVersionInfo) State {
	downloader := NewPackageDownloader(c.fs, c.client, c.bridge, c.cacheDir, c.log)

	cached, err := downloader.ReuseCached(ctx, remote)
	if err != nil {
		return c.fail(err)
	}

	if !cached {
		if remote.ApkURL == "" {
			return c.fail(parseError("remote version info has no apkUrl", nil))
		}
		if err := downloader.Download(ctx, remote.ApkURL, c.opts.DownloadApkProgress); err != nil {
			return c.fail(err)
		}
		c.log.Info().Str("path", downloader.Path()).Msg("download apk end")
		if c.opts.DownloadApkEnd != nil {
			c.opts.DownloadApkEnd()
		}
	}

	guard := NewCertificateGuard(c.bridge, c.log)
	if err := guard.VerifyAgainst(ctx, local, downloader.Path()); err != nil {
		// Rejected packages must not be reused by later runs
		if errors.Is(err, ErrCertificateMismatch) {
			if rmErr := downloader.Discard(); rmErr != nil {
				c.log.Warn().Err(rmErr).Msg("failed to discard rejected package")
			}
		}
		return c.fail(err)
	}

	invoker := NewInstallInvoker(c.bridge, c.opts.RequestInstallPermission, c.opts.FileProviderAuthority, c.log)
	installed, err := invoker.InstallApk(ctx, downloader.Path())
	if err != nil {
		return c.fail(err)
	}
	if !installed {
		return StatePermissionDenied
	}
	return StateDone
}

func (c *Controller) checkAppStore(ctx context.Context) State {
	if c.opts.IOSAppID == "" {
		c.log.Info().Msg("iosAppId doesn't exist, skipping update check")
		return StateSkipped
	}

	lookupURL := c.appStoreURL + "?id=" + url.QueryEscape(c.opts.IOSAppID)
	c.log.Debug().Str("url", lookupURL).Msg("fetching App Store version")

	var lookup AppStoreLookup
	fetcher := NewFetcher(c.client)
	if err := fetcher.FetchJSON(ctx, lookupURL, RequestOptions{}, &lookup); err != nil {
		return c.fail(err)
	}

	if lookup.ResultCount < 1 || len(lookup.Results) == 0 {
		c.log.Warn().Str("iosAppId", c.opts.IOSAppID).Msg("iosAppId is wrong")
		return StateSkipped
	}
	result := lookup.Results[0]

	local, err := c.bridge.InstalledPackage(ctx)
	if err != nil {
		return c.fail(packageInfoError("Failed to get Installed App Info", err))
	}

	outdated, err := IsLess(local.VersionName, result.Version)
	if err != nil {
		return c.fail(err)
	}
	if !outdated {
		return c.upToDate()
	}

	c.log.Info().
		Str("basis", "version name").
		Str("local", local.VersionName).
		Str("remote", result.Version).
		Msg("app outdated")

	remote := &RemoteVersionInfo{VersionName: result.Version, TrackViewURL: result.TrackViewURL}
	if !c.confirm(ctx, remote) {
		return StateDeclined
	}

	invoker := NewInstallInvoker(c.bridge, nil, "", c.log)
	if err := invoker.OpenStore(ctx, result.TrackViewURL); err != nil {
		return c.fail(err)
	}
	return StateDone
}

func (c *Controller) confirm(ctx context.Context, remote *RemoteVersionInfo) bool {
	if c.opts.NeedUpdateApp == nil {
		c.log.Debug().Msg("no needUpdateApp callback, not updating")
		return false
	}
	return c.opts.NeedUpdateApp(ctx, remote)
}

func (c *Controller) upToDate() State {
	c.log.Debug().Msg("already up to date")
	if c.opts.NotNeedUpdateApp != nil {
		c.opts.NotNeedUpdateApp()
	}
	return StateUpToDate
}

func (c *Controller) fail(err error) State {
	c.log.Error().Err(err).Msg("update check failed")
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
	return StateError
}
