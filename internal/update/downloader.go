package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// CachedPackageName is the fixed file name of the downloaded package.
// Only one package is ever cached per app.
const CachedPackageName = "SL.apk"

// ProgressFunc receives download progress as a percentage rounded to two decimals
type ProgressFunc func(percent float64)

// PackageDownloader fetches the candidate package into the cache directory
type PackageDownloader struct {
	fs        afero.Fs
	client    *http.Client
	inspector PackageInspector
	cacheDir  string
	log       zerolog.Logger
}

// NewPackageDownloader creates a downloader writing to cacheDir on fs
func NewPackageDownloader(fs afero.Fs, client *http.Client, inspector PackageInspector, cacheDir string, log zerolog.Logger) *PackageDownloader {
	if client == nil {
		// Package transfers can be large; rely on ctx for cancellation
		client = &http.Client{}
	}
	return &PackageDownloader{
		fs:        fs,
		client:    client,
		inspector: inspector,
		cacheDir:  cacheDir,
		log:       log,
	}
}

// Path returns where the package is cached
func (d *PackageDownloader) Path() string {
	return filepath.Join(d.cacheDir, CachedPackageName)
}

// ReuseCached reports whether the cached package already matches the remote
// version code. A stale or unreadable cached file is removed.
func (d *PackageDownloader) ReuseCached(ctx context.Context, remote *RemoteVersionInfo) (bool, error) {
	path := d.Path()

	exists, err := afero.Exists(d.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to stat cached package: %w", err)
	}
	if !exists {
		return false, nil
	}

	info, err := d.inspector.PackageInfo(ctx, path)
	switch {
	case err != nil:
		d.log.Warn().Err(err).Str("path", path).Msg("cached package unreadable, removing")
	case remote.HasVersionCode() && info.VersionCode == *remote.VersionCode:
		d.log.Info().Int64("versionCode", info.VersionCode).Msg("package already downloaded and up to date")
		return true, nil
	default:
		d.log.Info().Int64("versionCode", info.VersionCode).Msg("cached package is outdated, removing")
	}

	if err := d.fs.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove cached package: %w", err)
	}
	return false, nil
}

// Discard removes the cached package. A missing file is not an error.
func (d *PackageDownloader) Discard() error {
	if err := d.fs.Remove(d.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cached package: %w", err)
	}
	return nil
}

// Download streams url into the cache path, reporting progress per chunk.
// A 4xx or 5xx response fails without touching the cache.
func (d *PackageDownloader) Download(ctx context.Context, url string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return networkError(fmt.Sprintf("%s  invalid request", url), err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return networkError(fmt.Sprintf("%s  download failed", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
		return downloadHTTPError(resp.StatusCode)
	}

	if err := d.fs.MkdirAll(d.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	out, err := d.fs.Create(d.Path())
	if err != nil {
		return fmt.Errorf("failed to create package file: %w", err)
	}

	pw := &progressWriter{total: resp.ContentLength, report: progress}
	if _, err := io.Copy(out, io.TeeReader(resp.Body, pw)); err != nil {
		_ = out.Close()
		return networkError(fmt.Sprintf("%s  download interrupted", url), err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write package file: %w", err)
	}

	return nil
}

// progressWriter counts bytes passing through a TeeReader
type progressWriter struct {
	received int64
	total    int64
	last     float64
	report   ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.received += int64(len(b))
	if p.report == nil || p.total <= 0 {
		return len(b), nil
	}

	pct := Percent(p.received, p.total)
	if pct >= p.last {
		p.last = pct
		p.report(pct)
	}
	return len(b), nil
}

// Percent returns 100*received/total rounded to two decimals
func Percent(received, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(10000*float64(received)/float64(total)) / 100
}
