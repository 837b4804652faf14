package update

import (
	"context"
	"time"
)

// Platform identifies which update path the controller takes
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// RemoteVersionInfo is the payload served by the Android version endpoint
type RemoteVersionInfo struct {
	VersionCode *int64 `json:"versionCode,omitempty" yaml:"versionCode,omitempty"` // Optional, compared before the name
	VersionName string `json:"versionName,omitempty" yaml:"versionName,omitempty"`
	ApkURL      string `json:"apkUrl,omitempty" yaml:"apkUrl,omitempty"`

	// TrackViewURL is only set for App Store lookups
	TrackViewURL string `json:"trackViewUrl,omitempty" yaml:"trackViewUrl,omitempty"`
}

// HasVersionCode reports whether the endpoint supplied a non-zero version code
func (r *RemoteVersionInfo) HasVersionCode() bool {
	return r.VersionCode != nil && *r.VersionCode != 0
}

// AppStoreLookup is the iTunes lookup API response
type AppStoreLookup struct {
	ResultCount int              `json:"resultCount"`
	Results     []AppStoreResult `json:"results"`
}

// AppStoreResult is a single entry of an App Store lookup
type AppStoreResult struct {
	Version      string `json:"version"`
	TrackViewURL string `json:"trackViewUrl"`
}

// Signature describes one signing certificate of a package
type Signature struct {
	Thumbprint string `json:"thumbprint" yaml:"thumbprint"` // SHA-256 of the certificate
	Subject    string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// PackageInfo is a read-only snapshot of an installed app or a package file on disk
type PackageInfo struct {
	PackageName      string      `json:"packageName" yaml:"packageName"`
	VersionCode      int64       `json:"versionCode" yaml:"versionCode"`
	VersionName      string      `json:"versionName" yaml:"versionName"`
	FirstInstallTime time.Time   `json:"firstInstallTime,omitempty" yaml:"firstInstallTime,omitempty"`
	LastUpdateTime   time.Time   `json:"lastUpdateTime,omitempty" yaml:"lastUpdateTime,omitempty"`
	PackageInstaller string      `json:"packageInstaller,omitempty" yaml:"packageInstaller,omitempty"`
	Signatures       []Signature `json:"signatures,omitempty" yaml:"signatures,omitempty"`
	Path             string      `json:"path,omitempty" yaml:"path,omitempty"`
	System           bool        `json:"system,omitempty" yaml:"system,omitempty"`
}

// Thumbprint returns the first signer's thumbprint, or "" when unsigned
func (p *PackageInfo) Thumbprint() string {
	if len(p.Signatures) == 0 {
		return ""
	}
	return p.Signatures[0].Thumbprint
}

// PackageInspector reads package metadata from the platform
type PackageInspector interface {
	InstalledPackage(ctx context.Context) (*PackageInfo, error)
	PackageInfo(ctx context.Context, path string) (*PackageInfo, error)
}

// Installer hands packages and store links to the platform
type Installer interface {
	CanRequestPackageInstalls(ctx context.Context) (bool, error)
	InstallApk(ctx context.Context, path, authority string) error
	InstallFromAppStore(ctx context.Context, url string) error
}

// AppLister enumerates packages installed on the device
type AppLister interface {
	Apps(ctx context.Context) ([]PackageInfo, error)
	NonSystemApps(ctx context.Context) ([]PackageInfo, error)
}

// Bridge is the full native capability set the controller depends on
type Bridge interface {
	PackageInspector
	Installer
	AppLister
}
