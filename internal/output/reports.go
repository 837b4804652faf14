package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/adamancini/appupdate/internal/update"
)

const timeLayout = "2006-01-02 15:04:05"

// PackageReport renders installed package metadata.
type PackageReport update.PackageInfo

func (r PackageReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Package:       %s\n", r.PackageName)
	fmt.Fprintf(&b, "Version:       %s (code %d)\n", r.VersionName, r.VersionCode)
	if !r.FirstInstallTime.IsZero() {
		fmt.Fprintf(&b, "Installed:     %s\n", r.FirstInstallTime.Format(timeLayout))
	}
	if !r.LastUpdateTime.IsZero() {
		fmt.Fprintf(&b, "Updated:       %s\n", r.LastUpdateTime.Format(timeLayout))
	}
	installer := r.PackageInstaller
	if installer == "" {
		installer = "(sideloaded)"
	}
	fmt.Fprintf(&b, "Installer:     %s\n", installer)
	if r.Path != "" {
		fmt.Fprintf(&b, "Path:          %s\n", r.Path)
	}
	for i, sig := range r.Signatures {
		fmt.Fprintf(&b, "Signer #%d:     %s\n", i+1, sig.Thumbprint)
		if sig.Subject != "" {
			fmt.Fprintf(&b, "               %s\n", sig.Subject)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// AppList renders a package listing.
type AppList struct {
	Apps []update.PackageInfo `json:"apps" yaml:"apps"`
}

func (l AppList) String() string {
	if len(l.Apps) == 0 {
		return "No packages found."
	}
	var b strings.Builder
	for _, app := range l.Apps {
		marker := " "
		if app.System {
			marker = "s"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, app.PackageName)
	}
	fmt.Fprintf(&b, "\n%d packages", len(l.Apps))
	return b.String()
}

// PermissionReport renders the install-from-unknown-sources state.
type PermissionReport struct {
	Package string `json:"package" yaml:"package"`
	Allowed bool   `json:"allowed" yaml:"allowed"`
}

func (r PermissionReport) String() string {
	if r.Allowed {
		return fmt.Sprintf("%s may install packages", r.Package)
	}
	return fmt.Sprintf("%s may not install packages (enable \"Install unknown apps\")", r.Package)
}

// CheckReport renders the outcome of an update check.
type CheckReport struct {
	Package  string                    `json:"package" yaml:"package"`
	Platform update.Platform           `json:"platform" yaml:"platform"`
	State    string                    `json:"state" yaml:"state"`
	Remote   *update.RemoteVersionInfo `json:"remote,omitempty" yaml:"remote,omitempty"`
	Error    string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration             `json:"-" yaml:"-"`
}

func (r CheckReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s", r.Package, r.Platform, r.State)
	if r.Remote != nil {
		switch {
		case r.Remote.VersionName != "":
			fmt.Fprintf(&b, "\n  remote version: %s", r.Remote.VersionName)
		case r.Remote.HasVersionCode():
			fmt.Fprintf(&b, "\n  remote version: code %d", *r.Remote.VersionCode)
		}
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "\n  error: %s", r.Error)
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "\n  took %s", r.Duration.Round(time.Millisecond))
	}
	return b.String()
}
