package update

import (
	"context"
	"fmt"
)

// Installed returns metadata of the running app: version code and name,
// package name, install/update times, installer identity and signatures.
func Installed(ctx context.Context, insp PackageInspector) (*PackageInfo, error) {
	info, err := insp.InstalledPackage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read installed package: %w", err)
	}
	return info, nil
}

// CanRequestPackageInstalls reports whether installing from unknown sources is allowed
func CanRequestPackageInstalls(ctx context.Context, inst Installer) (bool, error) {
	return inst.CanRequestPackageInstalls(ctx)
}

// Apps lists every installed package. iOS exposes none.
func Apps(ctx context.Context, lister AppLister, platform Platform) ([]PackageInfo, error) {
	if platform == PlatformIOS {
		return []PackageInfo{}, nil
	}
	return lister.Apps(ctx)
}

// NonSystemApps lists user-installed packages. iOS exposes none.
func NonSystemApps(ctx context.Context, lister AppLister, platform Platform) ([]PackageInfo, error) {
	if platform == PlatformIOS {
		return []PackageInfo{}, nil
	}
	return lister.NonSystemApps(ctx)
}
