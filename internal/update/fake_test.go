package update

import (
	"context"
	"errors"
)

// fakeBridge is an in-memory Bridge for tests
type fakeBridge struct {
	installed    *PackageInfo
	installedErr error

	// files maps a path to the package reported for it
	files   map[string]*PackageInfo
	infoErr error

	permission    bool
	permissionErr error
	installErr    error
	storeErr      error

	apps []PackageInfo

	installedCalls int
	infoCalls      []string
	installedPaths []string
	authorities    []string
	storeURLs      []string
}

func (f *fakeBridge) InstalledPackage(ctx context.Context) (*PackageInfo, error) {
	f.installedCalls++
	if f.installedErr != nil {
		return nil, f.installedErr
	}
	return f.installed, nil
}

func (f *fakeBridge) PackageInfo(ctx context.Context, path string) (*PackageInfo, error) {
	f.infoCalls = append(f.infoCalls, path)
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info, ok := f.files[path]
	if !ok {
		return nil, errors.New("not a package: " + path)
	}
	return info, nil
}

func (f *fakeBridge) CanRequestPackageInstalls(ctx context.Context) (bool, error) {
	return f.permission, f.permissionErr
}

func (f *fakeBridge) InstallApk(ctx context.Context, path, authority string) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.installedPaths = append(f.installedPaths, path)
	f.authorities = append(f.authorities, authority)
	return nil
}

func (f *fakeBridge) InstallFromAppStore(ctx context.Context, url string) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.storeURLs = append(f.storeURLs, url)
	return nil
}

func (f *fakeBridge) Apps(ctx context.Context) ([]PackageInfo, error) {
	return f.apps, nil
}

func (f *fakeBridge) NonSystemApps(ctx context.Context) ([]PackageInfo, error) {
	var out []PackageInfo
	for _, a := range f.apps {
		if !a.System {
			out = append(out, a)
		}
	}
	return out, nil
}

func code(n int64) *int64 {
	return &n
}

func signed(code int64, name, thumbprint string) *PackageInfo {
	return &PackageInfo{
		PackageName: "com.example.app",
		VersionCode: code,
		VersionName: name,
		Signatures:  []Signature{{Thumbprint: thumbprint}},
	}
}
