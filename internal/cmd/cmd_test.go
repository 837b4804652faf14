package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adamancini/appupdate/internal/config"
	"github.com/adamancini/appupdate/internal/update"
)

// stubBridge is an in-memory device for command tests.
type stubBridge struct {
	installed  *update.PackageInfo
	files      map[string]*update.PackageInfo
	permission bool
	apps       []update.PackageInfo

	installedPaths []string
	storeURLs      []string
}

func (b *stubBridge) InstalledPackage(ctx context.Context) (*update.PackageInfo, error) {
	if b.installed == nil {
		return nil, fmt.Errorf("package is not installed")
	}
	return b.installed, nil
}

func (b *stubBridge) PackageInfo(ctx context.Context, path string) (*update.PackageInfo, error) {
	if info, ok := b.files[path]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("not a package: %s", path)
}

func (b *stubBridge) CanRequestPackageInstalls(ctx context.Context) (bool, error) {
	return b.permission, nil
}

func (b *stubBridge) InstallApk(ctx context.Context, path, authority string) error {
	b.installedPaths = append(b.installedPaths, path)
	return nil
}

func (b *stubBridge) InstallFromAppStore(ctx context.Context, url string) error {
	b.storeURLs = append(b.storeURLs, url)
	return nil
}

func (b *stubBridge) Apps(ctx context.Context) ([]update.PackageInfo, error) {
	return b.apps, nil
}

func (b *stubBridge) NonSystemApps(ctx context.Context) ([]update.PackageInfo, error) {
	var out []update.PackageInfo
	for _, a := range b.apps {
		if !a.System {
			out = append(out, a)
		}
	}
	return out, nil
}

func pkg(code int64, name, thumb string) *update.PackageInfo {
	return &update.PackageInfo{
		PackageName: "com.example.app",
		VersionCode: code,
		VersionName: name,
		Signatures:  []update.Signature{{Thumbprint: thumb}},
	}
}

// useBridge swaps the device bridge and terminal detection for one test.
func useBridge(t *testing.T, b *stubBridge, terminal bool) {
	t.Helper()
	origBridge, origTerminal, origStore := newBridge, isTerminal, appStoreURL
	newBridge = func(u *config.Updatefile, log zerolog.Logger) update.Bridge { return b }
	isTerminal = func() bool { return terminal }
	t.Cleanup(func() {
		newBridge, isTerminal, appStoreURL = origBridge, origTerminal, origStore
	})
}

// useTerminal keeps the default bridge wiring and only fixes terminal
// detection and the store lookup endpoint.
func useTerminal(t *testing.T, terminal bool, lookupURL string) {
	t.Helper()
	origTerminal, origStore := isTerminal, appStoreURL
	isTerminal = func() bool { return terminal }
	appStoreURL = lookupURL
	t.Cleanup(func() {
		isTerminal, appStoreURL = origTerminal, origStore
	})
}

// hostTool writes an executable shell script standing in for a device tool.
func hostTool(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable on windows")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeUpdatefile(t *testing.T, content string) (path, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	cacheDir = filepath.Join(dir, "cache")
	path = filepath.Join(dir, "Updatefile.yaml")
	content += "cache_dir: " + cacheDir + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path, cacheDir
}

func runCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd("1.0.0", "abc123", "2026-01-01")
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

// releaseServer serves a version endpoint pointing at a package download.
func releaseServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, version, srv.URL+"/app.apk")
	})
	mux.HandleFunc("/app.apk", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4")
		_, _ = w.Write([]byte("APK!"))
	})
	mux.HandleFunc("/lookup", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"version":"2.0.0","trackViewUrl":"https://apps.apple.com/app/id42"}]}`))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func androidUpdatefile(t *testing.T, srv *httptest.Server) (string, string) {
	return writeUpdatefile(t, "package: com.example.app\napk_version_url: "+srv.URL+"/version.json\n")
}

func TestCheckInstallsUpdate(t *testing.T) {
	srv := releaseServer(t, `{"versionCode":6,"versionName":"1.3.0","apkUrl":"%s"}`)
	path, cacheDir := androidUpdatefile(t, srv)
	apk := filepath.Join(cacheDir, update.CachedPackageName)

	b := &stubBridge{
		installed:  pkg(5, "1.2.0", "AA:BB"),
		files:      map[string]*update.PackageInfo{apk: pkg(6, "1.3.0", "aabb")},
		permission: true,
	}
	useBridge(t, b, true)

	stdout, stderr, err := runCmd(t, "y\n", "check", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "com.example.app (android): done") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "Install update?") || !strings.Contains(stderr, "Download complete.") {
		t.Errorf("stderr = %q", stderr)
	}
	if len(b.installedPaths) != 1 || b.installedPaths[0] != apk {
		t.Errorf("installedPaths = %v, want [%s]", b.installedPaths, apk)
	}
	data, err := os.ReadFile(apk)
	if err != nil || string(data) != "APK!" {
		t.Errorf("cached package = %q, %v", data, err)
	}
}

func TestCheckDeclinesWithoutTerminal(t *testing.T) {
	srv := releaseServer(t, `{"versionCode":6,"apkUrl":"%s"}`)
	path, _ := androidUpdatefile(t, srv)

	b := &stubBridge{installed: pkg(5, "1.2.0", "aa"), permission: true}
	useBridge(t, b, false)

	stdout, _, err := runCmd(t, "", "check", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(stdout, ": declined") {
		t.Errorf("stdout = %q", stdout)
	}
	if len(b.installedPaths) != 0 {
		t.Errorf("nothing should be installed, got %v", b.installedPaths)
	}
}

func TestCheckYesSkipsPrompts(t *testing.T) {
	srv := releaseServer(t, `{"versionCode":6,"apkUrl":"%s"}`)
	path, cacheDir := androidUpdatefile(t, srv)
	apk := filepath.Join(cacheDir, update.CachedPackageName)

	b := &stubBridge{
		installed: pkg(5, "1.2.0", "aa"),
		files:     map[string]*update.PackageInfo{apk: pkg(6, "", "aa")},
	}
	useBridge(t, b, false)

	stdout, stderr, err := runCmd(t, "", "check", "--yes", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(stdout, ": done") {
		t.Errorf("stdout = %q", stdout)
	}
	if strings.Contains(stderr, "[y/n/a/q]") {
		t.Errorf("--yes should not prompt: %q", stderr)
	}
}

func TestCheckUpToDateJSON(t *testing.T) {
	srv := releaseServer(t, `{"versionCode":6,"apkUrl":"%s"}`)
	path, _ := androidUpdatefile(t, srv)
	useBridge(t, &stubBridge{installed: pkg(6, "1.3.0", "aa")}, true)

	stdout, _, err := runCmd(t, "", "check", "-o", "json", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}

	var report struct {
		Package  string `json:"package"`
		Platform string `json:"platform"`
		State    string `json:"state"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if report.State != "up-to-date" || report.Platform != "android" || report.Package != "com.example.app" {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	path, _ := androidUpdatefile(t, srv)
	useBridge(t, &stubBridge{installed: pkg(5, "1.2.0", "aa")}, true)

	stdout, _, err := runCmd(t, "", "check", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "update check failed") {
		t.Fatalf("check error = %v, want update check failed", err)
	}
	if !strings.Contains(stdout, ": error") || !strings.Contains(stdout, "Internal Server Error") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheckIOSOpensStore(t *testing.T) {
	srv := releaseServer(t, "")
	path, _ := writeUpdatefile(t, "platform: ios\npackage: com.example.app\nios_app_id: \"42\"\n")

	b := &stubBridge{installed: pkg(1, "1.0.0", "")}
	useBridge(t, b, true)
	appStoreURL = srv.URL + "/lookup"

	stdout, _, err := runCmd(t, "", "check", "--yes", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(stdout, "com.example.app (ios): done") || !strings.Contains(stdout, "remote version: 2.0.0") {
		t.Errorf("stdout = %q", stdout)
	}
	if len(b.storeURLs) != 1 || b.storeURLs[0] != "https://apps.apple.com/app/id42" {
		t.Errorf("storeURLs = %v", b.storeURLs)
	}
}

func TestCheckIOSPinnedVersionDefaultBridge(t *testing.T) {
	srv := releaseServer(t, "")
	opened := filepath.Join(t.TempDir(), "opened")
	opener := hostTool(t, "opener", `echo "$1" > `+opened+"\n")
	path, _ := writeUpdatefile(t, "platform: ios\npackage: com.example.app\nios_app_id: \"42\"\n"+
		"installed_version: 1.0.0\ntools:\n  opener: "+opener+"\n")
	useTerminal(t, true, srv.URL+"/lookup")

	stdout, stderr, err := runCmd(t, "", "check", "--yes", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "com.example.app (ios): done") {
		t.Errorf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(opened)
	if err != nil || strings.TrimSpace(string(data)) != "https://apps.apple.com/app/id42" {
		t.Errorf("opened = %q, %v", data, err)
	}
}

func TestCheckIOSDeviceVersionDefaultBridge(t *testing.T) {
	srv := releaseServer(t, "")
	installer := hostTool(t, "ideviceinstaller", `test "$1 $2 $3" = "-u 00008030-001A -l" || exit 1
echo 'CFBundleIdentifier, CFBundleShortVersionString, CFBundleDisplayName'
echo 'com.example.app, "2.0.0", "Example"'
`)
	path, _ := writeUpdatefile(t, "platform: ios\npackage: com.example.app\nios_app_id: \"42\"\n"+
		"device: 00008030-001A\ntools:\n  ideviceinstaller: "+installer+"\n")
	useTerminal(t, true, srv.URL+"/lookup")

	stdout, stderr, err := runCmd(t, "", "check", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "com.example.app (ios): up-to-date") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestInfoYAML(t *testing.T) {
	path, _ := writeUpdatefile(t, "package: com.example.app\napk_version_url: https://example.com/v.json\n")
	useBridge(t, &stubBridge{installed: pkg(5, "1.2.0", "3a1fbc")}, true)

	stdout, _, err := runCmd(t, "", "info", "-o", "yaml", "--config", path)
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	for _, want := range []string{"packageName: com.example.app", "versionCode: 5", "thumbprint: 3a1fbc"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout %q should contain %q", stdout, want)
		}
	}
}

func TestAppsNonSystem(t *testing.T) {
	path, _ := writeUpdatefile(t, "package: com.example.app\napk_version_url: https://example.com/v.json\n")
	useBridge(t, &stubBridge{apps: []update.PackageInfo{
		{PackageName: "com.android.settings", System: true},
		{PackageName: "com.example.app"},
	}}, true)

	stdout, _, err := runCmd(t, "", "apps", "--non-system", "--config", path)
	if err != nil {
		t.Fatalf("apps error = %v", err)
	}
	if strings.Contains(stdout, "com.android.settings") || !strings.Contains(stdout, "com.example.app") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestPermission(t *testing.T) {
	path, _ := writeUpdatefile(t, "package: com.example.app\napk_version_url: https://example.com/v.json\n")
	useBridge(t, &stubBridge{permission: false}, true)

	stdout, _, err := runCmd(t, "", "permission", "--config", path)
	if err != nil {
		t.Fatalf("permission error = %v", err)
	}
	if !strings.Contains(stdout, "may not install packages") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCmd(t, "", "version", "-o", "json")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	var info buildInfo
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info.Version != "1.0.0" || info.Commit != "abc123" {
		t.Errorf("info = %+v", info)
	}
}

func TestMissingUpdatefile(t *testing.T) {
	_, _, err := runCmd(t, "", "info", "--config", filepath.Join(t.TempDir(), "missing"))
	if err == nil || !strings.Contains(err.Error(), "Updatefile not found") {
		t.Errorf("error = %v", err)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := runCmd(t, "", "version", "-o", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("error = %v", err)
	}
}
