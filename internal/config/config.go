// Package config handles Updatefile parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adamancini/appupdate/internal/adb"
	"github.com/adamancini/appupdate/internal/ios"
	"github.com/adamancini/appupdate/internal/update"
)

// DefaultTimeout is used when the Updatefile sets none
const DefaultTimeout = 30 * time.Second

// ToolsConfig overrides the host executables used by the device bridges.
type ToolsConfig struct {
	ADB              string `yaml:"adb,omitempty" toml:"adb,omitempty" json:"adb,omitempty"`
	AAPT             string `yaml:"aapt,omitempty" toml:"aapt,omitempty" json:"aapt,omitempty"`
	APKSigner        string `yaml:"apksigner,omitempty" toml:"apksigner,omitempty" json:"apksigner,omitempty"`
	IDeviceInstaller string `yaml:"ideviceinstaller,omitempty" toml:"ideviceinstaller,omitempty" json:"ideviceinstaller,omitempty"`
	Opener           string `yaml:"opener,omitempty" toml:"opener,omitempty" json:"opener,omitempty"`
}

// Updatefile represents the parsed configuration file.
type Updatefile struct {
	Platform              string            `yaml:"platform" toml:"platform" json:"platform"`
	Package               string            `yaml:"package" toml:"package" json:"package"`
	Device                string            `yaml:"device,omitempty" toml:"device,omitempty" json:"device,omitempty"` // adb serial or iOS udid
	ApkVersionURL         string            `yaml:"apk_version_url,omitempty" toml:"apk_version_url,omitempty" json:"apk_version_url,omitempty"`
	ApkVersionMethod      string            `yaml:"apk_version_method,omitempty" toml:"apk_version_method,omitempty" json:"apk_version_method,omitempty"`
	ApkVersionHeaders     map[string]string `yaml:"apk_version_headers,omitempty" toml:"apk_version_headers,omitempty" json:"apk_version_headers,omitempty"`
	IOSAppID              string            `yaml:"ios_app_id,omitempty" toml:"ios_app_id,omitempty" json:"ios_app_id,omitempty"`
	InstalledVersion      string            `yaml:"installed_version,omitempty" toml:"installed_version,omitempty" json:"installed_version,omitempty"`
	FileProviderAuthority string            `yaml:"file_provider_authority,omitempty" toml:"file_provider_authority,omitempty" json:"file_provider_authority,omitempty"`
	CacheDir              string            `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
	Timeout               string            `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
	LogLevel              string            `yaml:"log_level,omitempty" toml:"log_level,omitempty" json:"log_level,omitempty"`
	Tools                 ToolsConfig       `yaml:"tools,omitempty" toml:"tools,omitempty" json:"tools,omitempty"`
}

// GetPlatform returns the target platform, android when unset.
func (u *Updatefile) GetPlatform() update.Platform {
	if u.Platform == "" {
		return update.PlatformAndroid
	}
	return update.Platform(u.Platform)
}

// GetTimeout returns the lookup timeout. Validate guarantees it parses.
func (u *Updatefile) GetTimeout() time.Duration {
	if u.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(u.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// GetCacheDir returns the download directory with ~ expanded.
func (u *Updatefile) GetCacheDir() string {
	if u.CacheDir == "" {
		return update.DefaultCacheDir()
	}
	return expandHome(u.CacheDir)
}

// RequestOptions returns the version endpoint request options.
func (u *Updatefile) RequestOptions() update.RequestOptions {
	return update.RequestOptions{
		Method:  u.ApkVersionMethod,
		Headers: u.ApkVersionHeaders,
	}
}

// GetTools merges configured executables over the defaults.
func (u *Updatefile) GetTools() adb.Tools {
	tools := adb.DefaultTools()
	if u.Tools.ADB != "" {
		tools.ADB = u.Tools.ADB
	}
	if u.Tools.AAPT != "" {
		tools.AAPT = u.Tools.AAPT
	}
	if u.Tools.APKSigner != "" {
		tools.APKSigner = u.Tools.APKSigner
	}
	if u.Tools.Opener != "" {
		tools.Opener = u.Tools.Opener
	}
	return tools
}

// GetIOSTools merges configured executables over the iOS defaults.
func (u *Updatefile) GetIOSTools() ios.Tools {
	tools := ios.DefaultTools()
	if u.Tools.IDeviceInstaller != "" {
		tools.IDeviceInstaller = u.Tools.IDeviceInstaller
	}
	if u.Tools.Opener != "" {
		tools.Opener = u.Tools.Opener
	}
	return tools
}

// FindUpdatefile searches for an Updatefile in the standard locations.
// Returns the path to the first Updatefile found, or an error if none exists.
func FindUpdatefile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified Updatefile not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Check UPDATEFILE environment variable
	if envPath := os.Getenv("UPDATEFILE"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	var searchPaths []string

	if home, err := os.UserHomeDir(); err == nil {
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig == "" {
			xdgConfig = filepath.Join(home, ".config")
		}
		searchPaths = append(searchPaths,
			filepath.Join(xdgConfig, "appupdate"),
			filepath.Join(home, ".appupdate"),
		)
	}

	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	fileNames := []string{
		"Updatefile",
		"Updatefile.yaml",
		"Updatefile.yml",
		"Updatefile.toml",
		"Updatefile.json",
	}

	for _, dir := range searchPaths {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("no Updatefile found in standard locations")
}

// Load reads, parses and validates an Updatefile from the given path.
func Load(path string) (*Updatefile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Updatefile: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	updatefile, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(updatefile); err != nil {
		return nil, err
	}

	return updatefile, nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}
