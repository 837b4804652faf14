package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format represents the file format of an Updatefile.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

// detectFormat determines the file format based on extension or content.
func detectFormat(path string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}

	return sniffFormat(content)
}

// sniffFormat guesses the format of an extensionless file.
func sniffFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))

	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}

	// First significant line decides between TOML and YAML
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") || strings.Contains(line, " = ") {
			return FormatTOML
		}
		if strings.Contains(line, ":") {
			return FormatYAML
		}
		break
	}

	return FormatUnknown
}

// rawUpdatefile is an intermediate representation for parsing.
// It handles the flexible header format (map or list of "Name: value").
type rawUpdatefile struct {
	Platform              string      `yaml:"platform" toml:"platform" json:"platform"`
	Package               string      `yaml:"package" toml:"package" json:"package"`
	Device                string      `yaml:"device" toml:"device" json:"device"`
	ApkVersionURL         string      `yaml:"apk_version_url" toml:"apk_version_url" json:"apk_version_url"`
	ApkVersionMethod      string      `yaml:"apk_version_method" toml:"apk_version_method" json:"apk_version_method"`
	ApkVersionHeaders     interface{} `yaml:"apk_version_headers" toml:"apk_version_headers" json:"apk_version_headers"`
	IOSAppID              string      `yaml:"ios_app_id" toml:"ios_app_id" json:"ios_app_id"`
	InstalledVersion      string      `yaml:"installed_version" toml:"installed_version" json:"installed_version"`
	FileProviderAuthority string      `yaml:"file_provider_authority" toml:"file_provider_authority" json:"file_provider_authority"`
	CacheDir              string      `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`
	Timeout               string      `yaml:"timeout" toml:"timeout" json:"timeout"`
	LogLevel              string      `yaml:"log_level" toml:"log_level" json:"log_level"`
	Tools                 ToolsConfig `yaml:"tools" toml:"tools" json:"tools"`
}

// parseHeaders converts the flexible header format to a map.
// Headers can be specified as:
//   - A mapping: {Authorization: "Bearer x"}
//   - A list of strings: ["Authorization: Bearer x"]
func parseHeaders(raw interface{}) (map[string]string, error) {
	headers := make(map[string]string)

	switch v := raw.(type) {
	case nil:
		return headers, nil

	case map[string]interface{}:
		for name, value := range v {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("apk_version_headers.%s: value must be a string", name)
			}
			headers[name] = s
		}

	case []interface{}:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("apk_version_headers[%d]: invalid format (expected \"Name: value\")", i)
			}
			name, value, found := strings.Cut(s, ":")
			if !found || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("apk_version_headers[%d]: invalid format (expected \"Name: value\")", i)
			}
			headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}

	default:
		return nil, fmt.Errorf("apk_version_headers: invalid format (expected mapping or list)")
	}

	return headers, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns in content.
func expandEnvVars(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		parts := envVarPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := os.Getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// parse parses the content according to the specified format.
func parse(content []byte, format Format) (*Updatefile, error) {
	content = expandEnvVars(content)

	var raw rawUpdatefile

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("JSON parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown file format")
	}

	headers, err := parseHeaders(raw.ApkVersionHeaders)
	if err != nil {
		return nil, err
	}

	return &Updatefile{
		Platform:              strings.ToLower(raw.Platform),
		Package:               raw.Package,
		Device:                raw.Device,
		ApkVersionURL:         raw.ApkVersionURL,
		ApkVersionMethod:      strings.ToUpper(raw.ApkVersionMethod),
		ApkVersionHeaders:     headers,
		IOSAppID:              raw.IOSAppID,
		InstalledVersion:      raw.InstalledVersion,
		FileProviderAuthority: raw.FileProviderAuthority,
		CacheDir:              raw.CacheDir,
		Timeout:               raw.Timeout,
		LogLevel:              strings.ToLower(raw.LogLevel),
		Tools:                 raw.Tools,
	}, nil
}
