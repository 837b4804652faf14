package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/adamancini/appupdate/internal/update"
)

var (
	// packageNamePattern matches Android application IDs such as com.example.app
	packageNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)
	// appIDPattern matches numeric App Store IDs
	appIDPattern = regexp.MustCompile(`^\d+$`)
)

var validLogLevels = map[string]bool{
	"":      true,
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidationError represents an Updatefile validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the Updatefile for required fields and valid values.
func Validate(u *Updatefile) error {
	var errors []string

	if err := validatePackage(u.Package); err != nil {
		errors = append(errors, err.Error())
	}

	switch u.GetPlatform() {
	case update.PlatformAndroid:
		if err := validateVersionURL(u.ApkVersionURL); err != nil {
			errors = append(errors, err.Error())
		}
		if err := validateMethod(u.ApkVersionMethod); err != nil {
			errors = append(errors, err.Error())
		}
	case update.PlatformIOS:
		if !appIDPattern.MatchString(u.IOSAppID) {
			errors = append(errors, ValidationError{
				Field:   "ios_app_id",
				Message: "numeric App Store id is required for ios",
			}.Error())
		}
		if u.InstalledVersion != "" {
			if _, err := update.ParseVersion(u.InstalledVersion); err != nil {
				errors = append(errors, ValidationError{
					Field:   "installed_version",
					Message: fmt.Sprintf("invalid version '%s' (must be major.minor.patch)", u.InstalledVersion),
				}.Error())
			}
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "platform",
			Message: fmt.Sprintf("unsupported platform '%s' (must be android or ios)", u.Platform),
		}.Error())
	}

	if u.Timeout != "" {
		if d, err := time.ParseDuration(u.Timeout); err != nil || d <= 0 {
			errors = append(errors, ValidationError{
				Field:   "timeout",
				Message: fmt.Sprintf("invalid duration '%s'", u.Timeout),
			}.Error())
		}
	}

	if !validLogLevels[u.LogLevel] {
		errors = append(errors, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unknown level '%s'", u.LogLevel),
		}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validatePackage(name string) error {
	if name == "" {
		return ValidationError{Field: "package", Message: "package is required"}
	}
	if !packageNamePattern.MatchString(name) {
		return ValidationError{
			Field:   "package",
			Message: fmt.Sprintf("invalid package name '%s'", name),
		}
	}
	return nil
}

func validateVersionURL(raw string) error {
	if raw == "" {
		return ValidationError{Field: "apk_version_url", Message: "apk_version_url is required for android"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidationError{
			Field:   "apk_version_url",
			Message: fmt.Sprintf("invalid URL '%s' (must be http or https)", raw),
		}
	}
	return nil
}

func validateMethod(method string) error {
	switch method {
	case "", "GET", "POST":
		return nil
	}
	return ValidationError{
		Field:   "apk_version_method",
		Message: fmt.Sprintf("unsupported method '%s' (must be GET or POST)", method),
	}
}
