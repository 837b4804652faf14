package update

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against *Error values.
var (
	ErrNetwork             = errors.New("network error")
	ErrParse               = errors.New("parse error")
	ErrPackageInfo         = errors.New("package info error")
	ErrCertificateMismatch = errors.New("certificate mismatch")
	ErrDownloadHTTP        = errors.New("download http error")
)

// Error is a terminal failure of the update flow.
// Message is what gets shown to the user; Err carries the cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is matches the sentinel kind so callers can use errors.Is(err, ErrNetwork).
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func networkError(msg string, cause error) error {
	return &Error{Kind: ErrNetwork, Message: msg, Err: cause}
}

func parseError(msg string, cause error) error {
	return &Error{Kind: ErrParse, Message: msg, Err: cause}
}

func packageInfoError(msg string, cause error) error {
	return &Error{Kind: ErrPackageInfo, Message: msg, Err: cause}
}

func mismatchError(installed, downloaded string) error {
	return &Error{
		Kind:    ErrCertificateMismatch,
		Message: fmt.Sprintf("certificate mismatch: installed %s, downloaded %s", installed, downloaded),
	}
}

func downloadHTTPError(status int) error {
	return &Error{
		Kind:    ErrDownloadHTTP,
		Message: fmt.Sprintf("Failed to Download APK. Server returned with %d statusCode", status),
	}
}
