package update

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// PermissionPrompt asks the user to allow installs from unknown sources.
// It returns true only on explicit acknowledgment.
type PermissionPrompt func(ctx context.Context) bool

// InstallInvoker hands a verified package or a store link to the platform
type InstallInvoker struct {
	installer Installer
	prompt    PermissionPrompt
	authority string
	log       zerolog.Logger
}

// NewInstallInvoker creates an invoker; a nil prompt means declining
func NewInstallInvoker(installer Installer, prompt PermissionPrompt, authority string, log zerolog.Logger) *InstallInvoker {
	return &InstallInvoker{
		installer: installer,
		prompt:    prompt,
		authority: authority,
		log:       log,
	}
}

// InstallApk installs the package at path, asking for the install permission
// first when the OS has not granted it. Declining returns installed=false
// with no error.
func (i *InstallInvoker) InstallApk(ctx context.Context, path string) (installed bool, err error) {
	granted, err := i.installer.CanRequestPackageInstalls(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read install permission: %w", err)
	}

	if !granted {
		if i.prompt == nil || !i.prompt(ctx) {
			i.log.Info().Msg("install unknown apps permission not acknowledged")
			return false, nil
		}
	}

	if err := i.installer.InstallApk(ctx, path, i.authority); err != nil {
		return false, fmt.Errorf("failed to install %s: %w", path, err)
	}
	return true, nil
}

// OpenStore redirects to the App Store listing
func (i *InstallInvoker) OpenStore(ctx context.Context, url string) error {
	if err := i.installer.InstallFromAppStore(ctx, url); err != nil {
		return fmt.Errorf("failed to open store listing: %w", err)
	}
	return nil
}
