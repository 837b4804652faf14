package update

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// CertificateGuard refuses packages signed by a different certificate than
// the installed app.
type CertificateGuard struct {
	inspector PackageInspector
	log       zerolog.Logger
}

// NewCertificateGuard creates a guard backed by inspector
func NewCertificateGuard(inspector PackageInspector, log zerolog.Logger) *CertificateGuard {
	return &CertificateGuard{inspector: inspector, log: log}
}

// Verify compares the first signer of the package at path with the installed app.
func (g *CertificateGuard) Verify(ctx context.Context, path string) error {
	downloaded, err := g.downloaded(ctx, path)
	if err != nil {
		return err
	}

	installed, err := g.inspector.InstalledPackage(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("installed package info error")
		return packageInfoError("Failed to get Installed APK Info", err)
	}

	return g.compare(installed, downloaded)
}

// VerifyAgainst is Verify with an installed snapshot already read in this run.
func (g *CertificateGuard) VerifyAgainst(ctx context.Context, installed *PackageInfo, path string) error {
	downloaded, err := g.downloaded(ctx, path)
	if err != nil {
		return err
	}
	return g.compare(installed, downloaded)
}

func (g *CertificateGuard) downloaded(ctx context.Context, path string) (*PackageInfo, error) {
	info, err := g.inspector.PackageInfo(ctx, path)
	if err != nil {
		g.log.Error().Err(err).Str("path", path).Msg("apk info error")
		return nil, packageInfoError("Failed to get Downloaded APK Info", err)
	}
	return info, nil
}

func (g *CertificateGuard) compare(installed, downloaded *PackageInfo) error {
	oldPrint, newPrint := installed.Thumbprint(), downloaded.Thumbprint()
	g.log.Info().Str("old", oldPrint).Str("new", newPrint).Msg("certificate SHA-256")

	if oldPrint == "" || newPrint == "" {
		return packageInfoError("Missing signing certificate", nil)
	}

	if !SameThumbprint(oldPrint, newPrint) {
		g.log.Warn().Msg("signature thumbprints differ, refusing to install")
		return mismatchError(oldPrint, newPrint)
	}

	return nil
}

// SameThumbprint compares two hex thumbprints ignoring case and ':' separators
func SameThumbprint(a, b string) bool {
	return normalizeThumbprint(a) == normalizeThumbprint(b)
}

func normalizeThumbprint(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ":", ""))
}
