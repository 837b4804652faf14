package adb

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adamancini/appupdate/internal/update"
)

// dumpsysTimeLayout is how `dumpsys package` prints install times
const dumpsysTimeLayout = "2006-01-02 15:04:05"

var (
	dumpsysVersionCode = regexp.MustCompile(`versionCode=(\d+)`)
	dumpsysVersionName = regexp.MustCompile(`versionName=(\S+)`)
	dumpsysFirstTime   = regexp.MustCompile(`firstInstallTime=(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
	dumpsysLastTime    = regexp.MustCompile(`lastUpdateTime=(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
	dumpsysInstaller   = regexp.MustCompile(`installerPackageName=(\S+)`)

	badgingPackage = regexp.MustCompile(`^package: name='([^']*)' versionCode='(\d*)' versionName='([^']*)'`)

	signerDigest = regexp.MustCompile(`^Signer #(\d+) certificate SHA-256 digest: ([0-9a-fA-F:]+)\s*$`)
	signerDN     = regexp.MustCompile(`^Signer #(\d+) certificate DN: (.+)$`)
)

// parseDumpsys extracts installed package metadata from `dumpsys package <name>`.
// Only the first occurrence of each field is used; later ones belong to
// hidden system copies of the package. Install times carry no zone and are
// read in loc, the device's zone.
func parseDumpsys(output []byte, packageName string, loc *time.Location) (*update.PackageInfo, error) {
	text := string(output)

	m := dumpsysVersionCode.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("package %s is not installed", packageName)
	}
	code, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid versionCode %q: %w", m[1], err)
	}

	info := &update.PackageInfo{
		PackageName: packageName,
		VersionCode: code,
	}
	if m := dumpsysVersionName.FindStringSubmatch(text); m != nil {
		info.VersionName = m[1]
	}
	if m := dumpsysFirstTime.FindStringSubmatch(text); m != nil {
		info.FirstInstallTime, _ = time.ParseInLocation(dumpsysTimeLayout, m[1], loc)
	}
	if m := dumpsysLastTime.FindStringSubmatch(text); m != nil {
		info.LastUpdateTime, _ = time.ParseInLocation(dumpsysTimeLayout, m[1], loc)
	}
	if m := dumpsysInstaller.FindStringSubmatch(text); m != nil && m[1] != "null" {
		info.PackageInstaller = m[1]
	}

	return info, nil
}

// parseBadging parses the `package:` line of `aapt dump badging`.
// Format:
//
//	package: name='com.example.app' versionCode='6' versionName='1.3.0' ...
func parseBadging(output []byte) (*update.PackageInfo, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := badgingPackage.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		info := &update.PackageInfo{PackageName: m[1], VersionName: m[3]}
		if m[2] != "" {
			code, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid versionCode %q: %w", m[2], err)
			}
			info.VersionCode = code
		}
		return info, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no package line in aapt output")
}

// parseSigners parses `apksigner verify --print-certs`.
// Format:
//
//	Signer #1 certificate DN: CN=Example
//	Signer #1 certificate SHA-256 digest: 3a1f...
func parseSigners(output []byte) ([]update.Signature, error) {
	bySigner := make(map[int]*update.Signature)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := signerDigest.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			signer(bySigner, n).Thumbprint = m[2]
			continue
		}
		if m := signerDN.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			signer(bySigner, n).Subject = m[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(bySigner))
	for n, sig := range bySigner {
		if sig.Thumbprint != "" {
			indexes = append(indexes, n)
		}
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("no signer certificates found")
	}
	sort.Ints(indexes)

	sigs := make([]update.Signature, 0, len(indexes))
	for _, n := range indexes {
		sigs = append(sigs, *bySigner[n])
	}
	return sigs, nil
}

func signer(m map[int]*update.Signature, n int) *update.Signature {
	if s, ok := m[n]; ok {
		return s
	}
	s := &update.Signature{}
	m[n] = s
	return s
}

// parsePackagePath returns the base APK path from `pm path <name>`
func parsePackagePath(output []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var first string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		path, ok := strings.CutPrefix(line, "package:")
		if !ok {
			continue
		}
		if strings.HasSuffix(path, "/base.apk") {
			return path, nil
		}
		if first == "" {
			first = path
		}
	}
	if first == "" {
		return "", fmt.Errorf("no package path in pm output")
	}
	return first, nil
}

// parsePackageList parses `pm list packages -f`.
// Format:
//
//	package:/system/app/Settings/Settings.apk=com.android.settings
func parsePackageList(output []byte) []update.PackageInfo {
	var pkgs []update.PackageInfo

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "package:")
		if !ok {
			continue
		}
		// Paths may contain '=', the package name never does
		idx := strings.LastIndex(line, "=")
		if idx < 0 {
			pkgs = append(pkgs, update.PackageInfo{PackageName: line})
			continue
		}
		path := line[:idx]
		pkgs = append(pkgs, update.PackageInfo{
			PackageName: line[idx+1:],
			Path:        path,
			System:      isSystemPath(path),
		})
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PackageName < pkgs[j].PackageName })
	return pkgs
}

var systemPrefixes = []string{"/system/", "/system_ext/", "/product/", "/vendor/", "/apex/", "/odm/"}

func isSystemPath(path string) bool {
	for _, p := range systemPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// parseAppOps reports whether `appops get <pkg> REQUEST_INSTALL_PACKAGES` allows installs
func parseAppOps(output []byte) bool {
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "REQUEST_INSTALL_PACKAGES:") {
			continue
		}
		mode := strings.TrimSpace(strings.TrimPrefix(line, "REQUEST_INSTALL_PACKAGES:"))
		return strings.HasPrefix(mode, "allow")
	}
	return false
}
