package ios

import (
	"bytes"
	"encoding/csv"
	"regexp"
	"strings"

	"github.com/adamancini/appupdate/internal/update"
)

// legacyAppLine matches the pre-1.1 listing: "com.example.app - Example 1.2.0"
var legacyAppLine = regexp.MustCompile(`^(\S+) - .*?\s*(\S+)$`)

// parseAppList reads `ideviceinstaller -l` output. Current releases print a
// CSV header followed by `id, "version", "name"` rows; older ones print
// `id - name version`.
func parseAppList(output []byte) []update.PackageInfo {
	var apps []update.PackageInfo
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "CFBundleIdentifier") || strings.HasPrefix(line, "Total:") {
			continue
		}

		if strings.Contains(line, `, "`) {
			r := csv.NewReader(bytes.NewBufferString(line))
			r.TrimLeadingSpace = true
			r.LazyQuotes = true
			r.FieldsPerRecord = -1
			fields, err := r.Read()
			if err != nil || len(fields) < 2 {
				continue
			}
			apps = append(apps, update.PackageInfo{PackageName: fields[0], VersionName: fields[1]})
			continue
		}

		if m := legacyAppLine.FindStringSubmatch(line); m != nil {
			apps = append(apps, update.PackageInfo{PackageName: m[1], VersionName: m[2]})
		}
	}
	return apps
}
