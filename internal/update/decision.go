package update

import "strconv"

// Decision explains why a remote release was judged outdated or not
type Decision struct {
	Outdated bool
	ByCode   bool // Decided on version code rather than version name
	Local    string
	Remote   string
}

// Decide compares the installed package against the remote release.
// A remote version code wins when present; otherwise version names are
// compared numerically and a malformed name is a parse error.
func Decide(local *PackageInfo, remote *RemoteVersionInfo) (Decision, error) {
	if remote.HasVersionCode() {
		return Decision{
			Outdated: *remote.VersionCode > local.VersionCode,
			ByCode:   true,
			Local:    formatCode(local.VersionCode),
			Remote:   formatCode(*remote.VersionCode),
		}, nil
	}

	less, err := IsLess(local.VersionName, remote.VersionName)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Outdated: less,
		Local:    local.VersionName,
		Remote:   remote.VersionName,
	}, nil
}

func formatCode(code int64) string {
	return strconv.FormatInt(code, 10)
}
