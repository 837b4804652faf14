package update

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Version is a three-field numeric version
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "major.minor.patch" where every field is a non-negative integer.
// Prefixes, pre-release tags and build metadata are rejected.
func ParseVersion(s string) (*Version, error) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return nil, parseError(fmt.Sprintf("invalid version format: %q", s), nil)
	}

	fields := make([]int, 3)
	for i := range fields {
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return nil, parseError(fmt.Sprintf("invalid version component in %q", s), err)
		}
		fields[i] = n
	}

	return &Version{Major: fields[0], Minor: fields[1], Patch: fields[2]}, nil
}

// String returns the dotted representation
func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v is less than, equal to or greater than other
func (v *Version) Compare(other *Version) int {
	switch {
	case v.Major != other.Major:
		return sign(v.Major - other.Major)
	case v.Minor != other.Minor:
		return sign(v.Minor - other.Minor)
	default:
		return sign(v.Patch - other.Patch)
	}
}

// IsLessThan returns true if v < other
func (v *Version) IsLessThan(other *Version) bool {
	return v.Compare(other) < 0
}

// IsLess reports whether v1 is strictly older than v2.
func IsLess(v1, v2 string) (bool, error) {
	a, err := ParseVersion(v1)
	if err != nil {
		return false, err
	}
	b, err := ParseVersion(v2)
	if err != nil {
		return false, err
	}
	return a.IsLessThan(b), nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
