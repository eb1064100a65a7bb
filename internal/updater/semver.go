package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// Semver represents a semantic version. Pre-release and build metadata are
// kept for display but ignored when comparing.
type Semver struct {
	Major int
	Minor int
	Patch int
	Pre   string
}

// ParseSemver parses a version string like "1.2.3", "v1.2.3" or "1.2.3-rc.1".
func ParseSemver(s string) (Semver, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	var pre string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s, pre = s[:i], s[i+1:]
	}

	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("invalid semver: %q", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Semver{}, fmt.Errorf("invalid major version: %w", err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Semver{}, fmt.Errorf("invalid minor version: %w", err)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return Semver{}, fmt.Errorf("invalid patch version: %w", err)
	}

	return Semver{Major: major, Minor: minor, Patch: patch, Pre: pre}, nil
}

// String returns the version as "major.minor.patch[-pre]".
func (v Semver) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// LessThan returns true if v < other. A pre-release sorts before its release.
func (v Semver) LessThan(other Semver) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	if v.Patch != other.Patch {
		return v.Patch < other.Patch
	}
	return v.Pre != "" && other.Pre == ""
}
