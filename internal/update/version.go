package update

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a four-component release number. Versions are ordered by
// component, most significant first.
type Version struct {
	Major    int
	Minor    int
	Build    int
	Revision int
}

// versionRegex matches exactly four dot-separated decimal components.
var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)$`)

// ParseVersion parses a version such as "8.2.0.7535".
// Surrounding whitespace is ignored. Anything other than four non-negative
// decimal integers is an error.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, fmt.Errorf("invalid version format: %q", s)
	}

	var parts [4]int
	for i := range parts {
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return Version{}, fmt.Errorf("invalid version component %q: %w", matches[i+1], err)
		}
		parts[i] = n
	}

	return Version{Major: parts[0], Minor: parts[1], Build: parts[2], Revision: parts[3]}, nil
}

// String renders the version as "major.minor.build.revision".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// Compare compares two versions.
// Returns:
//
//	-1 if v < other
//	 0 if v == other
//	 1 if v > other
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return compareInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return compareInt(v.Minor, other.Minor)
	}
	if v.Build != other.Build {
		return compareInt(v.Build, other.Build)
	}
	return compareInt(v.Revision, other.Revision)
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan returns true if v > other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal returns true if v == other.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// RunningVersion parses the version baked into the binary. ok is false for
// development builds ("", "dev", "development") and for strings that are not
// a four-component version; those builds never check for updates.
func RunningVersion(raw string) (v Version, ok bool) {
	switch strings.TrimSpace(raw) {
	case "", "dev", "development":
		return Version{}, false
	}
	v, err := ParseVersion(raw)
	if err != nil {
		return Version{}, false
	}
	return v, true
}

func compareInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
