// Package version parses and orders semantic version tokens.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a token is not a semantic version
var ErrInvalidVersion = errors.New("invalid version")

// semverRegex matches major.minor.patch with an optional pre-release and build suffix
var semverRegex = regexp.MustCompile(`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

// Version represents a parsed semantic version
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease []string
	Original   string
}

// Parse parses a version token such as "1.2.3" or "1.2.3-beta.1"
func Parse(s string) (*Version, error) {
	matches := semverRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	v := &Version{Original: s}
	var err error
	if v.Major, err = strconv.ParseUint(matches[1], 10, 64); err != nil {
		return nil, fmt.Errorf("%w: major: %v", ErrInvalidVersion, err)
	}
	if v.Minor, err = strconv.ParseUint(matches[2], 10, 64); err != nil {
		return nil, fmt.Errorf("%w: minor: %v", ErrInvalidVersion, err)
	}
	if v.Patch, err = strconv.ParseUint(matches[3], 10, 64); err != nil {
		return nil, fmt.Errorf("%w: patch: %v", ErrInvalidVersion, err)
	}
	if matches[4] != "" {
		v.Prerelease = strings.Split(matches[4], ".")
	}
	return v, nil
}

// String returns the version as originally written
func (v *Version) String() string {
	return v.Original
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	if c := compareUint(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareUint(v.Patch, other.Patch); c != 0 {
		return c
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

// comparePrerelease orders pre-release identifier lists.
// A version without pre-release is greater than one with it.
func comparePrerelease(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}

	for i := 0; ; i++ {
		switch {
		case i >= len(a) && i >= len(b):
			return 0
		case i >= len(a):
			return -1
		case i >= len(b):
			return 1
		}
		if c := compareIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
}

// compareIdentifier compares numeric identifiers numerically; a numeric
// identifier sorts before an alphanumeric one.
func compareIdentifier(a, b string) int {
	an, aErr := strconv.ParseUint(a, 10, 64)
	bn, bErr := strconv.ParseUint(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return compareUint(an, bn)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CompareStrings compares two version tokens.
// A token that fails to parse sorts below every valid version;
// two invalid tokens compare equal.
func CompareStrings(a, b string) int {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
