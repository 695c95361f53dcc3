package loader

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)`)

// Version is a glTF asset version.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseVersion parses the leading "major.minor" of an asset version string.
//
// Parameters:
//   - s: the version text, e.g. "2.0"
//
// Returns:
//   - Version: the parsed version
//   - bool: false if s does not start with "major.minor"
func ParseVersion(s string) (Version, bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor}, true
}

// CompareVersion orders two versions.
//
// Parameters:
//   - a: the left version
//   - b: the right version
//
// Returns:
//   - int: -1 if a < b, 0 if equal, 1 if a > b
func CompareVersion(a, b Version) int {
	switch {
	case a.Major != b.Major:
		if a.Major > b.Major {
			return 1
		}
		return -1
	case a.Minor != b.Minor:
		if a.Minor > b.Minor {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// maxSupportedVersion is the highest asset.minVersion this loader accepts.
var maxSupportedVersion = Version{Major: 2, Minor: 0}

// resolveVersion picks the asset version used for loader dispatch.
//
// Parameters:
//   - version: asset.version, may be empty
//   - minVersion: asset.minVersion, may be empty
//   - containerVersion: the binary container header version, 0 for text input
//
// Returns:
//   - Version: the version to dispatch on
//   - error: an UnsupportedVersionError if the version is missing or rejected
func resolveVersion(version, minVersion string, containerVersion uint32) (Version, error) {
	if minVersion != "" {
		mv, ok := ParseVersion(minVersion)
		if !ok {
			return Version{}, &UnsupportedVersionError{Version: minVersion, Reason: "invalid minVersion"}
		}
		if CompareVersion(mv, maxSupportedVersion) > 0 {
			return Version{}, &UnsupportedVersionError{Version: minVersion, Reason: "minVersion is greater than " + maxSupportedVersion.String()}
		}
	}

	if version == "" {
		if containerVersion == 1 {
			return Version{Major: 1, Minor: 0}, nil
		}
		return Version{}, &UnsupportedVersionError{Reason: "missing asset.version"}
	}

	v, ok := ParseVersion(version)
	if !ok {
		return Version{}, &UnsupportedVersionError{Version: version, Reason: "invalid version"}
	}
	return v, nil
}
