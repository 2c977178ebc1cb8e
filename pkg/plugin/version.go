package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// MinCompatibleVersion is the oldest exporter protocol the host accepts.
const MinCompatibleVersion = "0.1.0"

// Version is a parsed MAJOR.MINOR.PATCH protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version string in "MAJOR.MINOR.PATCH" format.
func ParseVersion(version string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}
	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", part, version)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// less reports whether v sorts before o.
func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// CheckCompatible returns an error unless a plugin speaking version can be
// used by this host. Major versions must match exactly and the plugin must
// not be older than MinCompatibleVersion. Newer minor and patch versions
// are accepted.
func CheckCompatible(version string) error {
	pluginVersion, err := ParseVersion(version)
	if err != nil {
		return fmt.Errorf("failed to parse plugin version: %w", err)
	}
	current, _ := ParseVersion(ProtocolVersion)
	minimum, _ := ParseVersion(MinCompatibleVersion)

	if pluginVersion.Major != current.Major {
		return fmt.Errorf("incompatible major version: plugin is %s, tonal requires %d.x.x",
			pluginVersion, current.Major)
	}
	if pluginVersion.less(minimum) {
		return fmt.Errorf("plugin version %s is too old, minimum required is %s",
			pluginVersion, MinCompatibleVersion)
	}
	return nil
}
