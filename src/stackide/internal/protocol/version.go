package protocol

import "fmt"

// Version is a worker protocol version, compared lexicographically.
type Version [3]int

// ExpectedVersion is the protocol version this proxy speaks.
var ExpectedVersion = Version{0, 1, 1}

// VersionFromSlice converts a 3-element slice into a Version.
func VersionFromSlice(parts []int) (Version, error) {
	if len(parts) != len(Version{}) {
		return Version{}, fmt.Errorf("version must have %d parts, got %d", len(Version{}), len(parts))
	}
	return Version{parts[0], parts[1], parts[2]}, nil
}

// Compare returns -1 if v is older than o, 1 if it is newer and 0 if they are equal.
func (v Version) Compare(o Version) int {
	for i := range v {
		switch {
		case v[i] < o[i]:
			return -1
		case v[i] > o[i]:
			return 1
		}
	}
	return 0
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}
