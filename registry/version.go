package registry

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseVersion parses a semantic version string permissively: missing or
// non-numeric segments default to 0, so a malformed string degrades to
// 0.0.0 instead of taking down the registry on bad input. This is a
// deliberate policy, not a bug; strict parsing belongs in CI, not in a
// read-heavy runtime component.
func ParseVersion(s string) *semver.Version {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 3)
	var nums [3]uint64
	for i := 0; i < len(parts) && i < 3; i++ {
		nums[i] = leadingUint(parts[i])
	}
	return semver.New(nums[0], nums[1], nums[2], "", "")
}

// leadingUint parses the leading digit run of a segment ("3-beta" -> 3,
// "x" -> 0).
func leadingUint(s string) uint64 {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// CanonicalVersion renders the permissive parse back to "major.minor.patch".
// Migration graphs key their nodes on this form so "1.2" and "1.2.0" are the
// same node.
func CanonicalVersion(s string) string {
	return ParseVersion(s).String()
}
