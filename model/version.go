package model

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Policy versions follow semantic versioning, written with or without the
// leading "v" (the original records use plain "1.2.3").

// canonicalVersion normalises a policy version for x/mod/semver, which
// requires the "v" prefix.
func canonicalVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// CheckVersionFormat reports whether the supplied string is a well-formed
// semantic version.
func CheckVersionFormat(version string) bool {
	canonical := canonicalVersion(version)
	return canonical != "" && semver.IsValid(canonical)
}

// CompareVersions orders two policy versions: -1 when a < b, 0 when equal,
// +1 when a > b. An empty version sorts before any valid one, so a first
// publish with no previous version always passes the monotonicity guard.
func CompareVersions(a, b string) int {
	ca, cb := canonicalVersion(a), canonicalVersion(b)
	switch {
	case ca == "" && cb == "":
		return 0
	case ca == "":
		return -1
	case cb == "":
		return 1
	}
	return semver.Compare(ca, cb)
}
