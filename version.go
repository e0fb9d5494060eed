package omf

import (
	"github.com/gmggroup/omf-go/internal/container"
	"github.com/gmggroup/omf-go/internal/omferr"
)

// FormatMajor/FormatMinor are this build's format version, stamped into the
// archive comment of every container it writes and checked against every
// container it opens (spec.md §6 "Version policy").
const (
	FormatMajor = 2
	FormatMinor = 0
)

// FormatPreRelease is empty for a release build; a build tagged as a
// prerelease would set this so it could only open files tagged identically.
const FormatPreRelease = ""

func currentVersion() container.Version {
	return container.Version{Major: FormatMajor, Minor: FormatMinor, PreRelease: FormatPreRelease}
}

// checkVersion applies spec.md §6: the file's major and minor must each be
// ≤ this build's, its prerelease tag (if any) must match exactly, and an
// unknown future major is always rejected.
func checkVersion(v container.Version) error {
	if v.Major > FormatMajor || v.Minor > FormatMinor {
		return omferr.NewerVersionErr(v.Major, v.Minor)
	}
	if v.PreRelease != FormatPreRelease {
		return omferr.PreReleaseVersionErr(v.Major, v.Minor, v.PreRelease)
	}
	return nil
}
