// Package version reports which tidemark build is running.
package version

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// DevVersion marks a binary built without a release tag.
const DevVersion = "dev"

// BuildVersion is stamped at link time with
// -ldflags "-X github.com/tidemark/cli/version.BuildVersion=<tag>".
var BuildVersion = DevVersion

type Version struct {
	// CLI is the display form, a release tag gets a leading "v".
	CLI string
	// CLISemver is nil for builds whose tag is not a semantic version.
	CLISemver *semver.Version
}

func (v *Version) GetCLIVersion() string {
	return v.CLI
}

// SetCLIVersion records s. Tags that parse as semver are normalised to
// "v<major>.<minor>.<patch>[-pre]", anything else is kept as given.
func (v *Version) SetCLIVersion(s string) {
	parsed, err := semver.NewVersion(s)
	if err != nil {
		v.CLI, v.CLISemver = s, nil
		return
	}
	v.CLI = fmt.Sprintf("v%s", parsed)
	v.CLISemver = parsed
}

// IsDev reports whether the CLI was built without a release version.
func (v *Version) IsDev() bool {
	return v.CLISemver == nil
}

// New describes the running binary.
func New() *Version {
	return NewCLIVersion(BuildVersion)
}

func NewCLIVersion(cli string) *Version {
	v := &Version{}
	v.SetCLIVersion(cli)
	return v
}
