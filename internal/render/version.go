package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// MinVersion is the lowest OpenGL version the shaders target.
const MinVersion = "v3.3"

var ErrUnsupportedVersion = errors.New("unsupported OpenGL version")

// versionPrefix matches the "major.minor[.release]" number GL_VERSION
// starts with, before any vendor text.
var versionPrefix = regexp.MustCompile(`^(\d+)\.(\d+)(\.\d+)?`)

// CheckVersion reports whether a GL_VERSION string satisfies MinVersion.
func CheckVersion(version string) error {
	if strings.HasPrefix(version, "OpenGL ES") {
		return fmt.Errorf("%w: %q is an ES context", ErrUnsupportedVersion, version)
	}
	m := versionPrefix.FindString(strings.TrimSpace(version))
	if m == "" {
		return fmt.Errorf("%w: cannot parse %q", ErrUnsupportedVersion, version)
	}
	v := "v" + m
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: cannot parse %q", ErrUnsupportedVersion, version)
	}
	if semver.Compare(v, MinVersion) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrUnsupportedVersion, strings.TrimPrefix(v, "v"), strings.TrimPrefix(MinVersion, "v"))
	}
	return nil
}
