package debpkg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBuildFailed reports a non-zero exit from the build subprocess. It is
// fatal for the Debian package kind only; callers decide whether the rest of
// a release proceeds.
var ErrBuildFailed = errors.New("dpkg-buildpackage failed")

// ToolchainError lists required build tools that are not installed.
type ToolchainError struct {
	Missing []string
}

func (e *ToolchainError) Error() string {
	return fmt.Sprintf("missing build tools: %s (run: kdist deb deps)", strings.Join(e.Missing, ", "))
}
