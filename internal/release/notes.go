package release

import "fmt"

// DefaultNotes renders the templated release notes used when the operator
// does not supply free text, or when prompting is skipped entirely.
func DefaultNotes(pkg, version string) string {
	return fmt.Sprintf(`Release %s

Changes in this release:
- Bug fixes and improvements
- See commit history for details

Install:
  pip install %s==%s
`, version, pkg, version)
}
