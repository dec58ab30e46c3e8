// Package project reads version information out of the project's packaging
// metadata.
package project

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MetadataFile is the file the declared version is read from.
const MetadataFile = "setup.py"

var versionPattern = regexp.MustCompile(`\bversion\s*=\s*['"]([^'"]+)['"]`)

// ReadVersion extracts the first version assignment from metadata text.
// The second return is false when no assignment is present. The captured
// value is returned as written, trimmed of whitespace; it is deliberately
// not validated as a semantic version.
func ReadVersion(metadata []byte) (string, bool) {
	m := versionPattern.FindSubmatch(metadata)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(string(m[1])), true
}

// LoadMetadataVersion reads the declared version from the metadata file under
// root. A missing file is reported the same way as a missing assignment.
func LoadMetadataVersion(root string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, MetadataFile)) //nolint:gosec // G304: fixed filename under project root
	if err != nil {
		return "", false
	}
	return ReadVersion(data)
}
