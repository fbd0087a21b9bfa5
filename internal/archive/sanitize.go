package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafeEntryPath marks an archive entry whose name would escape the
// destination root. A single such entry fails the whole extraction.
var ErrUnsafeEntryPath = errors.New("unsafe archive entry path")

// SafeJoin joins an archive entry name under destDir, guarding against
// zip-slip. The name is decomposed into components: absolute-root markers,
// parent-directory components, and drive/volume prefixes are rejected;
// current-directory components are dropped; what remains is joined under
// destDir. The result can therefore never escape the destination root.
func SafeJoin(destDir, entryName string) (string, error) {
	if entryName == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafeEntryPath)
	}

	// Drive or volume prefix (C:\..., C:evil, \\server\share\...).
	// filepath.VolumeName only recognizes these on windows builds, so
	// drive designators are matched explicitly. A leading letter-colon
	// covers absolute and drive-relative forms alike; other colons
	// (track listings and the like) are ordinary name characters.
	if filepath.VolumeName(entryName) != "" || hasDrivePrefix(entryName) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntryPath, entryName)
	}

	// Absolute root marker. Zip names use forward slashes but hostile
	// archives may carry backslashes too.
	if entryName[0] == '/' || entryName[0] == '\\' {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntryPath, entryName)
	}

	split := func(r rune) bool { return r == '/' || r == '\\' }

	clean := make([]string, 0, 4)
	for _, comp := range strings.FieldsFunc(entryName, split) {
		switch comp {
		case ".":
			// dropped
		case "..":
			return "", fmt.Errorf("%w: %s", ErrUnsafeEntryPath, entryName)
		default:
			clean = append(clean, comp)
		}
	}

	// A name made only of current-directory components resolves to the
	// destination root itself.
	if len(clean) == 0 {
		return destDir, nil
	}

	return filepath.Join(destDir, filepath.Join(clean...)), nil
}

func hasDrivePrefix(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
