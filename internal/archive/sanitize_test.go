package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join(string(filepath.Separator), "dest")

	tests := []struct {
		name  string
		entry string
		want  string
	}{
		{"plain file", "f.bin", filepath.Join(dest, "f.bin")},
		{"nested path", "a/b/c.txt", filepath.Join(dest, "a", "b", "c.txt")},
		{"current dir dropped", "./x", filepath.Join(dest, "x")},
		{"inner current dir dropped", "a/./b", filepath.Join(dest, "a", "b")},
		{"directory entry", "a/", filepath.Join(dest, "a")},
		{"backslash separators", "a\\b", filepath.Join(dest, "a", "b")},
		{"only current dir", "./", dest},
		{"colon after digit", "1:02 Overture.flac", filepath.Join(dest, "1:02 Overture.flac")},
		{"colon past second byte", "a/b:c.txt", filepath.Join(dest, "a", "b:c.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoin(dest, tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSafeJoinRejectsEscapes(t *testing.T) {
	dest := filepath.Join(string(filepath.Separator), "dest")

	entries := []string{
		"../evil",
		"../../etc/passwd",
		"a/../../evil",
		"a/b/..",
		"/absolute",
		"\\absolute",
		"C:\\windows\\evil",
		"c:/evil",
		"C:evil", // drive-relative
		"",
	}

	for _, entry := range entries {
		_, err := SafeJoin(dest, entry)
		require.Error(t, err, "entry %q must be rejected", entry)
		assert.ErrorIs(t, err, ErrUnsafeEntryPath, "entry %q", entry)
	}
}
