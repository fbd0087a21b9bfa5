package archive

import (
	"context"
)

// Extractor defines the behavior for unpacking downloaded archives.
type Extractor interface {
	// Extract unpacks the archive at the given path into the destination
	// directory. Returns the list of extracted file paths, or an error if
	// extraction fails.
	Extract(ctx context.Context, archivePath string, destDir string) ([]string, error)

	// CanExtract checks if this extractor can handle the given file.
	CanExtract(archivePath string) (bool, error)

	// Returns the human-readable name of this extractor (e.g. "ZIP")
	Name() string
}
