package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ZIP file signatures (magic bytes)
var zipSignatures = [][]byte{
	{0x50, 0x4B, 0x03, 0x04}, // Standard ZIP
	{0x50, 0x4B, 0x05, 0x06}, // Empty ZIP
	{0x50, 0x4B, 0x07, 0x08}, // Spanned ZIP
}

// ZipExtractor unpacks zip archives in-process with per-entry path
// sanitization.
type ZipExtractor struct{}

func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

// Name returns the extractor name
func (z *ZipExtractor) Name() string {
	return "ZIP"
}

// CanExtract checks if the file is a ZIP archive
func (z *ZipExtractor) CanExtract(archivePath string) (bool, error) {
	lower := strings.ToLower(filepath.Base(archivePath))

	// Extension check
	if !strings.HasSuffix(lower, ".zip") {
		return false, nil
	}

	// Verify ZIP signature
	isZip, err := hasZipSignature(archivePath)
	if err != nil {
		return false, fmt.Errorf("failed to verify ZIP signature: %w", err)
	}

	return isZip, nil
}

// Extract unpacks every entry of the archive into destDir. Directory
// entries are created recursively and idempotently; file entries get
// their parent directories created first, so entry ordering does not
// matter. An entry that fails path sanitization aborts the whole
// extraction; files written up to that point are left on disk.
func (z *ZipExtractor) Extract(ctx context.Context, archivePath string, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("invalid zip archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extract directory: %w", err)
	}

	var extracted []string

	for _, entry := range reader.File {
		select {
		case <-ctx.Done():
			return extracted, ctx.Err()
		default:
		}

		outPath, err := SafeJoin(destDir, entry.Name)
		if err != nil {
			return extracted, err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(outPath, 0755); err != nil {
				return extracted, fmt.Errorf("failed creating dir %s: %w", outPath, err)
			}
			continue
		}

		if err := z.extractFile(entry, outPath); err != nil {
			return extracted, err
		}

		extracted = append(extracted, outPath)
	}

	return extracted, nil
}

func (z *ZipExtractor) extractFile(entry *zip.File, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed creating dir %s: %w", filepath.Dir(outPath), err)
	}

	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed reading zip entry %s: %w", entry.Name, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed creating file %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed extracting %s: %w", outPath, err)
	}

	// Best-effort permission propagation; failure is not fatal.
	if mode := entry.Mode().Perm(); mode != 0 {
		_ = os.Chmod(outPath, mode)
	}

	return nil
}

// hasZipSignature checks if the file has a valid ZIP magic byte signature
func hasZipSignature(archivePath string) (bool, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	header := make([]byte, 4)
	n, err := file.Read(header)
	if err != nil {
		return false, err
	}

	if n < 4 {
		return false, nil
	}

	for _, sig := range zipSignatures {
		if bytes.Equal(header, sig) {
			return true, nil
		}
	}

	return false, nil
}
