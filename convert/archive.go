package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ExtractArchive unpacks zipPath into destDir. When destDir already exists
// nothing is done and false is returned. Entries are written to a sibling
// staging directory first, so a failed extraction leaves no destDir behind.
func ExtractArchive(zipPath, destDir string) (bool, error) {
	if _, err := os.Stat(destDir); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", destDir, err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return false, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	staging := destDir + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return false, fmt.Errorf("failed to clear %s: %w", staging, err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", staging, err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, staging); err != nil {
			_ = os.RemoveAll(staging)
			return false, fmt.Errorf("%s: %w", zipPath, err)
		}
	}

	if err := os.Rename(staging, destDir); err != nil {
		_ = os.RemoveAll(staging)
		return false, fmt.Errorf("failed to move %s into place: %w", destDir, err)
	}
	return true, nil
}

func extractEntry(f *zip.File, root string) error {
	target := filepath.Join(root, filepath.FromSlash(f.Name))
	if !withinDir(root, target) {
		return fmt.Errorf("entry %q escapes the destination directory", f.Name)
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return dst.Close()
}

func withinDir(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// FindDocument returns the first regular file in dir, by name, whose
// extension is one of exts.
func FindDocument(dir string, exts []string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if hasExtension(e.Name(), exts) {
			return filepath.Join(dir, e.Name()), true, nil
		}
	}
	return "", false, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}
