// Package safe wraps file-system access to installed npm packages.
package safe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize bounds metadata reads such as package.json (1MB).
const DefaultMaxFileSize = 1 << 20

// MaxBinarySize bounds copies of native add-on binaries (64MB).
const MaxBinarySize = 64 << 20

// FileOptions configures ReadFile and CopyFile.
type FileOptions struct {
	// MaxSize is the maximum allowed file size in bytes. Zero means DefaultMaxFileSize.
	MaxSize int64
	// DestPerm is the permission mode for a copied file. Zero means 0600.
	DestPerm os.FileMode
	// AllowSymlinks follows a symlinked source. Linked packages (npm link, pnpm)
	// need this; it is off by default.
	AllowSymlinks bool
}

func (o *FileOptions) maxSize() int64 {
	if o == nil || o.MaxSize == 0 {
		return DefaultMaxFileSize
	}
	return o.MaxSize
}

// statRegular validates that path names a regular file within the size limit.
func statRegular(path string, opts *FileOptions) (string, os.FileInfo, error) {
	clean := filepath.Clean(path)

	info, err := os.Lstat(clean)
	if err != nil {
		return "", nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if opts == nil || !opts.AllowSymlinks {
			return "", nil, fmt.Errorf("file %q is a symlink, which is not allowed", path)
		}
		if info, err = os.Stat(clean); err != nil {
			return "", nil, err
		}
	}

	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("path %q is not a regular file", path)
	}

	if limit := opts.maxSize(); info.Size() > limit {
		return "", nil, fmt.Errorf("file %q exceeds maximum allowed size of %d bytes", path, limit)
	}

	return clean, info, nil
}

// ReadFile reads a regular file after validating its type and size.
func ReadFile(path string, opts *FileOptions) ([]byte, error) {
	clean, _, err := statRegular(path, opts)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(clean)
}

// CopyFile copies a regular file from src to dst, creating dst's directory.
func CopyFile(src, dst string, opts *FileOptions) error {
	cleanSrc, _, err := statRegular(src, opts)
	if err != nil {
		return err
	}

	destPerm := os.FileMode(0o600)
	if opts != nil && opts.DestPerm != 0 {
		destPerm = opts.DestPerm
	}

	//nolint:gosec // G301: Directory needs standard permissions for traversal
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}

	srcFile, err := os.Open(cleanSrc)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G304 - destination is derived from package metadata we already validated.
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, destPerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// Exists reports whether path can be stat'ed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
