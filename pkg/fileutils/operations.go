// Package fileutils implements the directory operations the archive codec
// delegates: temp directories, idempotent creation, recursive deletion, file
// copies, folder flattening, and raw-byte hashing. Everything goes through an
// afero filesystem so tests can run against memory.
package fileutils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Directories is the filesystem collaborator. The zero value is not usable;
// construct with New or NewWithFs.
type Directories struct {
	fs      afero.Fs
	tempDir string
}

// New returns a Directories over the real filesystem rooted at the OS temp dir.
func New() *Directories {
	return NewWithFs(afero.NewOsFs(), os.TempDir())
}

// NewWithFs returns a Directories over fs, using tempDir for temp artifacts.
func NewWithFs(fs afero.Fs, tempDir string) *Directories {
	return &Directories{fs: fs, tempDir: tempDir}
}

// Fs exposes the underlying filesystem for callers that stream into it.
func (d *Directories) Fs() afero.Fs {
	return d.fs
}

// TempDirectory returns the configured temp directory.
func (d *Directories) TempDirectory() string {
	return d.tempDir
}

// EnsureDirectory creates path and all parents if missing.
func (d *Directories) EnsureDirectory(path string) error {
	return errors.WithStack(d.fs.MkdirAll(path, 0755))
}

// Exists reports whether path exists.
func (d *Directories) Exists(path string) bool {
	ok, err := afero.Exists(d.fs, path)
	return err == nil && ok
}

// ClearAndDelete removes path and everything under it.
func (d *Directories) ClearAndDelete(path string) error {
	return errors.WithStack(d.fs.RemoveAll(path))
}

// CopyFile copies src to dst, creating dst's directory as needed.
func (d *Directories) CopyFile(src, dst string) error {
	if err := d.EnsureDirectory(filepath.Dir(dst)); err != nil {
		return err
	}
	in, err := d.fs.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := d.fs.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(out.Close())
}

// Flatten removes one redundant containing folder level: when dir contains a
// single subdirectory and no files, that subdirectory's contents move up into
// dir and the subdirectory is removed. A no-op otherwise.
func (d *Directories) Flatten(dir string) error {
	infos, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(infos) != 1 || !infos[0].IsDir() {
		return nil
	}

	nested := filepath.Join(dir, infos[0].Name())
	children, err := afero.ReadDir(d.fs, nested)
	if err != nil {
		return errors.WithStack(err)
	}
	for _, child := range children {
		src := filepath.Join(nested, child.Name())
		dst := filepath.Join(dir, child.Name())
		if err := d.fs.Rename(src, dst); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(d.fs.Remove(nested))
}

// WriteFile writes data to path, creating parent directories as needed.
func (d *Directories) WriteFile(path string, r io.Reader) error {
	if err := d.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	out, err := d.fs.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(out.Close())
}

// FileSHA256 hashes the file's raw bytes. The bytes are never decoded as
// text; archives are binary and any transcoding would corrupt the digest.
func (d *Directories) FileSHA256(path string) (string, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WithStack(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
