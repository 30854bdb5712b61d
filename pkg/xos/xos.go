// Package xos provides file system helpers shared by the build steps.
package xos

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"
)

// WriteFile writes the given file with the given data and permissions.
//
// Where possible (i.e. not on windows) it will use an atomic write process
// which removes the possibility of a partial file being written during a crash
// or error. Missing parent directories are created.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(renameio.WriteFile(filename, data, perm))
}

// CopyFile copies src to dst using WriteFile, preserving the permission bits.
func CopyFile(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return errors.WithStack(err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.WithStack(err)
	}
	return WriteFile(dst, data, fi.Mode().Perm())
}

// CopyDir copies the regular files in the tree rooted at src into dst,
// and reports the destination paths written.
// A missing src is not an error and copies nothing.
func CopyDir(src, dst string) (written []string, err error) {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		} else if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := CopyFile(path, target); err != nil {
			return err
		}
		written = append(written, target)
		return nil
	})
	return written, errors.Wrapf(err, "copy %s", src)
}
