// Package filex manages on-disk scratch space: working directories and
// size-capped temporary copies of uploaded files.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooLarge is returned by Spool when the source exceeds the limit.
var ErrTooLarge = errors.New("file too large")

// EnsureSubdDir creates dirName (relative to the working directory unless
// absolute) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// TempFile is a spooled copy of an upload, positioned at offset 0.
// The caller owns it and must call Remove on every path.
type TempFile struct {
	*os.File
	Size int64
}

// Remove closes and deletes the file. It is safe to call more than once.
func (t *TempFile) Remove() error {
	if t == nil || t.File == nil {
		return nil
	}
	_ = t.File.Close()
	if err := os.Remove(t.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Spool copies at most limit bytes of src into a new file under dir.
// If src holds more than limit bytes the partial file is removed and
// ErrTooLarge returned.
func Spool(dir, pattern string, src io.Reader, limit int64) (*TempFile, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	tf := &TempFile{File: f}

	n, err := io.Copy(f, io.LimitReader(src, limit+1))
	if err != nil {
		_ = tf.Remove()
		return nil, fmt.Errorf("spool: %w", err)
	}
	if n > limit {
		_ = tf.Remove()
		return nil, ErrTooLarge
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = tf.Remove()
		return nil, fmt.Errorf("rewind: %w", err)
	}

	tf.Size = n
	return tf, nil
}
