// Package format provides file and directory formatting for santa-lang
// source files, built on top of the root santafmt package's Format.
package format

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/teleivo/santafmt"
	"github.com/teleivo/santafmt/internal/layout"
)

// MaxFileSize is the largest source file santafmt will read, 10 MiB.
const MaxFileSize = 10 << 20

// Reader formats santa-lang source from r and writes the result to w.
func Reader(r io.Reader, w io.Writer, ft layout.Format) error {
	src, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return fmt.Errorf("error reading input: %v", err)
	}
	if len(src) > MaxFileSize {
		return fmt.Errorf("input exceeds the %d byte limit", MaxFileSize)
	}

	out, err := santafmt.Format(src, ft)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Dir formats every santa-lang file (*.santa, not starting with ".") in a
// directory tree.
func Dir(root string, ft layout.Format) error {
	var errs []error
	if err := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, fsErr error) error {
		if fsErr != nil {
			return fsErr
		}
		if d.IsDir() {
			return nil
		}
		if !IsSantaFile(d.Name()) {
			return nil
		}

		file := filepath.Join(root, path)
		if err := File(file, ft); err != nil {
			errs = append(errs, err)
		}
		return nil
	}); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// IsSantaFile reports whether name should be considered a santa-lang source
// file: it has a ".santa" extension and does not start with ".".
func IsSantaFile(name string) bool {
	return filepath.Ext(name) == ".santa" && !strings.HasPrefix(name, ".")
}

// File formats a single santa-lang file in-place, atomically: the formatted
// output is written to a temp file in the same directory, then renamed over
// the original so a crash mid-write never leaves a truncated file.
func File(path string, ft layout.Format) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %v", err)
	}
	if fi.Size() > MaxFileSize {
		return fmt.Errorf("%s: exceeds the %d byte limit", path, MaxFileSize)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %v", err)
	}

	out, err := santafmt.Format(src, ft)
	if err != nil {
		return fmt.Errorf("%s: %v", path, err)
	}
	if string(out) == string(src) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for atomic rename: %v", err)
	}

	var success bool
	tmpPath := tmp.Name()
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if perm := fi.Mode().Perm(); perm != 0o600 {
		if err := tmp.Chmod(perm); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to set file mode: %v", err)
		}
	}

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %v", err)
	}

	success = true
	return nil
}
