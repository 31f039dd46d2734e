package profile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultExtension is the file extension of profile files.
const DefaultExtension = ".txt"

// File is a discovered profile file.
type File struct {
	Code string
	Path string
}

// NormalizeExtension returns ext with a leading dot, or DefaultExtension
// when ext is empty.
func NormalizeExtension(ext string) string {
	if ext == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

// CodePattern matches file names "<code><ext>" where code is two or three
// word characters or "xx_YY". The code is the first submatch.
func CodePattern(ext string) *regexp.Regexp {
	return regexp.MustCompile(`^(\w\w|\w\w\w|\w\w_\w\w)` + regexp.QuoteMeta(NormalizeExtension(ext)) + `$`)
}

// Discover walks dir recursively and returns every profile file, sorted by
// code. Two files claiming the same code are rejected.
func Discover(dir, ext string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: profile directory cannot be empty", ErrInvalidInput)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access profile directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, dir)
	}

	pattern := CodePattern(ext)
	seen := make(map[string]string)
	var files []File

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := pattern.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}
		code := m[1]
		if prev, dup := seen[code]; dup {
			return fmt.Errorf("%w: language %q defined by both %s and %s", ErrInvalidInput, code, prev, path)
		}
		seen[code] = path
		files = append(files, File{Code: code, Path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s profiles found in %s", ErrInvalidInput, NormalizeExtension(ext), dir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Code < files[j].Code })
	return files, nil
}
