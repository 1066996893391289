// Package confkit holds the small helpers shared by every config section: path
// resolution relative to the main config file, lazily hydrated sections and
// .env loading.
package confkit

import (
	"os"
	"path/filepath"
)

// ResolvePath expands environment variables in file and, when the result is
// relative, joins it onto base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory of the main config file path.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// Section is a config block that lives in its own file. File is the path as written
// in the main config; after Hydrate it holds the resolved path and Value the
// loaded section.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Configured reports whether the section names a file or carries a value.
func (s Section[T]) Configured() bool {
	return s.File != "" || s.Value != nil
}

// Hydrate loads File through loader. An empty File leaves the section untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}
