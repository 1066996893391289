package confkit

import (
	"fmt"
	"os"
	"path/filepath"
)

const maxRootDepth = 8

var rootMarkers = []string{"go.mod", ".git"}

// ProjectRoot walks upwards from the working directory until it finds a directory
// containing go.mod or .git. It falls back to the working directory itself.
func ProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	if root, ok := findRoot(wd); ok {
		return root, nil
	}
	return wd, nil
}

func findRoot(start string) (string, bool) {
	dir := start
	for i := 0; i < maxRootDepth; i++ {
		for _, marker := range rootMarkers {
			if fileExists(filepath.Join(dir, marker)) {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// ProjectPath joins the project root with rel.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// MustProjectPath is ProjectPath that panics on failure.
func MustProjectPath(rel string) string {
	p, err := ProjectPath(rel)
	if err != nil {
		panic(err)
	}
	return p
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
