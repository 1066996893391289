package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads credentials from .env files. The first call wins; later
// calls are no-ops.
//
//   - NO_DOTENV=1 disables loading.
//   - ENV_FILE=<path> loads exactly that file.
//   - Otherwise every .env between the working directory and the project root
//     is loaded, nearest first.
//
// Variables already present in the environment are kept unless DOTENV_OVERLOAD=1.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		loadDotenv(DotenvCandidates())
	})
}

// DotenvCandidates lists the .env paths LoadDotenvOnce would consider, nearest first.
func DotenvCandidates() []string {
	if os.Getenv("NO_DOTENV") == "1" {
		return nil
	}
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return []string{envFile}
	}

	wd, err := os.Getwd()
	if err != nil {
		return []string{".env"}
	}
	root, ok := findRoot(wd)
	if !ok {
		return []string{filepath.Join(wd, ".env")}
	}

	var out []string
	for dir := wd; ; dir = filepath.Dir(dir) {
		out = append(out, filepath.Join(dir, ".env"))
		if dir == root || filepath.Dir(dir) == dir {
			break
		}
	}
	return out
}

func loadDotenv(paths []string) {
	// Load never overwrites, Overload always does; both must leave the nearest file winning.
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		for i := len(paths) - 1; i >= 0; i-- {
			if fileExists(paths[i]) {
				_ = godotenv.Overload(paths[i])
			}
		}
		return
	}
	for _, p := range paths {
		if fileExists(p) {
			_ = godotenv.Load(p)
		}
	}
}
