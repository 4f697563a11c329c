package envutil

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotenv loads .env files into the process environment before the
// registry is read, so ${VAR} references can resolve against them. The
// global file loads first, then the project file; neither overrides
// variables already present in the environment. Missing files are fine.
func LoadDotenv(workDir string) {
	if global, err := GlobalDir(); err == nil {
		loadIfPresent(filepath.Join(global, ".env"))
	}

	if root, err := FindProjectRoot(workDir); err == nil {
		loadIfPresent(filepath.Join(root, ".env"))
	}
}

func loadIfPresent(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	// godotenv.Load never overrides existing environment variables.
	_ = godotenv.Load(path)
}
