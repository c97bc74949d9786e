package confkit

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

// Environment switches read before any .env file is loaded.
const (
	EnvFile          = "FINDASH_ENV_FILE"
	EnvNoDotenv      = "FINDASH_NO_DOTENV"
	EnvDotenvOverlay = "FINDASH_DOTENV_OVERLOAD"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env files the first time it is called. Variables
// already set win unless FINDASH_DOTENV_OVERLOAD=1.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv(EnvNoDotenv) == "1" {
		return
	}
	load := godotenv.Load
	if os.Getenv(EnvDotenvOverlay) == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv(EnvFile); envFile != "" {
		_ = load(envFile)
		return
	}
	for _, p := range dotenvCandidates() {
		_ = load(p)
	}
}

// dotenvCandidates lists .env files from this package up to the repository
// root, nearest first, followed by the working directory's.
func dotenvCandidates() []string {
	var out []string
	if _, file, _, ok := runtime.Caller(0); ok {
		walkUp(filepath.Dir(file), func(dir string) bool {
			if p := filepath.Join(dir, ".env"); fileExists(p) {
				out = append(out, p)
			}
			return isRoot(dir)
		})
	}
	if fileExists(".env") {
		out = append(out, ".env")
	}
	return out
}
