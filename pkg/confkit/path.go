package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvRoot overrides project root discovery, for binaries run outside the source tree.
const EnvRoot = "FINDASH_ROOT"

const maxRootDepth = 8

// ProjectRoot locates the repository root: $FINDASH_ROOT if set, otherwise the
// nearest ancestor of this source file holding go.mod or .git, otherwise the
// working directory.
func ProjectRoot() (string, error) {
	if root := os.Getenv(EnvRoot); root != "" {
		return root, nil
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		var root string
		walkUp(filepath.Dir(file), func(dir string) bool {
			if isRoot(dir) {
				root = dir
				return true
			}
			return false
		})
		if root != "" {
			return root, nil
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// MustProjectRoot returns the repository root path or panics on failure.
func MustProjectRoot() string {
	root, err := ProjectRoot()
	if err != nil {
		panic(err)
	}
	return root
}

// ProjectPath joins the repository root with rel.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// MustProjectPath returns ProjectPath(rel) and panics on failure.
func MustProjectPath(rel string) string {
	p, err := ProjectPath(rel)
	if err != nil {
		panic(err)
	}
	return p
}

// ResolvePath expands ${VAR} references in file and anchors a relative result at base.
func ResolvePath(base, file string) string {
	if file = os.ExpandEnv(file); filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir is the directory relative section files are resolved against.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// walkUp calls visit on dir and its ancestors until visit returns true.
func walkUp(dir string, visit func(dir string) bool) {
	for i := 0; i < maxRootDepth; i++ {
		if visit(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func isRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
