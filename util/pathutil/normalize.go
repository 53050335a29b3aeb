package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeForLookup returns an absolute, symlink-resolved path suitable for
// comparisons. On case-insensitive platforms (macOS, Windows) it is also
// lowercased. Paths that do not exist yet are returned absolute but unresolved.
func NormalizeForLookup(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	canonicalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		canonicalPath = absPath
	}

	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return strings.ToLower(canonicalPath), nil
	}
	return canonicalPath, nil
}

// ComparePaths checks if two paths refer to the same location, respecting OS case sensitivity.
func ComparePaths(path1, path2 string) (bool, error) {
	norm1, err := NormalizeForLookup(path1)
	if err != nil {
		return false, err
	}
	norm2, err := NormalizeForLookup(path2)
	if err != nil {
		return false, err
	}
	return norm1 == norm2, nil
}

// IsExecutableFile reports whether path is a regular file with any execute bit set.
func IsExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
