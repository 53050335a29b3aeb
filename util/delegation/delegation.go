// Package delegation finds the executables syncgate hands work to: the
// auth helper and the downstream sync tool.
//
// Search order for a bare name:
//  1. The directory containing the running syncgate binary, so companion
//     binaries installed side by side win over anything on PATH.
//  2. PATH.
//
// A name containing a path separator is used as given and must exist and
// be executable.
package delegation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/syncgate/command"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/util/pathutil"
)

// Locator resolves executable names to absolute paths.
type Locator struct {
	executor command.Executor
	self     func() (string, error)
}

// NewLocator creates a Locator that searches PATH through executor.
func NewLocator(executor command.Executor) *Locator {
	if executor == nil {
		executor = &command.RealExecutor{}
	}
	return &Locator{executor: executor, self: os.Executable}
}

// WithSelf overrides how the running binary's path is found.
func (l *Locator) WithSelf(self func() (string, error)) *Locator {
	l.self = self
	return l
}

// Find returns the absolute path for name, or an EXECUTABLE_NOT_FOUND error
// listing every location tried. The running binary itself is never
// returned, which keeps a misconfigured target from exec'ing syncgate in
// a loop.
func (l *Locator) Find(name string) (string, error) {
	var searched []string

	if strings.ContainsRune(name, filepath.Separator) {
		expanded, err := pathutil.Expand(name)
		if err != nil {
			expanded = name
		}
		searched = append(searched, expanded)
		if pathutil.IsExecutableFile(expanded) && !l.isSelf(expanded) {
			return expanded, nil
		}
		return "", errors.ExecutableNotFound(name, searched)
	}

	if selfPath, err := l.self(); err == nil {
		candidate := filepath.Join(filepath.Dir(selfPath), name)
		searched = append(searched, candidate)
		if pathutil.IsExecutableFile(candidate) && !l.isSelf(candidate) {
			return candidate, nil
		}
	}

	searched = append(searched, "$PATH")
	if path, err := l.executor.LookPath(name); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !l.isSelf(path) {
			return path, nil
		}
	}

	return "", errors.ExecutableNotFound(name, searched)
}

func (l *Locator) isSelf(path string) bool {
	selfPath, err := l.self()
	if err != nil {
		return false
	}
	same, err := pathutil.ComparePaths(selfPath, path)
	return err == nil && same
}
