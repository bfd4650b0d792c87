// Package security confines tool-supplied paths to a configured directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for a blank path.
	ErrEmptyPath = errors.New("path cannot be empty")
	// ErrOutsideDirectory is returned for a path that escapes the configured directory.
	ErrOutsideDirectory = errors.New("path is outside configured directory")
)

// PathValidator provides security validation for file paths
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory.
// The directory does not need to exist yet.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if strings.TrimSpace(configuredDirectory) == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	abs, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &PathValidator{configuredDirectory: abs}, nil
}

// ConfiguredDirectory returns the absolute configured directory
func (v *PathValidator) ConfiguredDirectory() string {
	return v.configuredDirectory
}

// Resolve sanitizes path, anchors relative paths at the configured directory
// and returns its symlink-resolved absolute form if that stays inside the
// directory. Symlinks are followed for the parts of the path that exist, and
// callers open the returned path, which is the one that was checked.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}
	path = filepath.Clean(path)

	if !v.within(path) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	real, err := evalExisting(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !v.within(real) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	return real, nil
}

// ValidatePath checks if a path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

// within reports whether path equals or is nested in the configured
// directory, comparing against both its lexical and symlink-resolved form.
func (v *PathValidator) within(path string) bool {
	roots := []string{v.configuredDirectory}
	if real, err := filepath.EvalSymlinks(v.configuredDirectory); err == nil && real != v.configuredDirectory {
		roots = append(roots, real)
	}

	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// evalExisting resolves symlinks in the longest existing prefix of path and
// re-appends the missing tail.
func evalExisting(path string) (string, error) {
	var tail []string
	current := path
	for {
		real, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				real = filepath.Join(real, tail[i])
			}
			return real, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path, nil
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}
