// Package guard keeps request-supplied paths inside the configured document root.
package guard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrAccessDenied is returned when a path resolves outside the root.
// It never carries the rejected path's filesystem state.
var ErrAccessDenied = errors.New("access denied")

// IsContained reports whether candidate equals root or lies beneath it.
// Both arguments must be cleaned absolute paths produced by the same normalization.
func IsContained(candidate string, root string) bool {
	if candidate == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(candidate, prefix)
}

// ResolveRoot turns the configured root into the canonical form used for every containment check.
func ResolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat root %s: %w", resolved, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", resolved)
	}
	return resolved, nil
}

// Resolve maps an untrusted relative path to an absolute path under root.
// root must come from ResolveRoot. A contained path that does not exist is returned
// cleaned so the caller can report it as missing, as long as its deepest existing
// ancestor also resolves under root.
func Resolve(root string, untrusted string) (string, error) {
	if strings.ContainsRune(untrusted, 0) {
		return "", ErrAccessDenied
	}

	// Accept both separators from clients, then anchor under root
	relativePath := strings.ReplaceAll(untrusted, "\\", "/")
	relativePath = strings.TrimLeft(relativePath, "/")
	candidate := filepath.Join(root, filepath.FromSlash(relativePath))

	if !IsContained(candidate, root) {
		return "", ErrAccessDenied
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && existingAncestorContained(root, candidate) {
			return candidate, nil
		}
		return "", ErrAccessDenied
	}
	if !IsContained(resolved, root) {
		return "", ErrAccessDenied
	}
	return candidate, nil
}

// existingAncestorContained gates a missing path by the deepest entry of it that exists.
// A missing path below a symlink that leaves root is denied, and so is one below a
// dangling symlink, so a miss never tells the caller anything about the outside.
func existingAncestorContained(root string, candidate string) bool {
	for current := candidate; IsContained(current, root); current = filepath.Dir(current) {
		if _, err := os.Lstat(current); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return false
		}
		resolved, err := filepath.EvalSymlinks(current)
		if err != nil {
			return false
		}
		return IsContained(resolved, root)
	}
	return false
}

// Relative converts a contained absolute path into the forward-slash index key.
func Relative(root string, absolutePath string) (string, bool) {
	if !IsContained(absolutePath, root) {
		return "", false
	}
	relativePath, err := filepath.Rel(root, absolutePath)
	if err != nil {
		return "", false
	}
	if relativePath == "." {
		return "", true
	}
	return filepath.ToSlash(relativePath), true
}
