// Package paths provides the containment primitives shared by every sandboxed
// filesystem operation.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Clean returns root as a cleaned absolute path.
func Clean(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("sandbox root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sandbox root %s: %w", root, err)
	}
	return filepath.Clean(abs), nil
}

// Within reports whether target equals root or is lexically nested under it.
// Both arguments must be cleaned absolute paths. The comparison is done on
// path components, so "/sandboxed" is not within "/sandbox".
func Within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

// IsAbsolute reports whether a caller-supplied path tries to override the
// root: absolute paths, volume-qualified paths and rooted paths such as
// `\foo` on Windows.
func IsAbsolute(p string) bool {
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return true
	}
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, string(filepath.Separator))
}

// Join resolves rel against root and cleans the result. It performs no
// containment check; callers pair it with Within.
func Join(root, rel string) string {
	return filepath.Clean(filepath.Join(root, rel))
}

// Rel returns target relative to root, or target unchanged when it cannot be
// expressed relatively.
func Rel(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return target
	}
	return rel
}

// Compare orders two relative paths component by component, so "a/b" sorts
// before "a-c". It returns -1, 0 or +1.
func Compare(a, b string) int {
	pa := strings.Split(filepath.ToSlash(a), "/")
	pb := strings.Split(filepath.ToSlash(b), "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if c := strings.Compare(pa[i], pb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}
