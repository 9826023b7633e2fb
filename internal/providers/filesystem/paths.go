package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsagent/internal/shared/paths"
)

// ensure creates the sandbox root if it does not exist yet.
func (s *Sandbox) ensure() error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return ioError("ensure", s.root, err)
	}
	return nil
}

// Resolve maps a caller-supplied relative path to an absolute path inside
// the sandbox. It fails with ErrSecurityViolation for absolute arguments and
// for anything that cleans to a location outside the root. No filesystem
// access happens here.
func (s *Sandbox) Resolve(rel string) (string, error) {
	if paths.IsAbsolute(rel) {
		return "", s.violation(rel, "", "paths must be relative to the sandbox root. Got: %s", rel)
	}

	target := paths.Join(s.root, rel)
	if !paths.Within(s.root, target) {
		return "", s.violation(rel, target, "paths must stay inside %s. Got: %s", s.root, target)
	}
	return target, nil
}

// resolvePair resolves a source and destination together so that neither is
// touched unless both are contained.
func (s *Sandbox) resolvePair(src, dst string) (string, string, error) {
	source, err := s.Resolve(src)
	if err != nil {
		return "", "", err
	}
	destination, err := s.Resolve(dst)
	if err != nil {
		return "", "", err
	}
	return source, destination, nil
}

// resolveMutable resolves rel for an operation that removes or relocates it.
// The root itself is never removed or relocated.
func (s *Sandbox) resolveMutable(op, rel string) (string, error) {
	target, err := s.Resolve(rel)
	if err != nil {
		return "", err
	}
	if target == s.root {
		return "", s.violation(rel, target, "%s cannot remove or relocate the sandbox root", op)
	}
	return target, nil
}

// followLink returns the file a write to target lands on. A symlink at
// target is followed when its destination stays inside the root; a dangling
// link or one leading outside is refused.
func (s *Sandbox) followLink(op, rel, target string) (string, error) {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return target, nil
	}

	dest, err := filepath.EvalSymlinks(target)
	if err != nil {
		return "", newError(ErrNotFound, op, rel, "Link %s points to a missing file.", rel)
	}
	root, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return "", ioError(op, rel, err)
	}
	if !paths.Within(root, dest) {
		return "", s.violation(rel, dest, "link %s points outside %s", rel, s.root)
	}
	return dest, nil
}

func (s *Sandbox) violation(rel, target, format string, args ...interface{}) error {
	s.logger.Warn("Path rejected by sandbox",
		zap.String("root", s.root),
		zap.String("path", rel),
		zap.String("resolved", target),
	)
	return newError(ErrSecurityViolation, "resolve", rel, format, args...)
}

// rel renders an absolute sandbox path relative to the root for reports.
func (s *Sandbox) rel(abs string) string {
	return paths.Rel(s.root, abs)
}

// exists reports whether p exists, following symlinks.
func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// removeAny unlinks a file or removes a directory tree.
func removeAny(p string) error {
	if isDir(p) {
		return os.RemoveAll(p)
	}
	err := os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func mkdirParent(p string) error {
	return os.MkdirAll(filepath.Dir(p), dirPerm)
}
