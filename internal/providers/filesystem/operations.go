package filesystem

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

// Copy copies a file, preserving its mode and modification time. An existing
// destination is an error unless overwrite is set; a directory destination is
// never replaced by a file.
func (s *Sandbox) Copy(src, dst string, overwrite bool) (string, error) {
	source, destination, err := s.resolvePair(src, dst)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	if !isFile(source) {
		return "", newError(ErrNotFound, "copy", src, "Source file %s does not exist.", src)
	}
	if exists(destination) {
		if !overwrite {
			return "", newError(ErrAlreadyExists, "copy", dst, "Destination %s already exists. Use overwrite=true.", dst)
		}
		if isDir(destination) {
			return "", newError(ErrTypeMismatch, "copy", dst, "Cannot overwrite a directory with a file.")
		}
	}

	if err := copyFile(source, destination); err != nil {
		return "", ioError("copy", dst, err)
	}

	s.logger.Debug("File copied", zap.String("src", src), zap.String("dst", dst))
	return destination, nil
}

// Move relocates a file or directory. With overwrite set an existing
// destination of the same kind is removed first; file-over-directory and
// directory-over-file are refused.
func (s *Sandbox) Move(src, dst string, overwrite bool) (string, error) {
	source, err := s.resolveMutable("move", src)
	if err != nil {
		return "", err
	}
	destination, err := s.resolveMutable("move", dst)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	if !exists(source) {
		return "", newError(ErrNotFound, "move", src, "Source %s does not exist.", src)
	}
	if exists(destination) {
		if !overwrite {
			return "", newError(ErrAlreadyExists, "move", dst, "Destination %s already exists. Use overwrite=true.", dst)
		}
		srcDir, dstDir := isDir(source), isDir(destination)
		if !srcDir && dstDir {
			return "", newError(ErrTypeMismatch, "move", dst, "Cannot overwrite a directory with a file.")
		}
		if srcDir && !dstDir {
			return "", newError(ErrTypeMismatch, "move", dst, "Cannot overwrite a file with a directory.")
		}
		if err := removeAny(destination); err != nil {
			return "", ioError("move", dst, err)
		}
	}

	if err := mkdirParent(destination); err != nil {
		return "", ioError("move", dst, err)
	}
	if err := movePath(source, destination); err != nil {
		return "", ioError("move", src, err)
	}

	s.logger.Debug("Path moved", zap.String("src", src), zap.String("dst", dst))
	return destination, nil
}

// Rename renames a file or directory, creating the destination's parent
// directories. It fails only when the source is missing.
func (s *Sandbox) Rename(oldPath, newPath string) (string, error) {
	oldFull, err := s.resolveMutable("rename_file", oldPath)
	if err != nil {
		return "", err
	}
	newFull, err := s.resolveMutable("rename_file", newPath)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	if !exists(oldFull) {
		return "", newError(ErrNotFound, "rename_file", oldPath, "File %s does not exist.", oldPath)
	}
	if err := mkdirParent(newFull); err != nil {
		return "", ioError("rename_file", newPath, err)
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return "", ioError("rename_file", oldPath, err)
	}

	s.logger.Debug("Path renamed", zap.String("old", oldPath), zap.String("new", newPath))
	return newFull, nil
}

// movePath renames src to dst, falling back to copy-and-delete when they
// live on different devices.
func movePath(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if isDir(src) {
		if err := copyTree(src, dst); err != nil {
			os.RemoveAll(dst)
			return err
		}
		return os.RemoveAll(src)
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dst through a temporary file in dst's directory,
// then applies src's mode and times.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := mkdirParent(dst); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	committed = true
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, dirPerm)
		}
		return copyFile(p, target)
	})
}
