package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

// Read returns the content of a file as UTF-8 text. Undecodable bytes are
// replaced with U+FFFD rather than failing. Files larger than maxBytes are
// refused, so a zero limit admits only empty files. A negative limit is
// rejected with ErrInvalidArgument.
func (s *Sandbox) Read(path string, maxBytes int64) (string, error) {
	filePath, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if maxBytes < 0 {
		return "", newError(ErrInvalidArgument, "read", path, "max_bytes must not be negative. Got: %d", maxBytes)
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return "", newError(ErrNotFound, "read", path, "File %s does not exist.", path)
	}
	if info.Size() > maxBytes {
		return "", newError(ErrSizeLimitExceeded, "read", path,
			"File is %d bytes; exceeds limit %d. Increase max_bytes if needed.", info.Size(), maxBytes)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", ioError("read", path, err)
	}
	defer f.Close()

	// The file may have grown since the stat; never read past the ceiling.
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", ioError("read", path, err)
	}
	if int64(len(data)) > maxBytes {
		return "", newError(ErrSizeLimitExceeded, "read", path,
			"File is larger than %d bytes; exceeds limit %d. Increase max_bytes if needed.", maxBytes, maxBytes)
	}

	text, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return "", ioError("read", path, err)
	}
	return string(text), nil
}

// Write creates or overwrites a file with content, creating parent
// directories as needed. It returns the absolute path written.
func (s *Sandbox) Write(path, content string) (string, error) {
	filePath, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}
	if isDir(filePath) {
		return "", newError(ErrTypeMismatch, "write", path, "Path %s is a directory.", path)
	}
	target, err := s.followLink("write", path, filePath)
	if err != nil {
		return "", err
	}

	if err := writeAtomic(target, []byte(content)); err != nil {
		return "", ioError("write", path, err)
	}

	s.logger.Debug("File written", zap.String("path", path), zap.Int("bytes", len(content)))
	return filePath, nil
}

// Append adds content to the end of a file, creating it and its parent
// directories when missing. It returns the absolute path written.
func (s *Sandbox) Append(path, content string) (string, error) {
	filePath, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}
	if isDir(filePath) {
		return "", newError(ErrTypeMismatch, "append", path, "Path %s is a directory.", path)
	}
	target, err := s.followLink("append", path, filePath)
	if err != nil {
		return "", err
	}
	if err := mkdirParent(target); err != nil {
		return "", ioError("append", path, err)
	}

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return "", ioError("append", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", ioError("append", path, err)
	}
	if err := f.Close(); err != nil {
		return "", ioError("append", path, err)
	}

	s.logger.Debug("File appended", zap.String("path", path), zap.Int("bytes", len(content)))
	return filePath, nil
}

// CreateFile creates a new file with content. Unlike Write it fails with
// ErrAlreadyExists when anything already exists at path.
func (s *Sandbox) CreateFile(path, content string) (string, error) {
	filePath, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}
	if exists(filePath) {
		return "", newError(ErrAlreadyExists, "create", path, "File %s already exists.", path)
	}

	if err := writeAtomic(filePath, []byte(content)); err != nil {
		return "", ioError("create", path, err)
	}

	s.logger.Debug("File created", zap.String("path", path))
	return filePath, nil
}

// DeleteFile removes a single file. Directories are refused.
func (s *Sandbox) DeleteFile(path string) (string, error) {
	filePath, err := s.resolveMutable("delete_file", path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return "", newError(ErrNotFound, "delete_file", path, "File %s does not exist.", path)
	}
	if info.IsDir() {
		return "", newError(ErrTypeMismatch, "delete_file", path, "delete_file only deletes files, not directories.")
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", ioError("delete_file", path, err)
	}

	s.logger.Debug("File deleted", zap.String("path", path))
	return filePath, nil
}

// writeAtomic stages data in a temporary file next to target and renames it
// into place, so a partially written file is never visible at target. An
// existing target keeps its permission bits. target must not be a symlink.
func writeAtomic(target string, data []byte) error {
	if err := mkdirParent(target); err != nil {
		return err
	}
	perm := fs.FileMode(filePerm)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
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

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return err
	}
	committed = true
	return nil
}
