package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

// entry is a directory child classified by following symlinks.
type entry struct {
	name  string
	path  string
	isDir bool
	size  int64
	err   error
}

// List renders path. With tree set it returns an indented box-drawing tree
// limited to maxDepth levels below path; otherwise a flat one-level listing
// with one "name<TAB>size" line per child. A file renders as its name and size.
func (s *Sandbox) List(path string, tree bool, maxDepth int) (string, error) {
	target, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", newError(ErrNotFound, "list", path, "Path %s does not exist.", path)
	}
	if !info.IsDir() {
		return fmt.Sprintf("%s\t%s", info.Name(), formatSize(info.Size())), nil
	}
	if tree {
		return s.tree(target, maxDepth)
	}

	children, err := readEntries(target)
	if err != nil {
		return "", ioError("list", path, err)
	}
	if len(children) == 0 {
		return "(empty)", nil
	}

	lines := make([]string, 0, len(children))
	for _, c := range children {
		label, size := c.name, "-"
		if c.isDir {
			label += "/"
		} else if c.err != nil {
			size = "?"
		} else {
			size = formatSize(c.size)
		}
		lines = append(lines, label+"\t"+size)
	}
	return strings.Join(lines, "\n"), nil
}

// tree renders base and its descendants. Depth 1 is the direct children of
// base; maxDepth < 1 renders only the base line.
func (s *Sandbox) tree(base string, maxDepth int) (string, error) {
	lines := []string{filepath.Base(base) + "/"}

	var walk func(dir, prefix string, depth int) error
	walk = func(dir, prefix string, depth int) error {
		if depth > maxDepth {
			return nil
		}

		children, err := readEntries(dir)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				lines = append(lines, prefix+branchLast+"[permission denied]")
				return nil
			}
			return err
		}

		for i, c := range children {
			last := i == len(children)-1
			branch, indent := branchMid, indentMid
			if last {
				branch, indent = branchLast, indentLast
			}

			if c.isDir {
				lines = append(lines, prefix+branch+c.name+"/")
				if err := walk(c.path, prefix+indent, depth+1); err != nil {
					return err
				}
				continue
			}

			size := "?"
			if c.err == nil {
				size = formatSize(c.size)
			}
			lines = append(lines, fmt.Sprintf("%s%s%s (%s)", prefix, branch, c.name, size))
		}
		return nil
	}

	if err := walk(base, "", 1); err != nil {
		return "", ioError("list", s.rel(base), err)
	}
	return strings.Join(lines, "\n"), nil
}

// readEntries lists dir with directories first, then files, each group
// ordered case-insensitively.
func readEntries(dir string) ([]entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	children := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		p := filepath.Join(dir, de.Name())
		e := entry{name: de.Name(), path: p}
		if info, err := os.Stat(p); err == nil {
			e.isDir = info.IsDir()
			e.size = info.Size()
		} else {
			e.err = err
		}
		children = append(children, e)
	}

	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.isDir != b.isDir {
			return a.isDir
		}
		la, lb := strings.ToLower(a.name), strings.ToLower(b.name)
		if la != lb {
			return la < lb
		}
		return a.name < b.name
	})
	return children, nil
}

// CreateFolder creates a directory and any missing parents. With existOK
// unset an existing directory is an error.
func (s *Sandbox) CreateFolder(path string, existOK bool) (string, error) {
	dir, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return "", newError(ErrTypeMismatch, "create_folder", path, "Path exists and is not a directory: %s", path)
		}
		if !existOK {
			return "", newError(ErrAlreadyExists, "create_folder", path, "Folder %s already exists.", path)
		}
		return dir, nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", ioError("create_folder", path, err)
	}

	s.logger.Debug("Folder created", zap.String("path", path))
	return dir, nil
}

// DeleteFolder removes a directory. Without recursive the directory must be
// empty; with it the whole subtree is removed.
func (s *Sandbox) DeleteFolder(path string, recursive bool) (string, error) {
	dir, err := s.resolveMutable("delete_folder", path)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", newError(ErrNotFound, "delete_folder", path, "Folder %s does not exist.", path)
	}
	if !info.IsDir() {
		return "", newError(ErrTypeMismatch, "delete_folder", path, "Path %s is not a directory.", path)
	}

	if recursive {
		if err := os.RemoveAll(dir); err != nil {
			return "", ioError("delete_folder", path, err)
		}
		s.logger.Debug("Folder removed recursively", zap.String("path", path))
		return fmt.Sprintf("Recursively deleted %s", path), nil
	}

	empty, err := isEmptyDir(dir)
	if err != nil {
		return "", ioError("delete_folder", path, err)
	}
	if !empty {
		return "", newError(ErrNotEmpty, "delete_folder", path, "Folder %s is not empty. Use recursive=true.", path)
	}
	if err := os.Remove(dir); err != nil {
		return "", ioError("delete_folder", path, err)
	}

	s.logger.Debug("Empty folder removed", zap.String("path", path))
	return fmt.Sprintf("Deleted empty folder %s", path), nil
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
