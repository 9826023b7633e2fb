package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// charsetSample is how much of a text file is handed to the charset detector.
const charsetSample = 4096

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// formatSize renders n bytes with 1024-based units and no decimals.
func formatSize(n int64) string {
	v := float64(n)
	for _, unit := range sizeUnits {
		if v < 1024 {
			return fmt.Sprintf("%.0f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.0f PB", v)
}

// Stat describes a file or directory inside the sandbox. For files the
// content type is sniffed and, for text types, the charset guessed.
func (s *Sandbox) Stat(path string) (*FileInfo, error) {
	target, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, newError(ErrNotFound, "stat", path, "Path %s does not exist.", path)
	}

	fi := &FileInfo{
		Name:      info.Name(),
		Path:      s.rel(target),
		Size:      info.Size(),
		SizeHuman: formatSize(info.Size()),
		IsDir:     info.IsDir(),
		Mode:      info.Mode().String(),
		Modified:  info.ModTime(),
	}
	if info.IsDir() {
		fi.SizeHuman = "-"
		return fi, nil
	}

	fi.Extension = filepath.Ext(info.Name())
	mtype, err := mimetype.DetectFile(target)
	if err != nil {
		return nil, ioError("stat", path, err)
	}
	fi.MimeType = mtype.String()

	if isText(mtype) && info.Size() > 0 {
		charset, err := detectCharset(target)
		if err != nil {
			return nil, ioError("stat", path, err)
		}
		fi.Charset = charset
	}
	return fi, nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

func detectCharset(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, charsetSample)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	result, err := chardet.NewTextDetector().DetectBest(buf[:n])
	if err != nil || result == nil {
		return "utf-8", nil
	}
	return strings.ToLower(result.Charset), nil
}
