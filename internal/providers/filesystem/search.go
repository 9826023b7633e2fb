package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsagent/internal/shared/paths"
)

// GlobReport lists the files removed by DeleteGlob, relative to the root.
type GlobReport struct {
	Deleted []string `json:"deleted"`
}

func (r *GlobReport) String() string {
	if len(r.Deleted) == 0 {
		return "No files matched."
	}
	return fmt.Sprintf("Deleted %d files.", len(r.Deleted))
}

// DeleteGlob removes every file under the root matching pattern. The
// pattern supports ** for recursive matching. Directories are never removed
// and a symlink match removes the link, not its target. An empty match set
// is reported, not returned as an error.
func (s *Sandbox) DeleteGlob(pattern string) (*GlobReport, error) {
	if paths.IsAbsolute(pattern) {
		return nil, s.violation(pattern, "", "patterns must be relative to the sandbox root. Got: %s", pattern)
	}
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, newError(ErrInvalidPattern, "delete_glob", pattern, "Invalid glob pattern: %s", pattern)
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	// Matches are relative to the root; the root path is never a pattern.
	matches, err := doublestar.Glob(os.DirFS(s.root), pattern)
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, newError(ErrInvalidPattern, "delete_glob", pattern, "Invalid glob pattern: %s", pattern)
		}
		return nil, ioError("delete_glob", pattern, err)
	}

	var targets []string
	for _, m := range matches {
		full := paths.Join(s.root, filepath.FromSlash(m))
		if !paths.Within(s.root, full) {
			s.logger.Warn("Glob match outside sandbox skipped", zap.String("pattern", pattern), zap.String("match", m))
			continue
		}
		if !isFile(full) {
			continue
		}
		targets = append(targets, full)
	}

	report := &GlobReport{}
	for _, t := range targets {
		if err := os.Remove(t); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return report, ioError("delete_glob", s.rel(t), err)
		}
		report.Deleted = append(report.Deleted, s.rel(t))
	}

	s.logger.Debug("Glob delete finished", zap.String("pattern", pattern), zap.Int("deleted", len(report.Deleted)))
	return report, nil
}

// RenameRule is a regex substitution applied to the names of files under
// BasePath. Only the final path element changes.
type RenameRule struct {
	BasePath       string
	Pattern        string
	Replacement    string
	IncludeSubdirs bool
	TestOnly       bool
}

// BulkRenameReport lists planned (Preview) or applied renames.
type BulkRenameReport struct {
	Preview bool         `json:"preview"`
	Changes []RenamePair `json:"changes"`
}

func (r *BulkRenameReport) String() string {
	if len(r.Changes) == 0 {
		return "No matches."
	}
	header := "Renamed:\n"
	if r.Preview {
		header = "Preview (no changes):\n"
	}
	lines := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		lines[i] = c.String()
	}
	return header + strings.Join(lines, "\n")
}

type renamePlan struct {
	pair     RenamePair
	from, to string
}

// BulkRenameRegex renames every file under rule.BasePath whose name changes
// under the substitution. Files are visited in sorted path order. The full
// plan is computed and validated before the first rename: an escaping or
// malformed derived name rejects the call, and with TestOnly unset an
// existing or duplicated target fails it without renaming anything.
func (s *Sandbox) BulkRenameRegex(rule RenameRule) (*BulkRenameReport, error) {
	base, err := s.Resolve(rule.BasePath)
	if err != nil {
		return nil, err
	}
	rx, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return nil, newError(ErrInvalidPattern, "bulk_rename_regex", rule.Pattern, "Invalid regex %q: %v", rule.Pattern, err)
	}
	replacement, err := translateReplacement(rx, rule.Replacement)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, newError(ErrNotFound, "bulk_rename_regex", rule.BasePath, "Base path %s does not exist.", rule.BasePath)
	}
	if !info.IsDir() {
		return nil, newError(ErrTypeMismatch, "bulk_rename_regex", rule.BasePath, "Base path %s is not a directory.", rule.BasePath)
	}

	files, err := listFiles(base, rule.IncludeSubdirs)
	if err != nil {
		return nil, ioError("bulk_rename_regex", rule.BasePath, err)
	}

	var plan []renamePlan
	for _, from := range files {
		name := filepath.Base(from)
		newName := rx.ReplaceAllString(name, replacement)
		if newName == name {
			continue
		}
		if newName == "" || newName == "." || newName == ".." || strings.ContainsAny(newName, `/\`) {
			return nil, newError(ErrInvalidPattern, "bulk_rename_regex", s.rel(from),
				"Substitution turns %s into invalid file name %q", s.rel(from), newName)
		}

		relTo := filepath.Join(filepath.Dir(s.rel(from)), newName)
		to, err := s.Resolve(relTo)
		if err != nil {
			return nil, err
		}
		plan = append(plan, renamePlan{
			pair: RenamePair{Old: s.rel(from), New: s.rel(to)},
			from: from,
			to:   to,
		})
	}

	report := &BulkRenameReport{Preview: rule.TestOnly}
	if rule.TestOnly {
		for _, p := range plan {
			report.Changes = append(report.Changes, p.pair)
		}
		return report, nil
	}

	targets := make(map[string]struct{}, len(plan))
	for _, p := range plan {
		if _, dup := targets[p.to]; dup {
			return nil, newError(ErrAlreadyExists, "bulk_rename_regex", p.pair.New, "Target already exists: %s", p.pair.New)
		}
		targets[p.to] = struct{}{}
		if exists(p.to) {
			return nil, newError(ErrAlreadyExists, "bulk_rename_regex", p.pair.New, "Target already exists: %s", p.pair.New)
		}
	}

	for _, p := range plan {
		if err := os.Rename(p.from, p.to); err != nil {
			return report, ioError("bulk_rename_regex", p.pair.Old, err)
		}
		report.Changes = append(report.Changes, p.pair)
	}

	s.logger.Debug("Bulk rename applied",
		zap.String("base", rule.BasePath),
		zap.String("pattern", rule.Pattern),
		zap.Int("renamed", len(report.Changes)),
	)
	return report, nil
}

// listFiles returns the regular files (following symlinks) under base in
// component-wise sorted order.
func listFiles(base string, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := os.ReadDir(base)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			p := filepath.Join(base, e.Name())
			if isFile(p) {
				files = append(files, p)
			}
		}
	} else {
		var mu sync.Mutex
		conf := fastwalk.Config{Follow: false}
		err := fastwalk.Walk(&conf, base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, matching how they would
				// be invisible to a plain recursive glob.
				return nil
			}
			if d.IsDir() || !isFile(p) {
				return nil
			}
			mu.Lock()
			files = append(files, p)
			mu.Unlock()
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return paths.Compare(files[i], files[j]) < 0
	})
	return files, nil
}

// translateReplacement rewrites a replacement using \N and \g<name>
// group references into Go's expansion syntax. A literal $ stays literal,
// \\ is a backslash and any other backslash sequence is kept as written.
// References to groups rx does not define fail with ErrInvalidPattern.
func translateReplacement(rx *regexp.Regexp, repl string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			b.WriteString("$$")
			continue
		case c != '\\' || i+1 == len(repl):
			b.WriteByte(c)
			continue
		}

		next := repl[i+1]
		switch {
		case next == '\\':
			b.WriteByte('\\')
			i++
		case next >= '1' && next <= '9':
			j := i + 2
			if j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			ref, err := groupRef(rx, repl[i+1:j])
			if err != nil {
				return "", err
			}
			b.WriteString(ref)
			i = j - 1
		case next == 'g' && i+2 < len(repl) && repl[i+2] == '<':
			end := strings.IndexByte(repl[i+3:], '>')
			if end < 0 {
				return "", newError(ErrInvalidPattern, "bulk_rename_regex", repl, "Missing > in group reference: %s", repl)
			}
			ref, err := groupRef(rx, repl[i+3:i+3+end])
			if err != nil {
				return "", err
			}
			b.WriteString(ref)
			i += 3 + end
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// groupRef validates a group number or name against rx and returns its
// braced expansion.
func groupRef(rx *regexp.Regexp, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n > rx.NumSubexp() {
			return "", newError(ErrInvalidPattern, "bulk_rename_regex", ref, "Invalid group reference %s: pattern has %d groups.", ref, rx.NumSubexp())
		}
		return "${" + strconv.Itoa(n) + "}", nil
	}
	if ref == "" || rx.SubexpIndex(ref) < 0 {
		return "", newError(ErrInvalidPattern, "bulk_rename_regex", ref, "Unknown group name %q.", ref)
	}
	return "${" + ref + "}", nil
}
