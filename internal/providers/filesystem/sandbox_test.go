package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestSandbox returns a sandbox whose root does not exist yet.
func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	sb, err := New(filepath.Join(t.TempDir(), "sandbox"), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return sb
}

// put writes content to rel inside the sandbox, creating parents.
func put(t *testing.T, sb *Sandbox, rel, content string) string {
	t.Helper()
	p := filepath.Join(sb.Root(), rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func mkdir(t *testing.T, sb *Sandbox, rel string) string {
	t.Helper()
	p := filepath.Join(sb.Root(), rel)
	require.NoError(t, os.MkdirAll(p, 0o755))
	return p
}

func readBack(t *testing.T, sb *Sandbox, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(sb.Root(), rel))
	require.NoError(t, err)
	return string(data)
}

// TestNew tests root normalization and lazy creation
func TestNew(t *testing.T) {
	base := t.TempDir()
	sb, err := New(filepath.Join(base, "x", "..", "sandbox"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "sandbox"), sb.Root())
	assert.NoDirExists(t, sb.Root())

	out, err := sb.List(".", true, DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, "sandbox/", out)
	assert.DirExists(t, sb.Root())
}

// TestNewRejectsEmptyRoot tests that an empty root is refused
func TestNewRejectsEmptyRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

// TestResolve tests the containment guard directly
func TestResolve(t *testing.T) {
	sb := newTestSandbox(t)
	root := sb.Root()

	tests := []struct {
		name string
		rel  string
		want string
		err  bool
	}{
		{"root", ".", root, false},
		{"empty", "", root, false},
		{"nested", "a/b.txt", filepath.Join(root, "a", "b.txt"), false},
		{"dotdot inside", "a/../b.txt", filepath.Join(root, "b.txt"), false},
		{"parent", "..", "", true},
		{"escape", "../x", "", true},
		{"deep escape", "a/b/../../../x", "", true},
		{"sibling prefix", "../sandboxed/x", "", true},
		{"absolute", "/etc/passwd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sb.Resolve(tt.rel)
			if tt.err {
				assert.ErrorIs(t, err, ErrSecurityViolation)
				assert.Equal(t, "security_violation", Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEscapingPathsNeverTouchTheFilesystem tests that every operation rejects
// escaping paths before creating or changing anything
func TestEscapingPathsNeverTouchTheFilesystem(t *testing.T) {
	escapes := []string{"../x", "a/../../x", "sub/../../..", "/etc/passwd", "../sandboxed/y"}

	ops := map[string]func(sb *Sandbox, p string) error{
		"list":          func(sb *Sandbox, p string) error { _, err := sb.List(p, true, 2); return err },
		"read":          func(sb *Sandbox, p string) error { _, err := sb.Read(p, 0); return err },
		"write":         func(sb *Sandbox, p string) error { _, err := sb.Write(p, "x"); return err },
		"append":        func(sb *Sandbox, p string) error { _, err := sb.Append(p, "x"); return err },
		"create_file":   func(sb *Sandbox, p string) error { _, err := sb.CreateFile(p, ""); return err },
		"delete_file":   func(sb *Sandbox, p string) error { _, err := sb.DeleteFile(p); return err },
		"create_folder": func(sb *Sandbox, p string) error { _, err := sb.CreateFolder(p, true); return err },
		"delete_folder": func(sb *Sandbox, p string) error { _, err := sb.DeleteFolder(p, true); return err },
		"copy_src":      func(sb *Sandbox, p string) error { _, err := sb.Copy(p, "ok.txt", true); return err },
		"copy_dst":      func(sb *Sandbox, p string) error { _, err := sb.Copy("ok.txt", p, true); return err },
		"move_src":      func(sb *Sandbox, p string) error { _, err := sb.Move(p, "ok.txt", true); return err },
		"move_dst":      func(sb *Sandbox, p string) error { _, err := sb.Move("ok.txt", p, true); return err },
		"rename_old":    func(sb *Sandbox, p string) error { _, err := sb.Rename(p, "ok.txt"); return err },
		"rename_new":    func(sb *Sandbox, p string) error { _, err := sb.Rename("ok.txt", p); return err },
		"stat":          func(sb *Sandbox, p string) error { _, err := sb.Stat(p); return err },
		"create_files_sequence": func(sb *Sandbox, p string) error {
			_, err := sb.CreateFilesSequence(Sequence{Prefix: p, Start: 1, End: 3}, "")
			return err
		},
		"create_folders_sequence": func(sb *Sandbox, p string) error {
			_, err := sb.CreateFoldersSequence(Sequence{Prefix: p, Start: 1, End: 3})
			return err
		},
		"rename_sequence_old": func(sb *Sandbox, p string) error {
			_, err := sb.RenameFilesSequence(RenameSequence{OldPrefix: p, NewPrefix: "g", Start: 1, End: 2, SkipMissing: true})
			return err
		},
		"rename_sequence_new": func(sb *Sandbox, p string) error {
			_, err := sb.RenameFilesSequence(RenameSequence{OldPrefix: "f", NewPrefix: p, Start: 1, End: 2, SkipMissing: true})
			return err
		},
		"bulk_rename_regex": func(sb *Sandbox, p string) error {
			_, err := sb.BulkRenameRegex(RenameRule{BasePath: p, Pattern: ".*", Replacement: "x"})
			return err
		},
	}

	for name, op := range ops {
		for _, p := range escapes {
			t.Run(name+" "+p, func(t *testing.T) {
				sb := newTestSandbox(t)
				parent := filepath.Dir(sb.Root())

				err := op(sb, p)
				assert.ErrorIs(t, err, ErrSecurityViolation)

				// Not even the lazy root may have been created.
				entries, readErr := os.ReadDir(parent)
				require.NoError(t, readErr)
				assert.Empty(t, entries)
			})
		}
	}
}

// TestRootCannotBeRemovedOrRelocated tests operations that would destroy the root
func TestRootCannotBeRemovedOrRelocated(t *testing.T) {
	sb := newTestSandbox(t)
	put(t, sb, "a.txt", "a")

	_, err := sb.DeleteFolder(".", true)
	assert.ErrorIs(t, err, ErrSecurityViolation)

	_, err = sb.DeleteFile(".")
	assert.ErrorIs(t, err, ErrSecurityViolation)

	_, err = sb.Move(".", "moved", false)
	assert.ErrorIs(t, err, ErrSecurityViolation)

	_, err = sb.Move("a.txt", ".", true)
	assert.ErrorIs(t, err, ErrSecurityViolation)

	_, err = sb.Rename("sub/..", "renamed")
	assert.ErrorIs(t, err, ErrSecurityViolation)

	assert.FileExists(t, filepath.Join(sb.Root(), "a.txt"))
}
