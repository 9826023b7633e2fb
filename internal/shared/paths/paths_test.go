package paths

import (
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithin(t *testing.T) {
	root := filepath.FromSlash("/srv/sandbox")
	if runtime.GOOS == "windows" {
		root = `C:\srv\sandbox`
	}

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"root itself", root, true},
		{"direct child", filepath.Join(root, "a.txt"), true},
		{"nested child", filepath.Join(root, "a", "b", "c.txt"), true},
		{"name starting with dots", filepath.Join(root, "..hidden"), true},
		{"parent", filepath.Dir(root), false},
		{"sibling with shared prefix", root + "ed", false},
		{"sibling file", filepath.Join(filepath.Dir(root), "other", "x"), false},
		{"escape after clean", filepath.Clean(filepath.Join(root, "..", "etc")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(root, tt.target))
		})
	}
}

func TestJoinCleans(t *testing.T) {
	root := filepath.FromSlash("/srv/sandbox")
	assert.Equal(t, filepath.Join(root, "b"), Join(root, "a/../b"))
	assert.Equal(t, root, Join(root, "."))
	assert.Equal(t, root, Join(root, ""))
	assert.False(t, Within(root, Join(root, "../../etc/passwd")))
}

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute("/etc/passwd"))
	assert.False(t, IsAbsolute("etc/passwd"))
	assert.False(t, IsAbsolute("./a"))
	assert.False(t, IsAbsolute("../a"))
	assert.False(t, IsAbsolute(""))
}

func TestClean(t *testing.T) {
	_, err := Clean("")
	require.Error(t, err)

	abs, err := Clean("relative/dir/./x/..")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, "dir", filepath.Base(abs))
}

func TestRel(t *testing.T) {
	root := filepath.FromSlash("/srv/sandbox")
	assert.Equal(t, filepath.Join("a", "b.txt"), Rel(root, filepath.Join(root, "a", "b.txt")))
	assert.Equal(t, ".", Rel(root, root))
}

func TestCompareOrdersByComponent(t *testing.T) {
	names := []string{"a-c", "a/b", "B", "a"}
	sort.Slice(names, func(i, j int) bool { return Compare(names[i], names[j]) < 0 })
	assert.Equal(t, []string{"B", "a", "a/b", "a-c"}, names)
	assert.Equal(t, 0, Compare("x/y", "x/y"))
}
