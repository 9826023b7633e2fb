package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/fsagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsagent/internal/providers/filesystem"
	"github.com/GriffinCanCode/fsagent/internal/types"
)

func newTestFilesystem(t *testing.T, opts ...FilesystemOption) (*Filesystem, *monitoring.Metrics, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "sandbox")
	sb, err := filesystem.New(root)
	require.NoError(t, err)

	metrics := monitoring.NewMetrics()
	opts = append([]FilesystemOption{WithMetrics(metrics), WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewFilesystem(sb, opts...), metrics, root
}

// TestFilesystemDefinition tests tool metadata derived from the command set
func TestFilesystemDefinition(t *testing.T) {
	fs, _, _ := newTestFilesystem(t)
	def := fs.Definition()

	assert.Equal(t, "filesystem", def.ID)
	assert.Equal(t, types.CategoryFilesystem, def.Category)
	require.Len(t, def.Tools, len(filesystem.Commands()))

	var read *types.Tool
	for i := range def.Tools {
		if def.Tools[i].ID == "filesystem.read_file" {
			read = &def.Tools[i]
		}
	}
	require.NotNil(t, read)
	assert.NotNil(t, read.InputSchema)
	require.Len(t, read.Parameters, 2)
	assert.Equal(t, "path", read.Parameters[0].Name)
	assert.Equal(t, "string", read.Parameters[0].Type)
	assert.True(t, read.Parameters[0].Required)
	assert.Equal(t, "max_bytes", read.Parameters[1].Name)
	assert.Equal(t, "integer", read.Parameters[1].Type)
	assert.False(t, read.Parameters[1].Required)
	assert.NotNil(t, read.Parameters[1].Default)
}

// TestFilesystemExecute tests a write followed by a read through the provider
func TestFilesystemExecute(t *testing.T) {
	fs, metrics, root := newTestFilesystem(t)
	ctx := context.Background()

	result, err := fs.Execute(ctx, "filesystem.write_file", map[string]interface{}{
		"path": "notes/a.txt", "content": "hello",
	}, &types.Context{RequestID: "req-1"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(root, "notes", "a.txt"), result.Data["output"])

	result, err = fs.Execute(ctx, "filesystem.read_file", map[string]interface{}{"path": "notes/a.txt"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "hello", result.Data["content"])

	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.ToolCalls.WithLabelValues("filesystem", "filesystem.read_file", "success")))
}

// TestFilesystemExecuteFailure tests that operation errors become results
func TestFilesystemExecuteFailure(t *testing.T) {
	fs, metrics, _ := newTestFilesystem(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		tool   string
		params map[string]interface{}
		code   string
	}{
		{"missing file", "filesystem.read_file", map[string]interface{}{"path": "nope.txt"}, "not_found"},
		{"escape", "filesystem.write_file", map[string]interface{}{"path": "../x", "content": ""}, "security_violation"},
		{"bad regex", "filesystem.bulk_rename_regex", map[string]interface{}{
			"base_path": ".", "pattern": "(", "replacement": "",
		}, "invalid_pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := fs.Execute(ctx, tt.tool, tt.params, nil)
			require.NoError(t, err)
			assert.False(t, result.Success)
			require.NotNil(t, result.Error)
			assert.Equal(t, tt.code, result.Code)
		})
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.SecurityViolations.WithLabelValues("filesystem.write_file")))
}

// TestFilesystemExecuteRejects tests calls that are never dispatched
func TestFilesystemExecuteRejects(t *testing.T) {
	fs, _, root := newTestFilesystem(t)

	result, err := fs.Execute(context.Background(), "filesystem.format_disk", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, "unknown_tool", result.Code)

	result, err = fs.Execute(context.Background(), "filesystem.write_file", map[string]interface{}{"path": "a"}, nil)
	assert.ErrorIs(t, err, filesystem.ErrInvalidArgs)
	assert.Equal(t, "invalid_args", result.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err = fs.Execute(ctx, "filesystem.create_folder", map[string]interface{}{"path": "d"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "cancelled", result.Code)

	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr))
}

// TestFilesystemReadLimit tests the configured read ceiling and its override
func TestFilesystemReadLimit(t *testing.T) {
	fs, _, root := newTestFilesystem(t, WithReadLimit(4))
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), []byte("0123456789"), 0o644))

	result, err := fs.Execute(context.Background(), "filesystem.read_file", map[string]interface{}{"path": "big.txt"}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "size_limit_exceeded", result.Code)

	result, err = fs.Execute(context.Background(), "filesystem.read_file", map[string]interface{}{
		"path": "big.txt", "max_bytes": 100,
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "0123456789", result.Data["content"])

	result, err = fs.Execute(context.Background(), "filesystem.read_file", map[string]interface{}{
		"path": "big.txt", "max_bytes": 0,
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "size_limit_exceeded", result.Code)
}
