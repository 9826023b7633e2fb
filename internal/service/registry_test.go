package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/fsagent/internal/types"
)

type mockProvider struct {
	mock.Mock
	id       string
	category types.Category
}

func newMockProvider(id string) *mockProvider {
	return &mockProvider{id: id, category: types.CategoryFilesystem}
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:           m.id,
		Name:         "Mock Service",
		Description:  "A mock service for testing",
		Category:     m.category,
		Capabilities: []string{"read", "write"},
		Tools: []types.Tool{
			{
				ID:          m.id + ".list_dir",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "string",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	args := m.Called(ctx, toolID, params, appCtx)
	result, _ := args.Get(0).(*types.Result)
	return result, args.Error(1)
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockProvider("test")))

	_, ok := r.Get("test")
	assert.True(t, ok)

	assert.Error(t, r.Register(newMockProvider("")))

	r.Unregister("test")
	_, ok = r.Get("test")
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockProvider("test2")))
	require.NoError(t, r.Register(newMockProvider("test1")))
	sys := newMockProvider("sys")
	sys.category = types.CategorySystem
	require.NoError(t, r.Register(sys))

	services := r.List(nil)
	require.Len(t, services, 3)
	assert.Equal(t, "sys", services[0].ID)
	assert.Equal(t, "test1", services[1].ID)

	cat := types.CategoryFilesystem
	filtered := r.List(&cat)
	assert.Len(t, filtered, 2)
}

func TestTool(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockProvider("fs")))

	tool, ok := r.Tool("fs.list_dir")
	require.True(t, ok)
	assert.Equal(t, "Test Tool", tool.Name)

	_, ok = r.Tool("fs.missing")
	assert.False(t, ok)
	_, ok = r.Tool("nope.list_dir")
	assert.False(t, ok)
}

func TestDiscover(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockProvider("storage")))
	require.NoError(t, r.Register(newMockProvider("other")))

	results := r.Discover("storage read write", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "storage", results[0].ID)

	assert.Len(t, r.Discover("storage read write", 1), 1)
	assert.Empty(t, r.Discover("zzz", 5))
}

func TestDiscoverMatchesToolNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockProvider("fs")))

	results := r.Discover("please list dir", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "fs", results[0].ID)
}

func TestExecute(t *testing.T) {
	r := NewRegistry()
	p := newMockProvider("test")
	require.NoError(t, r.Register(p))

	ctx := context.Background()
	params := map[string]interface{}{"path": "."}
	p.On("Execute", ctx, "test.list_dir", params, (*types.Context)(nil)).
		Return(&types.Result{Success: true, Data: map[string]interface{}{"output": "ok"}}, nil).
		Once()

	result, err := r.Execute(ctx, "test.list_dir", params, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ok", result.Data["output"])
	p.AssertExpectations(t)
}

func TestExecuteRoutingErrors(t *testing.T) {
	r := NewRegistry()
	p := newMockProvider("test")
	require.NoError(t, r.Register(p))

	tests := []struct {
		name   string
		toolID string
		code   string
	}{
		{"no separator", "test", "invalid_tool"},
		{"empty tool", "test.", "invalid_tool"},
		{"empty service", ".list_dir", "invalid_tool"},
		{"unknown service", "missing.list_dir", "unknown_service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Execute(context.Background(), tt.toolID, nil, nil)
			assert.Error(t, err)
			require.NotNil(t, result)
			assert.False(t, result.Success)
			assert.Equal(t, tt.code, result.Code)
		})
	}

	p.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStats(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMockProvider("test1")))
	require.NoError(t, r.Register(newMockProvider("test2")))

	stats := r.Stats()
	assert.Equal(t, 2, stats["total_services"])
	assert.Equal(t, 2, stats["total_tools"])
	assert.Equal(t, map[string]int{"filesystem": 2}, stats["categories"])
}
