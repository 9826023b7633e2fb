package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/fsagent/internal/types"
)

func TestSystemInfo(t *testing.T) {
	system := NewSystem("/srv/sandbox")

	result, err := system.Execute(context.Background(), "system.info", nil, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.NotNil(t, result.Data["go_version"])
	assert.NotNil(t, result.Data["cpus"])
	assert.Equal(t, "/srv/sandbox", result.Data["sandbox_root"])
}

func TestSystemTime(t *testing.T) {
	system := NewSystem("")

	result, err := system.Execute(context.Background(), "system.time", nil, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.NotNil(t, result.Data["timestamp"])
	assert.NotNil(t, result.Data["iso"])
}

func TestSystemPing(t *testing.T) {
	system := NewSystem("")

	result, err := system.Execute(context.Background(), "system.ping", nil, &types.Context{RequestID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, true, result.Data["pong"])
	assert.Equal(t, "abc", result.Data["request_id"])
}

func TestSystemUnknownTool(t *testing.T) {
	system := NewSystem("")

	result, err := system.Execute(context.Background(), "system.reboot", nil, nil)
	assert.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unknown_tool", result.Code)
}
