package providers

import (
	"context"
	"runtime"
	"time"

	"github.com/GriffinCanCode/fsagent/internal/types"
)

// System provides process information and a liveness probe
type System struct {
	startTime   time.Time
	sandboxRoot string
}

// NewSystem creates a system provider reporting on the given sandbox root
func NewSystem(sandboxRoot string) *System {
	return &System{
		startTime:   time.Now(),
		sandboxRoot: sandboxRoot,
	}
}

// Definition returns service metadata
func (s *System) Definition() types.Service {
	return types.Service{
		ID:          "system",
		Name:        "System Service",
		Description: "Process information and utilities",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"info",
			"monitoring",
		},
		Tools: []types.Tool{
			{
				ID:          "system.info",
				Name:        "System Info",
				Description: "Get runtime and sandbox information",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.time",
				Name:        "Current Time",
				Description: "Get current server time",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.ping",
				Name:        "Ping",
				Description: "Test service availability",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a system operation
func (s *System) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if err := ctx.Err(); err != nil {
		return reject("cancelled", "%s: %v", toolID, err)
	}

	switch toolID {
	case "system.info":
		return s.info()
	case "system.time":
		return s.currentTime()
	case "system.ping":
		return s.ping(appCtx)
	default:
		return reject("unknown_tool", "unknown tool: %s", toolID)
	}
}

func (s *System) info() (*types.Result, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return success(map[string]interface{}{
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"cpus":           runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_alloc":   m.Alloc / 1024 / 1024, // MB
		"memory_sys":     m.Sys / 1024 / 1024,   // MB
		"uptime_seconds": time.Since(s.startTime).Seconds(),
		"sandbox_root":   s.sandboxRoot,
	})
}

func (s *System) currentTime() (*types.Result, error) {
	now := time.Now()
	return success(map[string]interface{}{
		"timestamp": now.Unix(),
		"iso":       now.Format(time.RFC3339),
		"unix_ms":   now.UnixMilli(),
	})
}

func (s *System) ping(appCtx *types.Context) (*types.Result, error) {
	data := map[string]interface{}{
		"pong":      true,
		"timestamp": time.Now().Unix(),
	}
	if appCtx != nil && appCtx.RequestID != "" {
		data["request_id"] = appCtx.RequestID
	}
	return success(data)
}
