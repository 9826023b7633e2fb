package providers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsagent/internal/providers/filesystem"
	"github.com/GriffinCanCode/fsagent/internal/types"
)

const filesystemService = "filesystem"

// Filesystem exposes the sandbox command set as a service
type Filesystem struct {
	sandbox      *filesystem.Sandbox
	metrics      *monitoring.Metrics
	logger       *zap.Logger
	maxReadBytes int64
	definition   types.Service
}

// FilesystemOption configures a Filesystem provider
type FilesystemOption func(*Filesystem)

// WithMetrics records every tool call on m.
func WithMetrics(m *monitoring.Metrics) FilesystemOption {
	return func(f *Filesystem) { f.metrics = m }
}

// WithLogger sets the call logger.
func WithLogger(logger *zap.Logger) FilesystemOption {
	return func(f *Filesystem) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithReadLimit sets the read_file ceiling used when a call gives none.
func WithReadLimit(n int64) FilesystemOption {
	return func(f *Filesystem) {
		if n > 0 {
			f.maxReadBytes = n
		}
	}
}

// NewFilesystem creates a filesystem provider
func NewFilesystem(sandbox *filesystem.Sandbox, opts ...FilesystemOption) *Filesystem {
	f := &Filesystem{
		sandbox:      sandbox,
		logger:       zap.NewNop(),
		maxReadBytes: filesystem.DefaultMaxReadBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.definition = filesystemDefinition()
	return f
}

// Sandbox returns the store the provider dispatches to.
func (f *Filesystem) Sandbox() *filesystem.Sandbox {
	return f.sandbox
}

// Definition returns service metadata
func (f *Filesystem) Definition() types.Service {
	return f.definition
}

func filesystemDefinition() types.Service {
	specs := filesystem.Commands()
	tools := make([]types.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, types.Tool{
			ID:          string(spec.ID),
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  parameters(spec),
			Returns:     spec.Returns,
			InputSchema: spec.Schema,
		})
	}

	return types.Service{
		ID:          filesystemService,
		Name:        "Filesystem Service",
		Description: "File and folder operations confined to a sandbox directory",
		Category:    types.CategoryFilesystem,
		Capabilities: []string{
			"list",
			"read",
			"write",
			"append",
			"copy",
			"move",
			"rename",
			"delete",
			"glob",
			"sequence",
			"regex_rename",
			"stat",
		},
		Tools: tools,
	}
}

// parameters flattens the input schema into the parameter list, in
// declaration order.
func parameters(spec filesystem.CommandSpec) []types.Parameter {
	if spec.Schema == nil || spec.Schema.Properties == nil {
		return []types.Parameter{}
	}

	required := make(map[string]bool, len(spec.Schema.Required))
	for _, name := range spec.Schema.Required {
		required[name] = true
	}

	params := make([]types.Parameter, 0, spec.Schema.Properties.Len())
	for pair := spec.Schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		params = append(params, types.Parameter{
			Name:        pair.Key,
			Type:        pair.Value.Type,
			Description: pair.Value.Description,
			Required:    required[pair.Key],
			Default:     pair.Value.Default,
		})
	}
	return params
}

// Execute runs one sandbox command. Operation failures come back as an
// unsuccessful result with a nil error; a non-nil error means the call was
// never dispatched.
func (f *Filesystem) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if err := ctx.Err(); err != nil {
		return reject("cancelled", "%s: %v", toolID, err)
	}

	reqID := requestID(appCtx)
	log := f.logger.With(zap.String("request_id", reqID), zap.String("tool", toolID))

	args, err := filesystem.Decode(filesystem.ToolID(toolID), params)
	if err != nil {
		log.Warn("rejected tool call", zap.Error(err))
		if errors.Is(err, filesystem.ErrUnknownTool) {
			return reject("unknown_tool", "%v", err)
		}
		f.recordError(toolID, "invalid_args")
		return reject("invalid_args", "%v", err)
	}
	if read, ok := args.(*filesystem.ReadFileArgs); ok {
		if _, given := params["max_bytes"]; !given {
			read.MaxBytes = f.maxReadBytes
		}
	}

	timer := monitoring.NewTimer(f.metrics, filesystemService, toolID)
	start := time.Now()
	data, err := args.Run(f.sandbox)
	if err != nil {
		code := filesystem.Code(err)
		timer.Stop("failure")
		f.recordError(toolID, code)
		log.Info("tool call failed",
			zap.String("code", code),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return failure(err, code)
	}

	timer.Stop("success")
	log.Debug("tool call succeeded", zap.Duration("duration", time.Since(start)))
	return success(data)
}

func (f *Filesystem) recordError(toolID, code string) {
	if f.metrics != nil {
		f.metrics.RecordToolError(filesystemService, toolID, code)
	}
}
