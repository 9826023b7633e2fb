// Package providers implements the services behind the tool API.
//
// Service providers expose capabilities through a standardized tool-based
// interface. Each provider describes its tools and dispatches calls by id.
//
// Available Providers:
//   - Filesystem: the sandboxed file and folder command set
//   - System: runtime information and a liveness probe
//
// Provider Interface:
//   - Definition(): Returns service metadata and tool definitions
//   - Execute(): Executes a tool with parameters and context
//
// Operation failures are reported in the result (Success false, Error,
// Code); Execute only returns an error when a call cannot be dispatched.
//
// Example Usage:
//
//	sb, _ := filesystem.New("test_folder")
//	fs := providers.NewFilesystem(sb, providers.WithMetrics(metrics))
//	result, err := fs.Execute(ctx, "filesystem.read_file", params, appCtx)
package providers
