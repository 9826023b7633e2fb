// Package service provides the tool registry that fronts the sandbox providers.
//
// The registry maintains a catalog of service providers and routes
// "service.tool" ids to the provider that owns them.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//
// Discovery Algorithm:
//   - Keyword matching in name/description
//   - Capability and tool name matching
//   - Category bonus for exact matches
//   - Score-based ranking, ties broken by id
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(providers.NewFilesystem(sandbox, metrics, logger))
//	services := registry.Discover("delete glob", 5)
//	result, err := registry.Execute(ctx, "filesystem.read_file", params, appCtx)
package service
