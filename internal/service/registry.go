package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/fsagent/internal/types"
)

// Registry manages service discovery and execution
type Registry struct {
	services sync.Map
}

// Provider interface for service implementations
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// NewRegistry creates a new service registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a service provider
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}

	r.services.Store(def.ID, provider)
	return nil
}

// Unregister removes a service provider
func (r *Registry) Unregister(serviceID string) {
	r.services.Delete(serviceID)
}

// Get retrieves a service by ID
func (r *Registry) Get(serviceID string) (Provider, bool) {
	val, ok := r.services.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// List returns all registered services ordered by id
func (r *Registry) List(category *types.Category) []types.Service {
	var services []types.Service
	r.services.Range(func(_, value interface{}) bool {
		provider := value.(Provider)
		def := provider.Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
		return true
	})
	sort.Slice(services, func(i, j int) bool {
		return services[i].ID < services[j].ID
	})
	return services
}

// Tool finds a tool definition by its full id
func (r *Registry) Tool(toolID string) (types.Tool, bool) {
	serviceID, _, _ := strings.Cut(toolID, ".")
	provider, ok := r.Get(serviceID)
	if !ok {
		return types.Tool{}, false
	}
	for _, tool := range provider.Definition().Tools {
		if tool.ID == toolID {
			return tool, true
		}
	}
	return types.Tool{}, false
}

// Discover finds relevant services for a given intent
func (r *Registry) Discover(intent string, limit int) []types.Service {
	type scoredService struct {
		service types.Service
		score   float64
	}

	intentLower := strings.ToLower(intent)
	var results []scoredService

	r.services.Range(func(_, value interface{}) bool {
		provider := value.(Provider)
		def := provider.Definition()
		score := r.calculateRelevance(intentLower, def)
		if score > 0 {
			results = append(results, scoredService{
				service: def,
				score:   score,
			})
		}
		return true
	})

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].service.ID < results[j].service.ID
	})

	// Return top N
	output := make([]types.Service, 0, limit)
	for i := 0; i < len(results) && i < limit; i++ {
		output = append(output, results[i].service)
	}

	return output
}

// Execute routes a "service.tool" id to its provider
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	parts := strings.SplitN(toolID, ".", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return &types.Result{
			Success: false,
			Error:   stringPtr("invalid tool ID format"),
			Code:    "invalid_tool",
		}, fmt.Errorf("invalid tool ID format: %s", toolID)
	}

	serviceID := parts[0]
	provider, ok := r.Get(serviceID)
	if !ok {
		return &types.Result{
			Success: false,
			Error:   stringPtr(fmt.Sprintf("service not found: %s", serviceID)),
			Code:    "unknown_service",
		}, fmt.Errorf("service not found: %s", serviceID)
	}

	return provider.Execute(ctx, toolID, params, appCtx)
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	var total, totalTools int
	categories := make(map[string]int)

	r.services.Range(func(_, value interface{}) bool {
		provider := value.(Provider)
		def := provider.Definition()
		total++
		totalTools += len(def.Tools)
		categories[string(def.Category)]++
		return true
	})

	return map[string]interface{}{
		"total_services": total,
		"total_tools":    totalTools,
		"categories":     categories,
	}
}

func (r *Registry) calculateRelevance(intent string, service types.Service) float64 {
	score := 0.0

	// Check service name and ID
	if strings.Contains(intent, service.ID) || strings.Contains(intent, strings.ToLower(service.Name)) {
		score += 10.0
	}

	// Check description words
	descWords := strings.Fields(strings.ToLower(service.Description))
	for _, word := range descWords {
		if strings.Contains(intent, word) {
			score += 5.0
		}
	}

	// Check capabilities
	for _, cap := range service.Capabilities {
		capClean := strings.ReplaceAll(strings.ToLower(cap), "_", " ")
		if strings.Contains(intent, capClean) {
			score += 3.0
		}
	}

	// Check tool names, "filesystem.delete_glob" matches "delete glob"
	for _, tool := range service.Tools {
		_, name, _ := strings.Cut(tool.ID, ".")
		if name != "" && strings.Contains(intent, strings.ReplaceAll(name, "_", " ")) {
			score += 4.0
		}
	}

	// Check category
	if strings.Contains(intent, string(service.Category)) {
		score += 2.0
	}

	return score
}

func stringPtr(s string) *string {
	return &s
}
