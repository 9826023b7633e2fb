package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsagent/internal/api/middleware"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsagent/internal/service"
	"github.com/GriffinCanCode/fsagent/internal/shared/utils"
	"github.com/GriffinCanCode/fsagent/internal/types"
)

// Version is reported by the status endpoint.
const Version = "0.1.0"

// discoverLimit caps intent discovery results.
const discoverLimit = 5

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Root handles status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "fsagent",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListTools lists services and their tools. With q it ranks services by
// relevance to a free-text intent instead.
func (h *Handlers) ListTools(c *gin.Context) {
	query := c.Query("q")
	if err := utils.ValidateQuery(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query != "" {
		c.JSON(http.StatusOK, gin.H{
			"query":    query,
			"services": h.registry.Discover(query, discoverLimit),
		})
		return
	}

	categoryStr := c.Query("category")
	if err := utils.ValidateCategory(categoryStr, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// GetTool returns one tool definition
func (h *Handlers) GetTool(c *gin.Context) {
	toolID := c.Param("id")
	if err := utils.ValidateToolID(toolID, "tool_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tool, ok := h.registry.Tool(toolID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found: " + toolID})
		return
	}
	c.JSON(http.StatusOK, tool)
}

// ExecuteTool runs a tool. The body is the JSON object of its parameters;
// an empty body means no parameters.
func (h *Handlers) ExecuteTool(c *gin.Context) {
	toolID := c.Param("id")
	if err := utils.ValidateToolID(toolID, "tool_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reqID := middleware.GetRequestID(c)
	if reqID == "" {
		reqID = uuid.NewString()
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxJSONSize)
	var params map[string]interface{}
	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params: " + err.Error()})
		return
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	appCtx := &types.Context{RequestID: reqID}
	if caller := c.GetHeader("X-Caller"); caller != "" {
		appCtx.Caller = &caller
	}

	result, err := h.registry.Execute(c.Request.Context(), toolID, params, appCtx)
	if result == nil {
		h.logger.Error("tool dispatch failed",
			zap.String("request_id", reqID),
			zap.String("tool", toolID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(statusFor(result), result)
}

// statusFor maps a result code onto an HTTP status.
func statusFor(result *types.Result) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Code {
	case "security_violation":
		return http.StatusForbidden
	case "not_found", "unknown_tool", "unknown_service":
		return http.StatusNotFound
	case "already_exists", "type_mismatch", "not_empty":
		return http.StatusConflict
	case "size_limit_exceeded":
		return http.StatusRequestEntityTooLarge
	case "invalid_pattern", "invalid_args", "invalid_tool":
		return http.StatusBadRequest
	case "cancelled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
