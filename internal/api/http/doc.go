// Package http provides the HTTP handlers for the sandbox tool API.
//
// Endpoints:
//   - Status: / and /health
//   - Tools: GET /tools (?category=, ?q= for intent discovery)
//   - Tool: GET /tools/:id (definition), POST /tools/:id (execute)
//
// POST bodies are the JSON object of tool parameters. Responses are
// types.Result values; failed operations map their code onto an HTTP status
// (security_violation 403, not_found 404, conflicts 409, bad input 400).
//
// Example Usage:
//
//	handlers := http.NewHandlers(registry, metrics, logger)
//	router.GET("/health", handlers.Health)
//	router.POST("/tools/:id", handlers.ExecuteTool)
package http
