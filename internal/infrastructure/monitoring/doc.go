/*
Package monitoring provides metrics collection for the sandbox service.

# Overview

Metrics live on a private Prometheus registry owned by each Metrics value,
tracking HTTP requests, tool calls and sandbox guard rejections.

# Features

- HTTP request metrics (latency, throughput, size)
- Tool call metrics (duration, status, error codes)
- Security violation counter per tool
- Process and Go runtime collectors, uptime gauge

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "filesystem", "filesystem.read_file")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
