// Package server wires the sandbox, providers, middleware and routes into
// one HTTP server.
//
// Server Lifecycle:
//  1. Build the sandbox and register providers (NewRegistry)
//  2. Set up middleware: recovery, request ids, access log, metrics, CORS,
//     global rate limit
//  3. Register routes and wrap the router with gzip compression
//  4. Serve until the context is cancelled, then shut down gracefully
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
