// Package app wires the cohort report service together and manages its
// lifecycle. It loads configuration, initializes logging and metrics,
// constructs the report pipeline (uploads client, cohort engine, CSV
// exporter, webhook emitter) and mounts the HTTP API.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize structured logging
//	3. Wire the report service and its dependencies
//	4. Set up HTTP routes and middleware
//	5. Configure and start the HTTP server
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM, draining active requests before the
// server exits. All initialization errors are returned to the caller;
// the package never calls os.Exit() directly.
package app
