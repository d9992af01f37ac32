// Package integration runs the security server in-process and drives it
// through the gRPC client, the CLI helpers, the watcher and the HTTP API.
package integration
