// Package version exposes build metadata of the home-security binaries.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
// The server logs them on startup and both binaries print them through the
// cobra version subcommand.
package version
