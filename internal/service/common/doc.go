// Package common holds helpers shared by the server and the command line tools.
//
// It provides a gRPC client wrapper for the security service with call
// timeouts and retries, and the actor detection used to tag requests with
// the hostname and username of whoever sent them.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
