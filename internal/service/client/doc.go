// Package client implements the security-cli commands on top of the gRPC client.
//
// Run opens a session with the configured server and tags calls with the
// local actor. PushArming keeps sending the desired arming status until the
// server confirms it, and the Print helpers render responses for terminals.
package client
