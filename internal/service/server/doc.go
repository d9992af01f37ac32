// Package server runs the security-server process.
//
// Run loads the configuration, opens the configured repository, builds the
// alarm decision engine and serves it over gRPC, plus the optional HTTP API
// and MQTT bridge. Metrics and the HTTP response cache follow the engine
// through listeners.
package server
