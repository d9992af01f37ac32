// Package security implements the gRPC transport for the alarm decision engine.
//
// It converts between wire messages and domain types, maps engine errors to
// gRPC status codes, and calls into a provided engine interface.
package security
