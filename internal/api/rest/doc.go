// Package rest exposes the engine over HTTP with gin.
//
// Read endpoints are cached until the engine reports a change, image uploads
// are rate limited per client IP, and /metrics serves the Prometheus registry.
package rest
