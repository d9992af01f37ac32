// Package metrics exports the engine state as Prometheus gauges.
package metrics
