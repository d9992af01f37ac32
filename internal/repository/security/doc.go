// Package security implements persistence for sensors, the alarm status and
// the arming status.
//
// Repository is the narrow contract the alarm engine depends on. The package
// ships an in-memory store, a JSON snapshot file store, a GORM store
// (SQLite or PostgreSQL) and a Redis store; Open picks one from settings.
package security
