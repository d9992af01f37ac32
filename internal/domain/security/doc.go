// Package security contains core domain types for the alarm decision engine.
//
// It defines Sensor (a monitored door, window or motion device), AlarmStatus
// (the current severity) and ArmingStatus (the operator-selected mode), with
// Clone helpers to avoid leaking internal references.
package security
