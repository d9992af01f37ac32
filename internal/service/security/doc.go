// Package security implements the alarm decision engine.
//
// Service owns the authoritative alarm and arming status (through a
// repository), reacts to sensor activation changes, operator arming changes
// and image classification verdicts, and enforces the transitions between
// NO_ALARM, PENDING_ALARM and ALARM. Every public operation is a critical
// section: it reads the repository, decides, writes back all-or-nothing and
// only then notifies listeners.
package security
