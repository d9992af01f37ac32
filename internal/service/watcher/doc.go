// Package watcher polls the security server and logs every change of the
// alarm or arming status. It can stop with ErrAlarmRaised once the alarm
// fires, so scripts can react to the exit code.
package watcher
