package security

import (
	"errors"
	"fmt"
	"strings"
)

// AlarmStatus is the current alarm severity of the premise.
type AlarmStatus uint8

const (
	// NoAlarm means nothing suspicious is going on.
	NoAlarm AlarmStatus = iota
	// PendingAlarm means an intrusion is suspected but not confirmed.
	PendingAlarm
	// Alarm means an intrusion is confirmed.
	Alarm
)

// ArmingStatus is the mode selected by the operator.
type ArmingStatus uint8

const (
	// Disarmed means sensor and image events never raise alarms.
	Disarmed ArmingStatus = iota
	// ArmedHome means the premise is armed while people are inside.
	ArmedHome
	// ArmedAway means the premise is armed while nobody is inside.
	ArmedAway
)

// ErrUnknownStatus is returned when a status name cannot be parsed.
var ErrUnknownStatus = errors.New("unknown status")

//nolint:gochecknoglobals // Lookup tables are read-only.
var (
	alarmStatusNames = map[AlarmStatus]string{
		NoAlarm:      "NO_ALARM",
		PendingAlarm: "PENDING_ALARM",
		Alarm:        "ALARM",
	}

	armingStatusNames = map[ArmingStatus]string{
		Disarmed:  "DISARMED",
		ArmedHome: "ARMED_HOME",
		ArmedAway: "ARMED_AWAY",
	}
)

// String returns the canonical upper-case name of the alarm status.
func (s AlarmStatus) String() string {
	if name, ok := alarmStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("AlarmStatus(%d)", uint8(s))
}

// IsValid reports whether s is one of the known alarm statuses.
func (s AlarmStatus) IsValid() bool {
	_, ok := alarmStatusNames[s]

	return ok
}

// String returns the canonical upper-case name of the arming status.
func (s ArmingStatus) String() string {
	if name, ok := armingStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("ArmingStatus(%d)", uint8(s))
}

// IsValid reports whether s is one of the known arming statuses.
func (s ArmingStatus) IsValid() bool {
	_, ok := armingStatusNames[s]

	return ok
}

// IsArmed reports whether sensor and image events may raise alarms.
func (s ArmingStatus) IsArmed() bool {
	return s == ArmedHome || s == ArmedAway
}

// ParseAlarmStatus converts a name such as "pending-alarm" or "PENDING_ALARM" to an AlarmStatus.
func ParseAlarmStatus(s string) (AlarmStatus, error) {
	key := normalize(s)
	for status, name := range alarmStatusNames {
		if name == key {
			return status, nil
		}
	}

	return NoAlarm, fmt.Errorf("alarm status %q: %w", s, ErrUnknownStatus)
}

// ParseArmingStatus converts a name such as "armed-home" or "ARMED_HOME" to an ArmingStatus.
// The short forms "home" and "away" are accepted too.
func ParseArmingStatus(s string) (ArmingStatus, error) {
	key := normalize(s)
	switch key {
	case "HOME":
		return ArmedHome, nil
	case "AWAY":
		return ArmedAway, nil
	}

	for status, name := range armingStatusNames {
		if name == key {
			return status, nil
		}
	}

	return Disarmed, fmt.Errorf("arming status %q: %w", s, ErrUnknownStatus)
}

// normalize upper-cases the name and folds dashes and spaces into underscores.
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))

	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
