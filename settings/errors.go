package settings

import (
	"errors"
	"fmt"
)

// ErrProhibitedSetting is returned when an agent key is not on the allow-list.
var ErrProhibitedSetting = errors.New("setting is either prohibited or unknown")

// ErrUnknownSetting is returned by Apply for keys outside the tracing/telemetry namespaces.
var ErrUnknownSetting = errors.New("unknown setting")

// SettingError reports which key was rejected.
type SettingError struct {
	Key   string
	cause error
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("configuration [%s]: %v", e.Key, e.cause)
}

func (e *SettingError) Unwrap() error { return e.cause }
