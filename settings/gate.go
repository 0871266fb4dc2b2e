package settings

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	apmPrefix   = "tracing.apm."
	agentPrefix = apmPrefix + "agent."

	KeyRecording          = "telemetry.metrics.enabled"
	KeyTracing            = apmPrefix + "enabled"
	KeyNamesInclude       = apmPrefix + "names.include"
	KeyNamesExclude       = apmPrefix + "names.exclude"
	KeySanitizeFieldNames = apmPrefix + "sanitize_field_names"
)

// DefaultSanitizeFieldNames are the field-name patterns redacted from traces unless overridden.
var DefaultSanitizeFieldNames = []string{
	"password",
	"passwd",
	"pwd",
	"secret",
	"*key",
	"*token*",
	"*session*",
	"*credit*",
	"*card*",
	"*auth*",
	"*principal*",
	"set-cookie",
}

// Gate supplies the dynamic signals an operator consults but does not own.
// Implementations must be safe for concurrent use; callers read values lazily.
type Gate interface {
	// RecordingEnabled reports whether detailed status snapshots should be recorded.
	RecordingEnabled() bool
	// TracingEnabled reports whether per-page tracing is on.
	TracingEnabled() bool
	// IsPermitted reports whether an agent configuration key may be set.
	IsPermitted(key string) bool
}

// Static is a Gate with fixed values.
type Static struct {
	Recording bool
	Tracing   bool
}

func (s Static) RecordingEnabled() bool      { return s.Recording }
func (s Static) TracingEnabled() bool        { return s.Tracing }
func (s Static) IsPermitted(key string) bool { return IsPermittedAgentKey(key) }

// Default is the gate used when none is configured: recording on, tracing off.
var Default Gate = Static{Recording: true}

// Snapshot is a point-in-time copy of a Dynamic gate's state.
type Snapshot struct {
	Recording          bool
	Tracing            bool
	NamesInclude       []string
	NamesExclude       []string
	SanitizeFieldNames []string
	Agent              map[string]string
}

// Dynamic is a Gate whose flags can be toggled at runtime.
type Dynamic struct {
	recording atomic.Bool
	tracing   atomic.Bool

	mu        sync.RWMutex
	include   []string
	exclude   []string
	sanitize  []string
	agent     map[string]string
	listeners []func(Snapshot)

	logger *slog.Logger
}

// NewDynamic creates a Dynamic gate with both flags off.
// If logger is nil, slog.Default is used.
func NewDynamic(logger *slog.Logger) *Dynamic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dynamic{
		sanitize: slices.Clone(DefaultSanitizeFieldNames),
		agent:    make(map[string]string),
		logger:   logger,
	}
}

// RecordingEnabled implements Gate.
func (d *Dynamic) RecordingEnabled() bool { return d.recording.Load() }

// TracingEnabled implements Gate.
func (d *Dynamic) TracingEnabled() bool { return d.tracing.Load() }

// IsPermitted implements Gate.
func (d *Dynamic) IsPermitted(key string) bool { return IsPermittedAgentKey(key) }

// SetRecording toggles the recording flag and mirrors it into the agent "recording" property.
func (d *Dynamic) SetRecording(enabled bool) {
	d.recording.Store(enabled)
	d.SetAgentSetting("recording", strconv.FormatBool(enabled))
}

// SetTracing toggles the tracing flag and mirrors it into the agent "instrument" property.
func (d *Dynamic) SetTracing(enabled bool) {
	d.tracing.Store(enabled)
	d.SetAgentSetting("instrument", strconv.FormatBool(enabled))
}

// SetAgentSetting sets an agent property, or clears it when value is empty.
// The allow-list is not consulted; use Apply for user-supplied keys.
func (d *Dynamic) SetAgentSetting(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if value == "" {
		d.logger.Debug("clearing agent setting", "key", key)
		delete(d.agent, key)
		return
	}
	d.logger.Debug("setting agent setting", "key", key, "value", value)
	d.agent[key] = value
}

// AgentSetting returns the current value of an agent property.
func (d *Dynamic) AgentSetting(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.agent[key]
	return v, ok
}

// OnChange registers fn to be called with the new state after every Apply.
func (d *Dynamic) OnChange(fn func(Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Snapshot returns a copy of the gate's state.
func (d *Dynamic) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

func (d *Dynamic) snapshotLocked() Snapshot {
	return Snapshot{
		Recording:          d.recording.Load(),
		Tracing:            d.tracing.Load(),
		NamesInclude:       slices.Clone(d.include),
		NamesExclude:       slices.Clone(d.exclude),
		SanitizeFieldNames: slices.Clone(d.sanitize),
		Agent:              maps.Clone(d.agent),
	}
}

// Apply validates and applies a batch of settings. Either every key is applied
// or, on the first invalid key, none is.
func (d *Dynamic) Apply(settings map[string]string) error {
	keys := slices.Sorted(maps.Keys(settings))

	type update func()
	updates := make([]update, 0, len(keys))

	for _, key := range keys {
		value := settings[key]
		switch {
		case key == KeyRecording:
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			updates = append(updates, func() { d.SetRecording(b) })
		case key == KeyTracing:
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			updates = append(updates, func() { d.SetTracing(b) })
		case key == KeyNamesInclude:
			list := splitList(value)
			updates = append(updates, func() { d.setList(&d.include, list) })
		case key == KeyNamesExclude:
			list := splitList(value)
			updates = append(updates, func() { d.setList(&d.exclude, list) })
		case key == KeySanitizeFieldNames:
			list := splitList(value)
			if value == "" {
				list = slices.Clone(DefaultSanitizeFieldNames)
			}
			updates = append(updates, func() { d.setList(&d.sanitize, list) })
		case strings.HasPrefix(key, agentPrefix):
			parts := strings.Split(key, ".")
			agentKey := parts[len(parts)-1]
			if !d.IsPermitted(agentKey) {
				return &SettingError{Key: key, cause: ErrProhibitedSetting}
			}
			updates = append(updates, func() { d.SetAgentSetting(agentKey, value) })
		default:
			return &SettingError{Key: key, cause: ErrUnknownSetting}
		}
	}

	for _, u := range updates {
		u()
	}

	d.mu.RLock()
	snap := d.snapshotLocked()
	listeners := slices.Clone(d.listeners)
	d.mu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

func (d *Dynamic) setList(dst *[]string, list []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	*dst = list
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &SettingError{Key: key, cause: fmt.Errorf("invalid boolean %q", value)}
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
