package settings

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate() *Dynamic {
	return NewDynamic(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIsPermittedAgentKey(t *testing.T) {
	assert.True(t, IsPermittedAgentKey("service_name"))
	assert.True(t, IsPermittedAgentKey("log_level"))

	for _, forbidden := range []string{"enabled", "recording", "instrument", "config_file", "secret_token", "api_key", "log_file"} {
		assert.False(t, IsPermittedAgentKey(forbidden), forbidden)
	}
}

func TestDynamic_Toggle(t *testing.T) {
	g := newTestGate()
	assert.False(t, g.RecordingEnabled())
	assert.False(t, g.TracingEnabled())

	g.SetRecording(true)
	assert.True(t, g.RecordingEnabled())
	v, ok := g.AgentSetting("recording")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	g.SetTracing(true)
	assert.True(t, g.TracingEnabled())
	v, _ = g.AgentSetting("instrument")
	assert.Equal(t, "true", v)

	g.SetRecording(false)
	assert.False(t, g.RecordingEnabled())
}

func TestDynamic_Apply(t *testing.T) {
	g := newTestGate()

	var seen []Snapshot
	g.OnChange(func(s Snapshot) { seen = append(seen, s) })

	err := g.Apply(map[string]string{
		KeyRecording:                  "true",
		KeyTracing:                    "false",
		KeyNamesInclude:               "scan*, pull",
		"tracing.apm.agent.log_level": "debug",
	})
	require.NoError(t, err)

	assert.True(t, g.RecordingEnabled())
	assert.False(t, g.TracingEnabled())

	snap := g.Snapshot()
	assert.Equal(t, []string{"scan*", "pull"}, snap.NamesInclude)
	assert.Equal(t, DefaultSanitizeFieldNames, snap.SanitizeFieldNames)
	assert.Equal(t, "debug", snap.Agent["log_level"])

	require.Len(t, seen, 1)
	assert.True(t, seen[0].Recording)
}

func TestDynamic_ApplyRejectsProhibited(t *testing.T) {
	g := newTestGate()

	err := g.Apply(map[string]string{
		KeyRecording:                  "true",
		"tracing.apm.agent.recording": "false",
		"tracing.apm.agent.log_level": "warn",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProhibitedSetting)

	var se *SettingError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "tracing.apm.agent.recording", se.Key)

	// Nothing from the rejected batch was applied.
	assert.False(t, g.RecordingEnabled())
	_, ok := g.AgentSetting("log_level")
	assert.False(t, ok)
}

func TestDynamic_ApplyErrors(t *testing.T) {
	g := newTestGate()

	assert.ErrorIs(t, g.Apply(map[string]string{"cluster.name": "x"}), ErrUnknownSetting)
	assert.Error(t, g.Apply(map[string]string{KeyTracing: "maybe"}))
}

func TestDynamic_ClearAgentSetting(t *testing.T) {
	g := newTestGate()
	require.NoError(t, g.Apply(map[string]string{"tracing.apm.agent.service_name": "scanner"}))
	v, ok := g.AgentSetting("service_name")
	require.True(t, ok)
	assert.Equal(t, "scanner", v)

	require.NoError(t, g.Apply(map[string]string{"tracing.apm.agent.service_name": ""}))
	_, ok = g.AgentSetting("service_name")
	assert.False(t, ok)
}

func TestStatic(t *testing.T) {
	var g Gate = Static{Recording: true}
	assert.True(t, g.RecordingEnabled())
	assert.False(t, g.TracingEnabled())
	assert.True(t, g.IsPermitted("hostname"))
	assert.True(t, Default.RecordingEnabled())
}
