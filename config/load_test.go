package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soloinovator/azure-pipelines-agent-sub000/config"
	_ "github.com/soloinovator/azure-pipelines-agent-sub000/config/env"
	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime/mocks"
	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

func TestLoadSettings(t *testing.T) {
	loaded, err := config.Load([]byte(`
config:
  project: pipelines-agent
  logLevel: debug
  externalsDirectory: /opt/agent/externals
  knobs:
    AGENT_USE_NODE20: "true"
`), mocks.NewMockMonitor(true))
	require.NoError(t, err)

	assert.Equal(t, "pipelines-agent", loaded.Project)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Equal(t, "/opt/agent/externals", loaded.ExternalsDirectory)

	defaults := loaded.Defaults()
	assert.Equal(t, "true", defaults[settings.UseNode20])
	assert.Equal(t, "debug", defaults[settings.LogLevel])
	assert.Equal(t, "/opt/agent/externals", defaults[settings.ExternalsDirectory])
}

func TestLoadDefaultsLogLevel(t *testing.T) {
	loaded, err := config.Load([]byte(`
config:
  project: pipelines-agent
`), mocks.NewMockMonitor(true))
	require.NoError(t, err)
	assert.Equal(t, "info", loaded.LogLevel)
}

func TestLoadAppliesEnvTransform(t *testing.T) {
	t.Setenv("TEST_AGENT_SENTRY_DSN", "https://key@sentry.example.com/1")

	loaded, err := config.Load([]byte(`
transforms:
  - env
config:
  project: pipelines-agent
  sentryDSN:
    $env: TEST_AGENT_SENTRY_DSN
`), mocks.NewMockMonitor(true))
	require.NoError(t, err)
	assert.Equal(t, "https://key@sentry.example.com/1", loaded.SentryDSN)
}

func TestLoadFailsOnMissingEnvVariable(t *testing.T) {
	_, err := config.Load([]byte(`
transforms:
  - env
config:
  project: pipelines-agent
  sentryDSN:
    $env: TEST_AGENT_UNSET_VARIABLE
`), mocks.NewMockMonitor(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_AGENT_UNSET_VARIABLE")
}

func TestLoadRejectsUnknownTransform(t *testing.T) {
	_, err := config.Load([]byte(`
transforms:
  - no-such-transform
config:
  project: pipelines-agent
`), mocks.NewMockMonitor(true))
	require.Error(t, err)
}

func TestLoadRejectsNonObjectConfig(t *testing.T) {
	_, err := config.Load([]byte(`config: 42`), mocks.NewMockMonitor(true))
	require.Error(t, err)
}

func TestLoadIgnoresExtraKeys(t *testing.T) {
	// Extra keys may carry options for transformations, they are filtered out
	// before schema validation
	loaded, err := config.Load([]byte(`
config:
  project: pipelines-agent
  somethingExtra: hello
`), mocks.NewMockMonitor(true))
	require.NoError(t, err)
	assert.Equal(t, "pipelines-agent", loaded.Project)
}
