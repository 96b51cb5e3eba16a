package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	for _, value := range []string{"true", "TRUE", "True", "1", "y", "Y", "yes", "on", " true "} {
		assert.True(t, ParseBool(value), "'%s' should parse as true", value)
	}
	for _, value := range []string{"", "false", "0", "n", "no", "off", "2", "enabled"} {
		assert.False(t, ParseBool(value), "'%s' should parse as false", value)
	}
}

func TestFromEnvReadsEnvironment(t *testing.T) {
	t.Setenv(UseNode24, "true")
	source := FromEnv(nil)

	assert.True(t, source.Bool(UseNode24))
	assert.Equal(t, "true", source.String(UseNode24))
	assert.False(t, source.Bool(UseNode20))
	assert.Equal(t, "", source.String(UseNode20))
}

func TestFromEnvDefaultsLoseToEnvironment(t *testing.T) {
	t.Setenv(EnforceNodeEOLPolicy, "false")
	source := FromEnv(map[string]string{
		EnforceNodeEOLPolicy: "true",
		ExternalsDirectory:   "/opt/agent/externals",
	})

	// Environment beats the file-provided default, even when falsy
	assert.False(t, source.Bool(EnforceNodeEOLPolicy))
	// Unset variables fall back to the default
	assert.Equal(t, "/opt/agent/externals", source.String(ExternalsDirectory))
}

func TestFromEnvEmptyValueStillWins(t *testing.T) {
	t.Setenv(SentryDSN, "")
	source := FromEnv(map[string]string{SentryDSN: "https://key@sentry.example.com/1"})

	// A set-but-empty variable is an explicit value, not an unset one
	assert.Equal(t, "", source.String(SentryDSN))
}

func TestStaticSource(t *testing.T) {
	source := Static{
		UseNode20: "yes",
		LogLevel:  "debug",
	}

	assert.True(t, source.Bool(UseNode20))
	assert.Equal(t, "debug", source.String(LogLevel))
	assert.False(t, source.Bool(UseNode24))
}
