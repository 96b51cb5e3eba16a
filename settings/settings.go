// Package settings exposes the named configuration knobs consumed by the
// runtime resolution engine. Knobs are boolean or string values, with process
// environment variables as the ultimate backing store. A settings file loaded
// through the config package may supply defaults, but a raw environment
// variable always wins.
package settings

import (
	"os"
	"strings"
)

// Knob names. Each name doubles as the environment variable backing it.
const (
	// UseNode24 forces Node 24 for every handler, regardless of what the
	// handler declares. Newest override wins when several are set.
	UseNode24 = "AGENT_USE_NODE24"
	// UseNode20 forces Node 20 for every handler.
	UseNode20 = "AGENT_USE_NODE20"
	// AllowNode24Handler permits handlers that declare Node 24 to actually get
	// it. When off such handlers silently run on Node 20 instead.
	AllowNode24Handler = "AGENT_ALLOW_NODE24_HANDLER"
	// EnforceNodeEOLPolicy forbids direct selection of end-of-life runtimes,
	// upgrading them to the newest compatible generation instead.
	EnforceNodeEOLPolicy = "AGENT_ENFORCE_NODE_EOL_POLICY"
	// ContainerNode24 starts containers with the bundled Node 24.
	ContainerNode24 = "AGENT_CONTAINER_NODE24"
	// ContainerNode20 starts containers with the bundled Node 20.
	ContainerNode20 = "AGENT_CONTAINER_NODE20"
	// SkipNode24GlibcCheck bypasses the glibc compatibility probe for Node 24,
	// treating the binary as compatible without spawning it.
	SkipNode24GlibcCheck = "AGENT_SKIP_NODE24_GLIBC_CHECK"
	// SkipNode20GlibcCheck bypasses the glibc compatibility probe for Node 20.
	SkipNode20GlibcCheck = "AGENT_SKIP_NODE20_GLIBC_CHECK"
	// ExternalsDirectory is the root folder holding the bundled runtimes.
	ExternalsDirectory = "AGENT_EXTERNALS_DIRECTORY"
	// LogLevel sets the agent log level (debug, info, warn, error).
	LogLevel = "AGENT_LOG_LEVEL"
	// SentryDSN enables sentry error reporting when non-empty.
	SentryDSN = "AGENT_SENTRY_DSN"
)

// A Source exposes named configuration values. Bool returns false for unset
// or unparsable values, String returns the empty string for unset values.
type Source interface {
	Bool(name string) bool
	String(name string) string
}

// ParseBool interprets the loose truthy convention used by agent knobs.
// Anything else, including the empty string, is false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "y", "yes", "on":
		return true
	}
	return false
}

type envSource struct {
	defaults map[string]string
}

// FromEnv returns a Source backed by process environment variables, with
// optional defaults (typically loaded from the agent settings file) consulted
// only when the variable is unset.
func FromEnv(defaults map[string]string) Source {
	return &envSource{defaults: defaults}
}

func (s *envSource) String(name string) string {
	if value, ok := os.LookupEnv(name); ok {
		return value
	}
	return s.defaults[name]
}

func (s *envSource) Bool(name string) bool {
	return ParseBool(s.String(name))
}

// Static is a fixed Source useful in tests and for settings snapshots.
type Static map[string]string

// String returns the value for name, or the empty string.
func (s Static) String(name string) string {
	return s[name]
}

// Bool returns the value for name parsed with ParseBool.
func (s Static) Bool(name string) bool {
	return ParseBool(s[name])
}
