package config

import (
	schematypes "github.com/taskcluster/go-schematypes"

	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

// SettingsSchema is the schema for the 'config' property of the settings file.
var SettingsSchema = schematypes.Object{
	Title: "Agent Settings",
	Description: "Settings for the pipelines agent, including defaults for " +
		"runtime resolution knobs. Environment variables always take " +
		"precedence over values given here.",
	Properties: schematypes.Properties{
		"project": schematypes.String{
			Title:       "Project Name",
			Description: "Project name used to tag error reports.",
		},
		"logLevel": schematypes.StringEnum{
			Options: []string{"debug", "info", "warning", "error"},
		},
		"sentryDSN": schematypes.String{
			Title:       "Sentry DSN",
			Description: "DSN for sentry error reporting, omit to disable.",
		},
		"externalsDirectory": schematypes.String{
			Title:       "Externals Directory",
			Description: "Root folder holding the bundled node runtimes.",
		},
		"knobs": schematypes.Map{
			Title: "Knob Defaults",
			Description: "Default values for runtime resolution knobs, keyed " +
				"by knob name, for example AGENT_USE_NODE24.",
			Values: schematypes.String{},
		},
	},
	Required: []string{"project"},
}

// Schema returns the schema for the complete settings file, including the
// list of transformations to run.
func Schema() schematypes.Object {
	transformations := []string{}
	for name := range Providers() {
		transformations = append(transformations, name)
	}
	return schematypes.Object{
		Title:       "Agent Configuration File",
		Description: `Initial configuration and transformations to run.`,
		Properties: schematypes.Properties{
			"transforms": schematypes.Array{
				Title:       "Configuration Transformations",
				Description: "Ordered list of transformations to run on the config.",
				Items: schematypes.StringEnum{
					Options: transformations,
				},
			},
			"config": SettingsSchema,
		},
		Required: []string{"config"},
	}
}

// Settings is the typed form of a validated settings file 'config' object.
type Settings struct {
	Project            string            `json:"project"`
	LogLevel           string            `json:"logLevel"`
	SentryDSN          string            `json:"sentryDSN"`
	ExternalsDirectory string            `json:"externalsDirectory"`
	Knobs              map[string]string `json:"knobs"`
}

// Defaults flattens the settings into the defaults map consumed by
// settings.FromEnv. Scalar settings are exposed under their knob names so
// everything shares one lookup path.
func (s *Settings) Defaults() map[string]string {
	defaults := make(map[string]string, len(s.Knobs)+3)
	for name, value := range s.Knobs {
		defaults[name] = value
	}
	if s.LogLevel != "" {
		defaults[settings.LogLevel] = s.LogLevel
	}
	if s.SentryDSN != "" {
		defaults[settings.SentryDSN] = s.SentryDSN
	}
	if s.ExternalsDirectory != "" {
		defaults[settings.ExternalsDirectory] = s.ExternalsDirectory
	}
	return defaults
}
