// Package config loads the agent settings file. A settings file is a YAML
// document with two top-level properties: 'transforms', an ordered list of
// transformations to apply, and 'config', the settings object itself.
// Transformations are registered TransformationProviders, such as the 'env'
// transform which replaces {$env: "VAR"} objects with the value of the
// environment variable VAR.
package config
