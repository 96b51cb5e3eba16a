package config

import (
	"fmt"
	"os"

	schematypes "github.com/taskcluster/go-schematypes"
	yaml "gopkg.in/yaml.v2"

	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
)

// Load configuration from a YAML config document.
func Load(data []byte, monitor runtime.Monitor) (*Settings, error) {
	// Parse config file
	var config interface{}
	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse YAML config, error: %s", err)
	}
	// This fixes obscurities in yaml.Unmarshal where it generates
	// map[interface{}]interface{} instead of map[string]interface{}
	// credits: https://github.com/go-yaml/yaml/issues/139#issuecomment-220072190
	config = convertSimpleJSONTypes(config)

	// Extract transforms and config
	c, ok := config.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("Expected top-level config value to be an object")
	}
	result, ok := c["config"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("Expected 'config' property to be an object")
	}

	// Apply transforms
	if ct, ok := c["transforms"]; ok {
		var transforms []string
		err := schematypes.MustMap(Schema().Properties["transforms"], ct, &transforms)
		if err != nil {
			return nil, fmt.Errorf("'transforms' schema violated, error: %s", err)
		}

		providers := Providers()
		for _, t := range transforms {
			provider, ok := providers[t]
			if !ok {
				return nil, fmt.Errorf("Unknown config transformation: %s", t)
			}
			if err := provider.Transform(result, monitor); err != nil {
				return nil, fmt.Errorf("Config transformation: %s failed error: %s",
					t, err)
			}
		}
	}

	// Filter out keys that aren't in the settings schema, this way extra keys
	// can be used to provide options for the transformations.
	SettingsSchema.Filter(result)

	var s Settings
	if err := schematypes.MustMap(SettingsSchema, result, &s); err != nil {
		return nil, err
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	return &s, nil
}

// LoadFromFile will load configuration options from a YAML file and validate
// against the config file schema, returning an error message explaining what
// went wrong if unsuccessful.
func LoadFromFile(filename string, monitor runtime.Monitor) (*Settings, error) {
	configFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %s", filename, err)
	}

	return Load(configFile, monitor)
}

func convertSimpleJSONTypes(val interface{}) interface{} {
	switch val := val.(type) {
	case []interface{}:
		r := make([]interface{}, len(val))
		for i, v := range val {
			r[i] = convertSimpleJSONTypes(v)
		}
		return r
	case map[interface{}]interface{}:
		r := make(map[string]interface{})
		for k, v := range val {
			s, ok := k.(string)
			if !ok {
				s = fmt.Sprintf("%v", k)
			}
			r[s] = convertSimpleJSONTypes(v)
		}
		return r
	case int:
		return float64(val)
	default:
		return val
	}
}
