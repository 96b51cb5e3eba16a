// Package configenv implements a TransformationProvider that replaces objects
// on the form: {$env: "VAR"} with the value of the environment variable VAR.
package configenv

import (
	"fmt"
	"os"

	"github.com/soloinovator/azure-pipelines-agent-sub000/config"
	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
)

type provider struct{}

func init() {
	config.Register("env", provider{})
}

func (provider) Transform(cfg map[string]interface{}, monitor runtime.Monitor) error {
	return config.ReplaceObjects(cfg, "env", func(val map[string]interface{}) (interface{}, error) {
		name := val["$env"].(string)
		value, ok := os.LookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("environment variable '%s' referenced from config is not set", name)
		}
		return value, nil
	})
}
