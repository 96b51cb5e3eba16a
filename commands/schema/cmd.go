// Package schema provides a command dumping the agent settings file schema.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/soloinovator/azure-pipelines-agent-sub000/commands"
	"github.com/soloinovator/azure-pipelines-agent-sub000/config"
)

func init() {
	commands.Register("schema", cmd{})
}

type cmd struct{}

func (cmd) Summary() string {
	return "Dump schema for the agent settings file"
}

func (cmd) Usage() string {
	return `
pipelines-agent schema exports the JSON schema document for the agent
settings file, so operators can validate a settings file before use.

usage: pipelines-agent schema [options]

options:
  -f --format <format>          Set the format json or yaml [Default: json].
  -o --output <file>            Write output to a file [Default: -].
`
}

func (cmd) Execute(args map[string]interface{}) bool {
	schema := config.Schema().Schema()

	var data []byte
	var err error
	switch args["--format"].(string) {
	case "json":
		data, err = json.MarshalIndent(schema, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(schema)
	default:
		fmt.Println("Unsupported format: ", args["--format"].(string))
		return false
	}
	if err != nil {
		fmt.Printf("Failed to render schema, error: %s\n", err)
		return false
	}

	output := args["--output"].(string)
	if output == "-" {
		fmt.Println(string(data))
		return true
	}
	if err := os.WriteFile(output, append(data, '\n'), 0644); err != nil {
		fmt.Printf("Failed to write '%s', error: %s\n", output, err)
		return false
	}
	return true
}
