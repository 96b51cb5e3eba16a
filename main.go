// Package main hosts the main function for pipelines-agent.
package main

import (
	"github.com/soloinovator/azure-pipelines-agent-sub000/commands"

	// Subcommands and config transformations register themselves in init().
	_ "github.com/soloinovator/azure-pipelines-agent-sub000/commands/help"
	_ "github.com/soloinovator/azure-pipelines-agent-sub000/commands/resolve"
	_ "github.com/soloinovator/azure-pipelines-agent-sub000/commands/schema"
	_ "github.com/soloinovator/azure-pipelines-agent-sub000/commands/version"
	_ "github.com/soloinovator/azure-pipelines-agent-sub000/config/env"
)

func main() {
	commands.Run(nil)
}
