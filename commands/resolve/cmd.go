// Package resolve provides the resolve command, a command line front end to
// the node runtime resolution engine. It is mainly useful for operators
// debugging why a task got (or didn't get) a given runtime.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/soloinovator/azure-pipelines-agent-sub000/commands"
	"github.com/soloinovator/azure-pipelines-agent-sub000/config"
	"github.com/soloinovator/azure-pipelines-agent-sub000/containerexec"
	"github.com/soloinovator/azure-pipelines-agent-sub000/noderuntime"
	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
	"github.com/soloinovator/azure-pipelines-agent-sub000/telemetry"
)

func init() {
	commands.Register("resolve", cmd{})
}

type cmd struct{}

func (cmd) Summary() string {
	return "Resolve the node runtime for a task handler"
}

func (cmd) Usage() string {
	return `
pipelines-agent resolve picks the node binary that would host the given task
handler, applying override knobs, the end-of-life policy and glibc
compatibility probing exactly as the agent would when running the task.

usage: pipelines-agent resolve [options]

options:
  -c --config <file>           Load agent settings from this YAML file.
     --handler <runtime>       Runtime declared by the handler [default: node20].
     --override-path <path>    Step-level explicit node path.
     --container-id <id>       Resolve for this running container instead of the host.
     --container-os <os>       Container operating system [default: linux].
     --custom-node-path <path> Custom node path from container metadata.
     --mounts <mappings>       Comma-separated volume mounts on the form host:container.
     --docker-endpoint <addr>  Docker daemon endpoint, defaults to the local socket.
     --externals <dir>         Externals directory holding the bundled runtimes.
  -j --json                    Print the selection as JSON.
  -h --help                    Show this screen.
`
}

func (cmd) Execute(args map[string]interface{}) bool {
	monitor, source, err := setup(args)
	if err != nil {
		fmt.Println(err)
		return false
	}

	handler, err := noderuntime.ParseRuntime(args["--handler"].(string))
	if err != nil {
		fmt.Println(err)
		return false
	}

	container, executor, err := containerOptions(args, monitor)
	if err != nil {
		fmt.Println(err)
		return false
	}

	translator := noderuntime.NewExternalsTranslator(externalsDirectory(args, source), goruntime.GOOS)
	resolver := noderuntime.NewResolver(noderuntime.ResolverOptions{
		Monitor:    monitor,
		Telemetry:  telemetry.NewLogPublisher(monitor),
		Settings:   source,
		Translator: translator,
		Executor:   executor,
		Compatibility: noderuntime.NewProber(noderuntime.ProberOptions{
			Monitor:    monitor,
			Settings:   source,
			Translator: translator,
			Cache:      noderuntime.NewCache(),
		}),
	})

	ctx := noderuntime.NewTaskContext(handler, container, stringArg(args, "--override-path"))
	var selection *noderuntime.Selection
	if container != nil {
		selection, err = resolver.ResolveContainer(ctx)
	} else {
		selection, err = resolver.ResolveHost(ctx)
	}
	if err != nil {
		fmt.Println(err)
		return false
	}

	printSelection(selection, args["--json"].(bool))
	return true
}

func setup(args map[string]interface{}) (runtime.Monitor, settings.Source, error) {
	defaults := map[string]string{}
	project := "pipelines-agent"
	if configFile := stringArg(args, "--config"); configFile != "" {
		loaded, err := config.LoadFromFile(configFile, runtime.NewLoggingMonitor("info", nil))
		if err != nil {
			return nil, nil, err
		}
		defaults = loaded.Defaults()
		project = loaded.Project
	}

	source := settings.FromEnv(defaults)
	logLevel := source.String(settings.LogLevel)
	if logLevel == "" {
		logLevel = "info"
	}
	monitor := runtime.NewMonitor(project, source.String(settings.SentryDSN), logLevel, nil)
	return monitor, source, nil
}

func containerOptions(args map[string]interface{}, monitor runtime.Monitor) (*noderuntime.ContainerInfo, containerexec.Executor, error) {
	containerID := stringArg(args, "--container-id")
	if containerID == "" {
		return nil, nil, nil
	}

	descriptor := map[string]interface{}{
		"id": containerID,
		"os": args["--container-os"].(string),
	}
	if path := stringArg(args, "--custom-node-path"); path != "" {
		descriptor["customNodePath"] = path
	}
	if mounts := stringArg(args, "--mounts"); mounts != "" {
		var parsed []interface{}
		for _, mapping := range strings.Split(mounts, ",") {
			parts := strings.SplitN(mapping, ":", 2)
			if len(parts) != 2 {
				return nil, nil, fmt.Errorf("invalid mount mapping: '%s', expected host:container", mapping)
			}
			parsed = append(parsed, map[string]interface{}{
				"hostPath":      parts[0],
				"containerPath": parts[1],
			})
		}
		descriptor["mounts"] = parsed
	}

	container, err := noderuntime.ParseContainerInfo(descriptor)
	if err != nil {
		return nil, nil, err
	}

	executor, err := containerexec.NewDockerExecutor(stringArg(args, "--docker-endpoint"))
	if err != nil {
		monitor.ReportWarning(err, "container runtimes cannot be verified without a docker connection")
		return container, nil, nil
	}
	return container, executor, nil
}

func externalsDirectory(args map[string]interface{}, source settings.Source) string {
	if dir := stringArg(args, "--externals"); dir != "" {
		return dir
	}
	if dir := source.String(settings.ExternalsDirectory); dir != "" {
		return dir
	}
	// Default to the externals folder next to the agent binary
	executable, err := os.Executable()
	if err != nil {
		return "externals"
	}
	return filepath.Join(filepath.Dir(executable), "externals")
}

func printSelection(selection *noderuntime.Selection, formatJSON bool) {
	if formatJSON {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"runtime":  selection.Runtime.String(),
			"path":     selection.Path,
			"strategy": selection.Strategy,
			"reason":   selection.Reason,
			"advisory": selection.Advisory,
			"override": selection.Override,
		}, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Printf("runtime:  %s\n", selection.Runtime)
	fmt.Printf("path:     %s\n", selection.Path)
	fmt.Printf("strategy: %s\n", selection.Strategy)
	fmt.Printf("reason:   %s\n", selection.Reason)
	if selection.Advisory != "" {
		fmt.Printf("warning:  %s\n", selection.Advisory)
	}
}

func stringArg(args map[string]interface{}, name string) string {
	value, _ := args[name].(string)
	return value
}
