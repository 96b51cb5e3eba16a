package containerexec

import (
	"bytes"
	"context"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/pkg/errors"

	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
)

var debug = runtime.Debug("containerexec")

const defaultDockerSocket = "unix:///var/run/docker.sock"

// DockerExecutor implements Executor on top of the docker exec API.
type DockerExecutor struct {
	client *docker.Client
}

// NewDockerExecutor returns an Executor talking to the docker daemon at
// endpoint, or the default unix socket if endpoint is empty.
func NewDockerExecutor(endpoint string) (*DockerExecutor, error) {
	if endpoint == "" {
		endpoint = defaultDockerSocket
	}
	client, err := docker.NewClient(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	return &DockerExecutor{client: client}, nil
}

// Exec runs command inside the container identified by containerID, blocking
// until the command exits or ctx is canceled.
func (e *DockerExecutor) Exec(ctx context.Context, containerID string, command []string) (int, []string, error) {
	debug("exec in container %s: %v", containerID, command)

	exec, err := e.client.CreateExec(docker.CreateExecOptions{
		Container:    containerID,
		Cmd:          command,
		AttachStdout: true,
		AttachStderr: true,
		Context:      ctx,
	})
	if err != nil {
		return -1, nil, errors.Wrapf(err, "failed to create exec in container '%s'", containerID)
	}

	var output bytes.Buffer
	err = e.client.StartExec(exec.ID, docker.StartExecOptions{
		OutputStream: &output,
		ErrorStream:  &output,
		Context:      ctx,
	})
	if err != nil {
		return -1, SplitOutputLines(output.String()), errors.Wrapf(err, "failed to start exec in container '%s'", containerID)
	}

	inspect, err := e.client.InspectExec(exec.ID)
	if err != nil {
		return -1, SplitOutputLines(output.String()), errors.Wrapf(err, "failed to inspect exec in container '%s'", containerID)
	}
	if inspect.Running {
		return -1, SplitOutputLines(output.String()), errors.Errorf("exec in container '%s' still running after StartExec returned", containerID)
	}

	debug("exec in container %s exited %d", containerID, inspect.ExitCode)
	return inspect.ExitCode, SplitOutputLines(output.String()), nil
}
