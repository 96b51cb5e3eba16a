package noderuntime

import (
	"strings"
	"sync"

	schematypes "github.com/taskcluster/go-schematypes"
	"github.com/taskcluster/slugid-go/slugid"
)

// A MountMapping maps a host folder into a container.
type MountMapping struct {
	HostPath      string `json:"hostPath"`
	ContainerPath string `json:"containerPath"`
}

// ContainerInfo describes a running task container. The descriptor also
// records the outcome of live in-container exec probes, those results belong
// to the container, not to the host-side compatibility cache.
type ContainerInfo struct {
	// ID is the running container id.
	ID string
	// OS is the container operating system, "linux" or "windows".
	OS string
	// CustomNodePath is an explicit node path from container metadata, it
	// bypasses every knob and policy when non-blank.
	CustomNodePath string
	// Mounts are the volume mappings used to translate host paths into
	// container paths.
	Mounts []MountMapping

	m          sync.Mutex
	execChecks map[Runtime]bool
}

// recordExecCheck stores the outcome of a live exec probe for r.
func (c *ContainerInfo) recordExecCheck(r Runtime, ok bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.execChecks == nil {
		c.execChecks = map[Runtime]bool{}
	}
	c.execChecks[r] = ok
}

// execCheck returns the recorded probe outcome for r, and whether one exists.
func (c *ContainerInfo) execCheck(r Runtime) (ok bool, checked bool) {
	c.m.Lock()
	defer c.m.Unlock()
	ok, checked = c.execChecks[r]
	return
}

// ContainerInfoSchema is the schema for container descriptors arriving as
// untyped task payload.
var ContainerInfoSchema = schematypes.Object{
	Title: "Container Descriptor",
	Properties: schematypes.Properties{
		"id": schematypes.String{
			Title: "Container ID",
		},
		"os": schematypes.StringEnum{
			Options: []string{"linux", "windows"},
		},
		"customNodePath": schematypes.String{
			Title:       "Custom Node Path",
			Description: "Explicit node path inside the container, bypasses runtime resolution.",
		},
		"mounts": schematypes.Array{
			Items: schematypes.Object{
				Properties: schematypes.Properties{
					"hostPath":      schematypes.String{},
					"containerPath": schematypes.String{},
				},
				Required: []string{"hostPath", "containerPath"},
			},
		},
	},
	Required: []string{"id", "os"},
}

// ParseContainerInfo validates payload against ContainerInfoSchema and
// returns the typed descriptor.
func ParseContainerInfo(payload interface{}) (*ContainerInfo, error) {
	var parsed struct {
		ID             string         `json:"id"`
		OS             string         `json:"os"`
		CustomNodePath string         `json:"customNodePath"`
		Mounts         []MountMapping `json:"mounts"`
	}
	if err := schematypes.MustMap(ContainerInfoSchema, payload, &parsed); err != nil {
		return nil, err
	}
	return &ContainerInfo{
		ID:             parsed.ID,
		OS:             parsed.OS,
		CustomNodePath: parsed.CustomNodePath,
		Mounts:         parsed.Mounts,
	}, nil
}

// A TaskContext is an immutable snapshot of what one task declares. It is
// built immediately before resolution and discarded afterwards.
type TaskContext struct {
	// TaskID identifies the resolution in logs and telemetry.
	TaskID string
	// Handler is the runtime generation the handler metadata declares.
	Handler Runtime
	// Container describes the task container, nil for host execution.
	Container *ContainerInfo
	// StepOverridePath is a step-level explicit node path, blank if unset.
	StepOverridePath string
}

// NewTaskContext builds a TaskContext for one resolution.
func NewTaskContext(handler Runtime, container *ContainerInfo, stepOverridePath string) *TaskContext {
	return &TaskContext{
		TaskID:           slugid.Nice(),
		Handler:          handler,
		Container:        container,
		StepOverridePath: stepOverridePath,
	}
}

// OverridePath returns the explicit node path for this context, container
// metadata first, then the step-level override. Empty when neither is set.
func (c *TaskContext) OverridePath() string {
	if c.Container != nil && strings.TrimSpace(c.Container.CustomNodePath) != "" {
		return c.Container.CustomNodePath
	}
	if strings.TrimSpace(c.StepOverridePath) != "" {
		return c.StepOverridePath
	}
	return ""
}
