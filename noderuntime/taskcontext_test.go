package noderuntime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContainerInfo(t *testing.T) {
	container, err := ParseContainerInfo(map[string]interface{}{
		"id":             "abc123",
		"os":             "linux",
		"customNodePath": "/usr/local/bin/node",
		"mounts": []interface{}{
			map[string]interface{}{
				"hostPath":      "/opt/agent/externals",
				"containerPath": "/azp/externals",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", container.ID)
	assert.Equal(t, "linux", container.OS)
	assert.Equal(t, "/usr/local/bin/node", container.CustomNodePath)
	require.Len(t, container.Mounts, 1)
	assert.Equal(t, "/opt/agent/externals", container.Mounts[0].HostPath)
}

func TestParseContainerInfoRejectsBadDescriptors(t *testing.T) {
	_, err := ParseContainerInfo(map[string]interface{}{"id": "abc123"})
	assert.Error(t, err, "os is required")

	_, err = ParseContainerInfo(map[string]interface{}{"id": "abc123", "os": "plan9"})
	assert.Error(t, err, "os must be linux or windows")
}

func TestTaskContextAssignsTaskID(t *testing.T) {
	first := NewTaskContext(Node20, nil, "")
	second := NewTaskContext(Node20, nil, "")
	assert.NotEmpty(t, first.TaskID)
	assert.NotEqual(t, first.TaskID, second.TaskID)
}

func TestOverridePathPrecedence(t *testing.T) {
	ctx := NewTaskContext(Node20, nil, "")
	assert.Equal(t, "", ctx.OverridePath())

	ctx = NewTaskContext(Node20, nil, "/opt/node/bin/node")
	assert.Equal(t, "/opt/node/bin/node", ctx.OverridePath())

	// Container metadata beats the step-level override
	container := &ContainerInfo{ID: "abc123", OS: "linux", CustomNodePath: "/usr/local/bin/node"}
	ctx = NewTaskContext(Node20, container, "/opt/node/bin/node")
	assert.Equal(t, "/usr/local/bin/node", ctx.OverridePath())

	// Whitespace-only values count as unset
	container.CustomNodePath = "   "
	assert.Equal(t, "/opt/node/bin/node", ctx.OverridePath())
}

func TestExecCheckRecording(t *testing.T) {
	container := &ContainerInfo{ID: "abc123", OS: "linux"}

	_, checked := container.execCheck(Node24)
	assert.False(t, checked)

	container.recordExecCheck(Node24, false)
	ok, checked := container.execCheck(Node24)
	assert.True(t, checked)
	assert.False(t, ok)

	container.recordExecCheck(Node20, true)
	ok, checked = container.execCheck(Node20)
	assert.True(t, checked)
	assert.True(t, ok)
}
