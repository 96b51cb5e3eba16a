package noderuntime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPathLinux(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	assert.Equal(t, "/opt/agent/externals/node20/bin/node", translator.HostPath(Node20))
	assert.Equal(t, "/opt/agent/externals/node/bin/node", translator.HostPath(NodeLegacy))
}

func TestHostPathWindows(t *testing.T) {
	translator := NewExternalsTranslator(`C:\agent\externals`, "windows")
	assert.Equal(t, `C:\agent\externals\node24\bin\node.exe`, translator.HostPath(Node24))
}

func TestContainerPathLinuxToLinux(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	container := &ContainerInfo{
		ID: "abc123",
		OS: "linux",
		Mounts: []MountMapping{
			{HostPath: "/opt/agent/externals", ContainerPath: "/azp/externals"},
		},
	}

	path, err := translator.ContainerPath(translator.HostPath(Node16), container)
	require.NoError(t, err)
	assert.Equal(t, "/azp/externals/node16/bin/node", path)
}

func TestContainerPathPicksLongestMount(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	container := &ContainerInfo{
		ID: "abc123",
		OS: "linux",
		Mounts: []MountMapping{
			{HostPath: "/opt/agent", ContainerPath: "/azp"},
			{HostPath: "/opt/agent/externals", ContainerPath: "/azp/externals"},
		},
	}

	path, err := translator.ContainerPath("/opt/agent/externals/node20/bin/node", container)
	require.NoError(t, err)
	assert.Equal(t, "/azp/externals/node20/bin/node", path)
}

func TestContainerPathRootMount(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	container := &ContainerInfo{
		ID: "abc123",
		OS: "linux",
		Mounts: []MountMapping{
			{HostPath: "/", ContainerPath: "/mnt/host"},
		},
	}

	path, err := translator.ContainerPath(translator.HostPath(Node20), container)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/host/opt/agent/externals/node20/bin/node", path)
}

func TestContainerPathRootMountLosesToLongerMount(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	container := &ContainerInfo{
		ID: "abc123",
		OS: "linux",
		Mounts: []MountMapping{
			{HostPath: "/", ContainerPath: "/mnt/host"},
			{HostPath: "/opt/agent/externals", ContainerPath: "/azp/externals"},
		},
	}

	path, err := translator.ContainerPath(translator.HostPath(Node20), container)
	require.NoError(t, err)
	assert.Equal(t, "/azp/externals/node20/bin/node", path)
}

func TestContainerPathWindowsHostToWindowsContainer(t *testing.T) {
	translator := NewExternalsTranslator(`C:\agent\externals`, "windows")
	container := &ContainerInfo{
		ID: "win1",
		OS: "windows",
		Mounts: []MountMapping{
			{HostPath: `C:\agent\externals`, ContainerPath: `C:\azp\externals`},
		},
	}

	path, err := translator.ContainerPath(translator.HostPath(Node20), container)
	require.NoError(t, err)
	assert.Equal(t, `C:\azp\externals\node20\bin\node.exe`, path)
}

func TestContainerPathNormalizesExtensionAndSeparators(t *testing.T) {
	// Windows host paths translated into a linux container lose the .exe
	// suffix and switch to forward slashes
	translator := NewExternalsTranslator(`C:\agent\externals`, "windows")
	container := &ContainerInfo{
		ID: "lin1",
		OS: "linux",
		Mounts: []MountMapping{
			{HostPath: `C:\agent\externals`, ContainerPath: "/azp/externals"},
		},
	}

	path, err := translator.ContainerPath(translator.HostPath(Node16), container)
	require.NoError(t, err)
	assert.Equal(t, "/azp/externals/node16/bin/node", path)
}

func TestContainerPathRejectsPartialComponentMatch(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	container := &ContainerInfo{
		ID: "abc123",
		OS: "linux",
		Mounts: []MountMapping{
			{HostPath: "/opt/agent/ext", ContainerPath: "/azp/ext"},
		},
	}

	// '/opt/agent/ext' must not match '/opt/agent/externals/...'
	_, err := translator.ContainerPath("/opt/agent/externals/node16/bin/node", container)
	assert.Error(t, err)
}

func TestContainerPathWithoutCoveringMount(t *testing.T) {
	translator := NewExternalsTranslator("/opt/agent/externals", "linux")
	container := &ContainerInfo{ID: "abc123", OS: "linux"}

	_, err := translator.ContainerPath(translator.HostPath(Node16), container)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc123")
}
