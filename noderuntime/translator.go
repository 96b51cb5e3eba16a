package noderuntime

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// A PathTranslator builds concrete binary paths from logical runtimes. Host
// paths depend on the externals layout, container paths additionally on the
// container's volume mounts and operating system.
type PathTranslator interface {
	// HostPath returns the absolute path of the bundled binary for r on the
	// host. Panics for runtimes without a bundled folder.
	HostPath(r Runtime) string
	// ContainerPath translates a host binary path into the corresponding path
	// inside the container, normalized for the container's operating system.
	ContainerPath(hostPath string, container *ContainerInfo) (string, error)
}

type externalsTranslator struct {
	root   string
	hostOS string
}

// NewExternalsTranslator returns a PathTranslator for the standard externals
// layout: <root>/<folder>/bin/node with an .exe suffix on windows hosts.
func NewExternalsTranslator(root string, hostOS string) PathTranslator {
	return &externalsTranslator{root: root, hostOS: hostOS}
}

func (t *externalsTranslator) HostPath(r Runtime) string {
	binary := "node"
	separator := "/"
	if t.hostOS == "windows" {
		binary = "node.exe"
		separator = "\\"
	}
	return strings.Join([]string{t.root, r.Folder(), "bin", binary}, separator)
}

func (t *externalsTranslator) ContainerPath(hostPath string, container *ContainerInfo) (string, error) {
	// Pick the longest mount whose host path prefixes hostPath. A mount of
	// the filesystem root trims to the empty prefix, which is still a match.
	best := -1
	bestLen := -1
	for i, mount := range container.Mounts {
		prefix := strings.TrimRight(mount.HostPath, "/\\")
		if !hasPathPrefix(hostPath, prefix, t.hostOS) {
			continue
		}
		if len(prefix) > bestLen {
			best = i
			bestLen = len(prefix)
		}
	}
	if best == -1 {
		return "", errors.Errorf("host path '%s' is not visible inside container '%s', no volume mount covers it",
			hostPath, container.ID)
	}

	mount := container.Mounts[best]
	remainder := hostPath[bestLen:]
	translated := strings.TrimRight(mount.ContainerPath, "/\\") + remainder
	return normalizeForOS(translated, container.OS), nil
}

func hasPathPrefix(p string, prefix string, hostOS string) bool {
	if hostOS == "windows" {
		// Windows paths compare case-insensitively
		p = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
		prefix = strings.ToLower(strings.ReplaceAll(prefix, "\\", "/"))
	}
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	rest := p[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "\\")
}

// normalizeForOS rewrites separators and the binary extension of p for the
// target operating system.
func normalizeForOS(p string, targetOS string) string {
	if targetOS == "windows" {
		p = strings.ReplaceAll(p, "/", "\\")
		if !strings.HasSuffix(strings.ToLower(p), ".exe") {
			p += ".exe"
		}
		return p
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimSuffix(p, ".exe")
	return path.Clean(p)
}
