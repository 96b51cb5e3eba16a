package noderuntime

import "fmt"

// A Runtime identifies one vintage of the bundled node runtime, or one of the
// two special selections that don't map to a bundled folder.
type Runtime int

// The closed set of runtimes the agent knows about. Order is oldest to
// newest, which the deprecation and fallback logic relies on.
const (
	// NodeLegacy is the original node runtime bundled as 'node'.
	NodeLegacy Runtime = iota
	// Node10 is the node 10 runtime.
	Node10
	// Node16 is the node 16 runtime.
	Node16
	// Node20 is the node 20 runtime.
	Node20
	// Node24 is the node 24 runtime.
	Node24
	// NodeCustom is an explicit binary path supplied by the task or container,
	// it has no bundled folder.
	NodeCustom
	// NodeContainerDefault is whatever 'node' the container image provides,
	// used when the host cannot execute its own bundled binaries inside the
	// container.
	NodeContainerDefault
)

var runtimeFolders = map[Runtime]string{
	NodeLegacy: "node",
	Node10:     "node10",
	Node16:     "node16",
	Node20:     "node20",
	Node24:     "node24",
}

func (r Runtime) String() string {
	switch r {
	case NodeCustom:
		return "custom"
	case NodeContainerDefault:
		return "container-default"
	}
	if folder, ok := runtimeFolders[r]; ok {
		return folder
	}
	return fmt.Sprintf("Runtime(%d)", int(r))
}

// Folder returns the on-disk folder name under the externals directory for a
// bundled runtime. It panics for NodeCustom and NodeContainerDefault, which
// have no bundled folder.
func (r Runtime) Folder() string {
	folder, ok := runtimeFolders[r]
	if !ok {
		panic(fmt.Sprintf("runtime '%s' has no bundled folder", r))
	}
	return folder
}

// Deprecated is true for runtimes past end-of-life. These are only selected
// directly when the end-of-life policy is inactive, and always carry an
// advisory when selected.
func (r Runtime) Deprecated() bool {
	return r == NodeLegacy || r == Node10 || r == Node16
}

// Advisory returns the non-fatal end-of-life advisory for a deprecated
// runtime and the empty string for everything else.
func (r Runtime) Advisory() string {
	if !r.Deprecated() {
		return ""
	}
	return fmt.Sprintf(
		"The '%s' runtime has reached end-of-life and will be removed in a "+
			"future agent release. Update the task to a handler targeting Node 20 "+
			"or later.", r)
}

// ParseRuntime maps a handler type name to a Runtime.
func ParseRuntime(name string) (Runtime, error) {
	for r, folder := range runtimeFolders {
		if folder == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown node runtime: '%s'", name)
}
