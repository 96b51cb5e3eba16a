package noderuntime

import (
	"fmt"

	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

// deprecatedStrategy selects one of the end-of-life runtimes (node16, node10
// or the legacy node) when the handler declares it directly.
//
// With the end-of-life policy active these strategies always decline, the
// node24 strategy owns the upgrade for blocked handlers and fails hard when
// no safe upgrade exists. The direct-selection branch below is therefore only
// reachable with the policy off, and it always attaches a non-fatal advisory.
// Both paths are kept deliberately, they serve distinct policy states.
type deprecatedStrategy struct {
	runtime  Runtime
	settings settings.Source
	probe    *containerProbe
	hostOS   string
	hostArch string
}

func (s *deprecatedStrategy) Name() string {
	return s.runtime.String()
}

// legacyOnlyHost is true on hosts that cannot run any of the newer bundled
// runtimes, 32-bit ARM being the remaining case.
func (s *deprecatedStrategy) legacyOnlyHost() bool {
	return s.hostOS == "linux" && s.hostArch == "arm"
}

func (s *deprecatedStrategy) EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	if s.settings.Bool(settings.EnforceNodeEOLPolicy) {
		return nil, nil
	}
	if s.runtime != NodeLegacy && s.legacyOnlyHost() {
		// Newer bundles are not shipped for this platform
		return nil, nil
	}

	if ctx.Handler == s.runtime {
		return &Selection{
			Runtime:  s.runtime,
			Reason:   fmt.Sprintf("handler declares %s", s.runtime),
			Advisory: s.runtime.Advisory(),
		}, nil
	}
	if s.runtime == NodeLegacy && s.legacyOnlyHost() {
		return &Selection{
			Runtime:  NodeLegacy,
			Reason:   fmt.Sprintf("host cannot run newer runtimes, substituting legacy node for '%s'", ctx.Handler),
			Advisory: NodeLegacy.Advisory(),
		}, nil
	}
	return nil, nil
}

func (s *deprecatedStrategy) EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	// End-of-life runtimes are off the table in containers too when the
	// policy is active, the container default is no exception.
	if s.settings.Bool(settings.EnforceNodeEOLPolicy) {
		return nil, nil
	}
	// Only node16 participates in container execution, as the bundled default
	// for handlers that got no newer container runtime.
	if s.runtime != Node16 || ctx.Container == nil {
		return nil, nil
	}
	switch ctx.Handler {
	case Node16, Node20, Node24:
	default:
		return nil, nil
	}

	containerPath, err := s.probe.translator.ContainerPath(
		s.probe.translator.HostPath(Node16), ctx.Container)
	if err != nil {
		return nil, err
	}
	return &Selection{
		Runtime:  Node16,
		Path:     containerPath,
		Reason:   "bundled container default",
		Advisory: Node16.Advisory(),
	}, nil
}
