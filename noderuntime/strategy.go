package noderuntime

import (
	"context"
	"time"

	"github.com/soloinovator/azure-pipelines-agent-sub000/containerexec"
	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

// A Strategy is a self-contained applicability-and-resolution rule for one
// runtime generation or override.
//
// Both evaluation methods return (nil, nil) when the strategy does not apply
// to the given context, that is the normal "try the next one" outcome, not an
// error. The only error that may terminate resolution is
// *PolicyViolationError, the Resolver logs and swallows everything else so
// one broken strategy never aborts the whole resolution.
type Strategy interface {
	Name() string
	EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error)
	EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error)
}

// DefaultContainerExecTimeout bounds the live in-container exec probe.
const DefaultContainerExecTimeout = 30 * time.Second

// containerProbe verifies a bundled runtime by literally executing it inside
// the running container. Outcomes are recorded on the container descriptor,
// never in the host-side compatibility cache, the container's filesystem and
// libraries differ from the host's.
type containerProbe struct {
	executor   containerexec.Executor
	translator PathTranslator
	monitor    runtime.Monitor
	timeout    time.Duration
}

// validate returns the in-container path for r and whether the binary
// actually runs inside container c.
func (p *containerProbe) validate(c *ContainerInfo, r Runtime) (string, bool) {
	containerPath, err := p.translator.ContainerPath(p.translator.HostPath(r), c)
	if err != nil {
		p.monitor.Debugf("cannot translate %s path into container '%s': %s", r, c.ID, err)
		return "", false
	}

	if ok, checked := c.execCheck(r); checked {
		debug("container '%s' exec check for %s answered from descriptor: ok=%v", c.ID, r, ok)
		return containerPath, ok
	}
	if p.executor == nil {
		p.monitor.Debugf("no container executor configured, cannot verify %s in container '%s'", r, c.ID)
		return containerPath, false
	}

	execCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	exitCode, output, err := p.executor.Exec(execCtx, c.ID, []string{containerPath, "--version"})
	ok := err == nil && exitCode == 0
	c.recordExecCheck(r, ok)
	if !ok {
		p.monitor.Infof("runtime %s does not run inside container '%s' (exit %d, error: %v, output: %v)",
			r, c.ID, exitCode, err, output)
	}
	return containerPath, ok
}

// resolveNewestWithFallback selects Node 24, falling back to strictly older
// generations on glibc incompatibility. The fallback reuses already-collected
// compatibility data through the prober's cache, no candidate is probed
// twice. With the end-of-life policy inactive the floor is Node 16, with it
// active both newer generations being incompatible is a hard policy
// violation.
func resolveNewestWithFallback(s settings.Source, ctx *TaskContext, compat Compatibility, reason string) (*Selection, error) {
	if !compat.Incompatible(Node24) {
		return &Selection{Runtime: Node24, Reason: reason}, nil
	}
	if !compat.Incompatible(Node20) {
		return &Selection{
			Runtime: Node20,
			Reason:  reason + "; Node 24 does not run against this host's glibc",
		}, nil
	}
	if !s.Bool(settings.EnforceNodeEOLPolicy) {
		return &Selection{
			Runtime:  Node16,
			Reason:   reason + "; neither Node 24 nor Node 20 runs against this host's glibc",
			Advisory: Node16.Advisory(),
		}, nil
	}
	return nil, &PolicyViolationError{Handler: ctx.Handler, Knob: settings.SkipNode24GlibcCheck}
}

// resolveIntermediateWithFallback selects Node 20 with a one-step fallback to
// Node 16, subject to the same end-of-life gate as the Node 24 chain.
func resolveIntermediateWithFallback(s settings.Source, ctx *TaskContext, compat Compatibility, reason string) (*Selection, error) {
	if !compat.Incompatible(Node20) {
		return &Selection{Runtime: Node20, Reason: reason}, nil
	}
	if !s.Bool(settings.EnforceNodeEOLPolicy) {
		return &Selection{
			Runtime:  Node16,
			Reason:   reason + "; Node 20 does not run against this host's glibc",
			Advisory: Node16.Advisory(),
		}, nil
	}
	return nil, &PolicyViolationError{Handler: ctx.Handler, Knob: settings.SkipNode20GlibcCheck}
}
