package noderuntime

import (
	"fmt"
	goruntime "runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/soloinovator/azure-pipelines-agent-sub000/containerexec"
	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
	"github.com/soloinovator/azure-pipelines-agent-sub000/telemetry"
)

// ResolverOptions holds dependencies for NewResolver. Monitor, Settings,
// Translator and Compatibility are required, Telemetry and Executor are
// optional (no records are emitted, container runtimes cannot be verified).
type ResolverOptions struct {
	Monitor       runtime.Monitor
	Telemetry     telemetry.Publisher
	Settings      settings.Source
	Translator    PathTranslator
	Compatibility Compatibility
	Executor      containerexec.Executor
	// ExecTimeout bounds each in-container verification exec,
	// DefaultContainerExecTimeout if zero.
	ExecTimeout time.Duration
	// HostOS/HostArch override the host platform, for tests.
	HostOS   string
	HostArch string
}

// A Resolver picks the node binary hosting a task's script handler. It is
// safe for concurrent use, resolution holds no state beyond the injected
// compatibility cache.
type Resolver struct {
	monitor    runtime.Monitor
	telemetry  telemetry.Publisher
	settings   settings.Source
	translator PathTranslator
	compat     Compatibility
	hostOS     string
	// strategies in fixed priority order, highest first:
	// custom-override, node24, node20, node16, node10, legacy node.
	// Walking this order is the invariant every policy rule builds on, the
	// newest-wins override precedence falls out of it.
	strategies []Strategy
}

// NewResolver wires up the ordered strategy list.
func NewResolver(options ResolverOptions) *Resolver {
	hostOS := options.HostOS
	if hostOS == "" {
		hostOS = goruntime.GOOS
	}
	hostArch := options.HostArch
	if hostArch == "" {
		hostArch = goruntime.GOARCH
	}
	execTimeout := options.ExecTimeout
	if execTimeout == 0 {
		execTimeout = DefaultContainerExecTimeout
	}

	probe := &containerProbe{
		executor:   options.Executor,
		translator: options.Translator,
		monitor:    options.Monitor,
		timeout:    execTimeout,
	}
	newDeprecated := func(r Runtime) *deprecatedStrategy {
		return &deprecatedStrategy{
			runtime:  r,
			settings: options.Settings,
			probe:    probe,
			hostOS:   hostOS,
			hostArch: hostArch,
		}
	}

	return &Resolver{
		monitor:    options.Monitor.WithPrefix("noderuntime"),
		telemetry:  options.Telemetry,
		settings:   options.Settings,
		translator: options.Translator,
		compat:     options.Compatibility,
		hostOS:     hostOS,
		strategies: []Strategy{
			customOverrideStrategy{},
			&node24Strategy{settings: options.Settings, probe: probe},
			&node20Strategy{settings: options.Settings, probe: probe},
			newDeprecated(Node16),
			newDeprecated(Node10),
			newDeprecated(NodeLegacy),
		},
	}
}

// ResolveHost picks the node binary for a task running directly on the host.
func (r *Resolver) ResolveHost(ctx *TaskContext) (*Selection, error) {
	for _, strategy := range r.strategies {
		selection, err := r.evaluate(ctx, strategy, strategy.EvaluateHost)
		if err != nil {
			return nil, err
		}
		if selection == nil {
			continue
		}
		selection.Strategy = strategy.Name()
		if selection.Path == "" {
			selection.Path = r.translator.HostPath(selection.Runtime)
		}
		r.report(ctx, selection, "host")
		return selection, nil
	}
	return nil, &UnresolvableError{Handler: ctx.Handler, Environment: "host"}
}

// ResolveContainer picks the node command for a task running inside the given
// context's container.
func (r *Resolver) ResolveContainer(ctx *TaskContext) (*Selection, error) {
	if ctx.Container == nil {
		return nil, errors.New("container resolution requires a container descriptor on the task context")
	}

	// When the host can never execute its own bundled binaries against the
	// container's operating system, none of the bundled runtimes can serve.
	// Use whatever node the container image provides, no strategy consulted.
	if r.hostOS != ctx.Container.OS {
		selection := &Selection{
			Runtime:  NodeContainerDefault,
			Path:     "node",
			Reason:   fmt.Sprintf("%s host cannot execute its bundled binaries in a %s container", r.hostOS, ctx.Container.OS),
			Strategy: "container-default",
		}
		r.report(ctx, selection, "container")
		return selection, nil
	}

	for _, strategy := range r.strategies {
		selection, err := r.evaluate(ctx, strategy, strategy.EvaluateContainer)
		if err != nil {
			return nil, err
		}
		if selection == nil {
			continue
		}
		selection.Strategy = strategy.Name()
		if selection.Path == "" {
			hostPath := r.translator.HostPath(selection.Runtime)
			selection.Path, err = r.translator.ContainerPath(hostPath, ctx.Container)
			if err != nil {
				return nil, errors.Wrapf(err, "strategy '%s' selected '%s' but its path cannot be translated",
					strategy.Name(), selection.Runtime)
			}
		}
		r.report(ctx, selection, "container")
		return selection, nil
	}
	return nil, &UnresolvableError{Handler: ctx.Handler, Environment: "container"}
}

// evaluate runs one strategy evaluation, demoting everything except policy
// violations to "not applicable" so resolution proceeds to the next strategy.
func (r *Resolver) evaluate(
	ctx *TaskContext, strategy Strategy,
	method func(*TaskContext, Compatibility) (*Selection, error),
) (selection *Selection, err error) {
	defer func() {
		if crash := recover(); crash != nil {
			r.monitor.ReportWarning(fmt.Errorf("panic: %v", crash),
				fmt.Sprintf("strategy '%s' panicked evaluating task %s", strategy.Name(), ctx.TaskID))
			selection, err = nil, nil
		}
	}()

	selection, err = method(ctx, r.compat)
	if err != nil {
		if _, ok := IsPolicyViolationError(err); ok {
			return nil, err
		}
		r.monitor.ReportWarning(err,
			fmt.Sprintf("strategy '%s' failed evaluating task %s, trying next strategy", strategy.Name(), ctx.TaskID))
		return nil, nil
	}
	return selection, nil
}

// report emits a telemetry record for a successful resolution. Telemetry is
// best-effort, a failing publisher never fails resolution.
func (r *Resolver) report(ctx *TaskContext, selection *Selection, environment string) {
	r.monitor.WithTags(map[string]string{
		"taskId":   ctx.TaskID,
		"handler":  ctx.Handler.String(),
		"runtime":  selection.Runtime.String(),
		"strategy": selection.Strategy,
	}).Infof("resolved node runtime for %s execution: %s", environment, selection.Reason)

	if r.telemetry == nil {
		return
	}
	err := r.telemetry.Publish(telemetry.Record{
		Area:    "pipelines",
		Feature: "runtime-resolution",
		Properties: map[string]string{
			"taskId":      ctx.TaskID,
			"runtime":     selection.Runtime.String(),
			"strategy":    selection.Strategy,
			"environment": environment,
			"handler":     ctx.Handler.String(),
			"reason":      selection.Reason,
			"override":    telemetry.FormatBool(selection.Override),
		},
	})
	if err != nil {
		r.monitor.ReportWarning(err, "failed to publish runtime-resolution telemetry record")
	}
}
