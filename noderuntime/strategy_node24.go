package noderuntime

import (
	"fmt"

	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

// node24Strategy selects the newest bundled runtime. Besides serving handlers
// that declare node24, it owns the upgrade path for handlers blocked by the
// end-of-life policy.
type node24Strategy struct {
	settings settings.Source
	probe    *containerProbe
}

func (*node24Strategy) Name() string {
	return "node24"
}

func (s *node24Strategy) EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	switch {
	case s.settings.Bool(settings.UseNode24):
		return resolveNewestWithFallback(s.settings, ctx, compat,
			fmt.Sprintf("%s forces the newest runtime", settings.UseNode24))

	case ctx.Handler == Node24:
		if !s.settings.Bool(settings.AllowNode24Handler) {
			// Downgrade one generation rather than declining, handlers get
			// node24 only once the operator opts in.
			return resolveIntermediateWithFallback(s.settings, ctx, compat,
				fmt.Sprintf("handler declares node24 but %s is not set, using Node 20",
					settings.AllowNode24Handler))
		}
		return resolveNewestWithFallback(s.settings, ctx, compat, "handler declares node24")

	case s.settings.Bool(settings.EnforceNodeEOLPolicy) && ctx.Handler.Deprecated():
		return resolveNewestWithFallback(s.settings, ctx, compat,
			fmt.Sprintf("handler declares end-of-life runtime '%s', upgraded by the node end-of-life policy",
				ctx.Handler))
	}
	return nil, nil
}

func (s *node24Strategy) EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	if ctx.Container == nil || !s.settings.Bool(settings.ContainerNode24) {
		return nil, nil
	}
	containerPath, ok := s.probe.validate(ctx.Container, Node24)
	if !ok {
		return nil, nil
	}
	return &Selection{
		Runtime: Node24,
		Path:    containerPath,
		Reason:  fmt.Sprintf("%s starts containers with Node 24", settings.ContainerNode24),
	}, nil
}
