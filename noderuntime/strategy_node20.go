package noderuntime

import (
	"fmt"

	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

// node20Strategy selects the intermediate bundled runtime. Same shape as
// node24Strategy without the secondary enablement gate, and with a one-step
// fallback to Node 16.
type node20Strategy struct {
	settings settings.Source
	probe    *containerProbe
}

func (*node20Strategy) Name() string {
	return "node20"
}

func (s *node20Strategy) EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	switch {
	case s.settings.Bool(settings.UseNode20):
		return resolveIntermediateWithFallback(s.settings, ctx, compat,
			fmt.Sprintf("%s forces Node 20", settings.UseNode20))

	case ctx.Handler == Node20:
		return resolveIntermediateWithFallback(s.settings, ctx, compat, "handler declares node20")
	}
	return nil, nil
}

func (s *node20Strategy) EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	if ctx.Container == nil || !s.settings.Bool(settings.ContainerNode20) {
		return nil, nil
	}
	containerPath, ok := s.probe.validate(ctx.Container, Node20)
	if !ok {
		return nil, nil
	}
	return &Selection{
		Runtime: Node20,
		Path:    containerPath,
		Reason:  fmt.Sprintf("%s starts containers with Node 20", settings.ContainerNode20),
	}, nil
}
