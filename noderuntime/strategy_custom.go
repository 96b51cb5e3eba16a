package noderuntime

// customOverrideStrategy returns an explicit node path verbatim. It has the
// highest priority and bypasses every knob, the end-of-life policy and all
// compatibility checks, for host and container execution alike.
type customOverrideStrategy struct{}

func (customOverrideStrategy) Name() string {
	return "custom-override"
}

func (s customOverrideStrategy) EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	return s.evaluate(ctx)
}

func (s customOverrideStrategy) EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	return s.evaluate(ctx)
}

func (customOverrideStrategy) evaluate(ctx *TaskContext) (*Selection, error) {
	path := ctx.OverridePath()
	if path == "" {
		return nil, nil
	}
	return &Selection{
		Runtime:  NodeCustom,
		Path:     path,
		Reason:   "explicit node path override",
		Override: true,
	}, nil
}
