package noderuntime

import "fmt"

// A Selection is the outcome of a successful resolution. Exactly one is
// produced per resolution, it is consumed immediately by the caller to build
// the launch command.
type Selection struct {
	// Runtime is the resolved runtime generation.
	Runtime Runtime
	// Path is the resolved binary path. Empty until the Resolver finalizes it,
	// except for explicit overrides and container selections which carry their
	// path from the start.
	Path string
	// Reason explains why this runtime was chosen.
	Reason string
	// Advisory carries a non-fatal end-of-life warning, when the selected
	// runtime is deprecated.
	Advisory string
	// Override is true when an explicit path bypassed the normal policy.
	Override bool
	// Strategy names the strategy that produced the selection, filled in by
	// the Resolver.
	Strategy string
}

// A PolicyViolationError is returned when the end-of-life policy blocks the
// declared handler runtime and no safe upgrade remains. It is terminal, the
// agent must not silently substitute a binary known to be broken.
type PolicyViolationError struct {
	// Handler is the runtime the task handler declared.
	Handler Runtime
	// Knob names the override knob an operator can set to get past the block.
	Knob string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf(
		"The '%s' handler runtime is blocked by the node end-of-life policy "+
			"and no newer runtime is compatible with this host, set %s to bypass "+
			"the compatibility check", e.Handler, e.Knob)
}

// IsPolicyViolationError casts err to *PolicyViolationError.
func IsPolicyViolationError(err error) (e *PolicyViolationError, ok bool) {
	e, ok = err.(*PolicyViolationError)
	return
}

// An UnresolvableError is returned when no strategy matched the task context.
// It is distinct from PolicyViolationError, nothing was blocked, there was
// simply nothing applicable.
type UnresolvableError struct {
	// Handler is the runtime the task handler declared.
	Handler Runtime
	// Environment is "host" or "container".
	Environment string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("no compatible node runtime found for the '%s' handler (%s execution)",
		e.Handler, e.Environment)
}

// IsUnresolvableError casts err to *UnresolvableError.
func IsUnresolvableError(err error) (e *UnresolvableError, ok bool) {
	e, ok = err.(*UnresolvableError)
	return
}
