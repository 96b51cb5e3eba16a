// Package noderuntime picks the concrete node binary that hosts a task's
// script handler.
//
// Candidates span multiple runtime generations. The declared handler
// requirement, operator override knobs, the node end-of-life policy and, on
// Linux, actual glibc compatibility of the candidate binary all feed into the
// decision. Resolution is driven by an ordered list of strategies walked by
// the Resolver, with separate entry points for tasks running directly on the
// host and tasks running inside a container.
package noderuntime
