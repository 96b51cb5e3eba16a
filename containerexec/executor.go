// Package containerexec runs commands inside running containers. The resolver
// uses it to verify that a candidate node binary actually executes inside a
// task container, rather than trusting host-side compatibility state.
package containerexec

import (
	"context"
	"strings"
)

// An Executor runs a command inside a running container and reports the exit
// code together with the captured output lines (stdout and stderr combined).
//
// Implementations must honor cancellation of ctx, a live container can hang
// arbitrarily and callers always bound execution with a timeout.
type Executor interface {
	Exec(ctx context.Context, containerID string, command []string) (exitCode int, output []string, err error)
}

// SplitOutputLines splits captured output into trimmed non-empty lines.
func SplitOutputLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
