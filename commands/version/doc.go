// Package version provides the version command and build-time version
// constants injected with -ldflags.
package version
