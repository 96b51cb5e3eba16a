// Package runtime provides ambient facilities shared by all agent components:
// the Monitor interface used for logging and error reporting, and the Debug
// helper for development logging.
package runtime
