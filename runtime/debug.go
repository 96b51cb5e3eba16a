package runtime

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	debugMutex       sync.Mutex
	lastDebugMessage = time.Now()
	longestDebugName = 0
	nextDebugColor   = 0
	debugColors      = []string{
		"34", // Blue
		"33", // Yellow
		"32", // Green
		"31", // Red
		"35", // Magenta
		"90", // Dark gray
		"93", // Light yellow
		"36", // Cyan
		"92", // Light green
		"91", // Light red
	}
)

// debugPattern matches component names enabled through the DEBUG environment
// variable, using the wildcard/comma convention of github.com/tj/go-debug:
// DEBUG='noderuntime,containerexec' or DEBUG='*'.
var debugPattern = func() *regexp.Regexp {
	value := os.Getenv("DEBUG")
	if value == "" {
		return nil
	}
	value = regexp.QuoteMeta(value)
	value = strings.Replace(value, "\\*", ".*?", -1)
	value = strings.Replace(value, ",", "|", -1)
	return regexp.MustCompile("^(" + value + ")$")
}()

func debugDisabled(string, ...interface{}) {}

// Debug returns a debug(format, args...) function for the named component.
// Messages are written to stderr only when the DEBUG environment variable
// enables the name, otherwise the returned function is a no-op.
//
// Intended for development tracing only, anything worth keeping in production
// goes through a Monitor instead.
func Debug(name string) func(string, ...interface{}) {
	if debugPattern == nil || !debugPattern.MatchString(name) {
		return debugDisabled
	}

	debugMutex.Lock()
	defer debugMutex.Unlock()

	color := debugColors[nextDebugColor%len(debugColors)]
	nextDebugColor++
	if longestDebugName < len(name) {
		longestDebugName = len(name)
	}
	// Pad names so the message columns line up across components
	paddedName := name + strings.Repeat(" ", longestDebugName-len(name))

	return func(format string, args ...interface{}) {
		debugMutex.Lock()
		now := time.Now()
		delay := now.Sub(lastDebugMessage)
		lastDebugMessage = now
		if len(paddedName) != longestDebugName {
			paddedName = name + strings.Repeat(" ", longestDebugName-len(name))
		}
		debugMutex.Unlock()

		line := fmt.Sprintf(" %s \033[%sm\033[1m%s\033[21m\033[0m | ", humanizeNano(delay.Nanoseconds()), color, paddedName)
		line += fmt.Sprintf(format, args...)
		fmt.Fprintln(os.Stderr, line)
	}
}

// humanizeNano renders the delay since the previous debug message, colored by
// magnitude. Credits: github.com/tj/go-debug
func humanizeNano(n int64) string {
	suffix := "ns"
	color := "90" // dark grey
	switch {
	case n > 1000000000:
		n /= 1000000000
		suffix = "s"
		color = "31" // red
	case n > 1000000:
		n /= 1000000
		suffix = "ms"
		if n > 300 {
			color = "33" // yellow
		} else {
			color = "37" // light grey
		}
	case n > 1000:
		n /= 1000
		suffix = "us"
	}

	return fmt.Sprintf("\033[%sm%-6s\033[0m", color, strconv.Itoa(int(n))+suffix)
}
