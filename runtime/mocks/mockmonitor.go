// Package mocks contains simple mock implementations of interfaces from the
// runtime package for use in unit tests.
package mocks

import (
	"fmt"
	"sort"
	"strings"

	godebug "runtime/debug"

	"github.com/pborman/uuid"
	agentruntime "github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
)

var mockMonitorLog = agentruntime.Debug("monitor")

// MockMonitor implements runtime.Monitor for use in unit tests.
type MockMonitor struct {
	tags         map[string]string
	prefix       string
	metadata     string
	panicOnError bool
}

// NewMockMonitor returns a Monitor that prints all messages using
// runtime.Debug() meaning that you must set environment variable
// DEBUG='monitor' to see the messages.
//
// If panicOnError is set this will panic if Error() or ReportError() is
// called. This is often useful for testing components that takes a Monitor as
// argument.
func NewMockMonitor(panicOnError bool) *MockMonitor {
	return &MockMonitor{
		panicOnError: panicOnError,
	}
}

func mockMonitorMetadata(tags map[string]string, prefix string) string {
	pairs := make([]string, 0, len(tags)+1)
	for k, v := range tags {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	if prefix != "" {
		pairs = append([]string{"prefix=" + prefix}, pairs...)
	}
	return strings.Join(pairs, " ")
}

// CapturePanic recovers from panic in fn and returns incidentID, if any
func (m *MockMonitor) CapturePanic(fn func()) (incidentID string) {
	defer func() {
		if crash := recover(); crash != nil {
			incidentID = uuid.NewRandom().String()
			trace := godebug.Stack()
			text := fmt.Sprint("Recovered from panic: ", crash, "\nAt:\n", string(trace))
			m.WithTag("incidentId", incidentID).(*MockMonitor).output("PANIC", text)
			if m.panicOnError {
				panic(fmt.Sprintf("Panic: %s", text))
			}
		}
	}()
	fn()
	return
}

// ReportError records an error, and panics if panicOnError was set
func (m *MockMonitor) ReportError(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	text := fmt.Sprint(append([]interface{}{"error: ", err}, message))
	m.WithTag("incidentId", incidentID).(*MockMonitor).output("ERROR-REPORT", text)
	if m.panicOnError {
		panic(fmt.Sprintf("ReportError: %s", text))
	}
	return incidentID
}

// ReportWarning logs a warning
func (m *MockMonitor) ReportWarning(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	text := fmt.Sprint(append([]interface{}{"error: ", err}, message))
	m.WithTag("incidentId", incidentID).(*MockMonitor).output("WARNING-REPORT", text)
	return incidentID
}

func (m *MockMonitor) output(kind string, a ...interface{}) {
	mockMonitorLog("%s: %s (%s)", kind, fmt.Sprint(a...), m.metadata)
}

// Debug writes a debug message
func (m *MockMonitor) Debug(a ...interface{}) { m.output("DEBUG", a...) }

// Debugln writes a debug message
func (m *MockMonitor) Debugln(a ...interface{}) { m.Debug(fmt.Sprintln(a...)) }

// Debugf writes debug message labelled as Debug
func (m *MockMonitor) Debugf(f string, a ...interface{}) { m.Debug(fmt.Sprintf(f, a...)) }

// Print writes debug message labelled as Print
func (m *MockMonitor) Print(a ...interface{}) { m.output("INFO", a...) }

// Println writes debug message labelled as Print
func (m *MockMonitor) Println(a ...interface{}) { m.Print(fmt.Sprintln(a...)) }

// Printf writes debug message labelled as Print
func (m *MockMonitor) Printf(f string, a ...interface{}) { m.Print(fmt.Sprintf(f, a...)) }

// Info writes debug message labelled as Info
func (m *MockMonitor) Info(a ...interface{}) { m.output("INFO", a...) }

// Infoln writes debug message labelled as Info
func (m *MockMonitor) Infoln(a ...interface{}) { m.Info(fmt.Sprintln(a...)) }

// Infof writes debug message labelled as Info
func (m *MockMonitor) Infof(f string, a ...interface{}) { m.Info(fmt.Sprintf(f, a...)) }

// Warn writes debug message labelled as Warn
func (m *MockMonitor) Warn(a ...interface{}) { m.output("WARN", a...) }

// Warnln writes debug message labelled as Warn
func (m *MockMonitor) Warnln(a ...interface{}) { m.Warn(fmt.Sprintln(a...)) }

// Warnf writes debug message labelled as Warn
func (m *MockMonitor) Warnf(f string, a ...interface{}) { m.Warn(fmt.Sprintf(f, a...)) }

// Error writes debug message labelled as Error, and panics if panicOnError was set
func (m *MockMonitor) Error(a ...interface{}) {
	m.output("ERROR", a...)
	if m.panicOnError {
		panic(fmt.Sprint(a...))
	}
}

// Errorln writes debug message labelled as Error, and panics if panicOnError was set
func (m *MockMonitor) Errorln(a ...interface{}) { m.Error(fmt.Sprintln(a...)) }

// Errorf writes debug message labelled as Error, and panics if panicOnError was set
func (m *MockMonitor) Errorf(f string, a ...interface{}) { m.Error(fmt.Sprintf(f, a...)) }

// Panic writes debug message labelled as Panic, and panics
func (m *MockMonitor) Panic(a ...interface{}) {
	m.output("PANIC", a...)
	panic(fmt.Sprint(a...))
}

// Panicln writes debug message labelled as Panic, and panics
func (m *MockMonitor) Panicln(a ...interface{}) { m.Panic(fmt.Sprintln(a...)) }

// Panicf writes debug message labelled as Panic, and panics
func (m *MockMonitor) Panicf(f string, a ...interface{}) { m.Panic(fmt.Sprintf(f, a...)) }

// WithTags creates a new child Monitor with given tags
func (m *MockMonitor) WithTags(tags map[string]string) agentruntime.Monitor {
	allTags := make(map[string]string, len(m.tags)+len(tags))
	for k, v := range m.tags {
		allTags[k] = v
	}
	for k, v := range tags {
		allTags[k] = v
	}
	return &MockMonitor{
		tags:         allTags,
		prefix:       m.prefix,
		metadata:     mockMonitorMetadata(allTags, m.prefix),
		panicOnError: m.panicOnError,
	}
}

// WithTag creates a new child Monitor with given tag
func (m *MockMonitor) WithTag(key, value string) agentruntime.Monitor {
	return m.WithTags(map[string]string{key: value})
}

// WithPrefix creates a new child Monitor with given prefix
func (m *MockMonitor) WithPrefix(prefix string) agentruntime.Monitor {
	completePrefix := prefix
	if m.prefix != "" {
		completePrefix = m.prefix + "." + prefix
	}
	return &MockMonitor{
		tags:         m.tags,
		prefix:       completePrefix,
		metadata:     mockMonitorMetadata(m.tags, completePrefix),
		panicOnError: m.panicOnError,
	}
}
