package runtime

import (
	"fmt"
	"strings"

	raven "github.com/getsentry/raven-go"
	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"
)

// A Monitor is responsible for collecting logs and error reports from the
// agent. Implementations must be safe for concurrent use, as one long-lived
// agent process resolves many tasks over its lifetime.
type Monitor interface {
	// Report error/warning to sentry and write to log, returns incidentId which
	// can be included in task-logs, if relevant.
	ReportError(err error, message ...interface{}) string
	ReportWarning(err error, message ...interface{}) string

	// CapturePanic runs fn recovering and reporting any panic, returning the
	// incidentId for the report, if a panic occurred.
	CapturePanic(fn func()) string

	// Write log messages to system log
	Debug(...interface{})
	Debugln(...interface{})
	Debugf(string, ...interface{})
	Print(...interface{})
	Println(...interface{})
	Printf(string, ...interface{})
	Info(...interface{})
	Infoln(...interface{})
	Infof(string, ...interface{})
	Warn(...interface{})
	Warnln(...interface{})
	Warnf(string, ...interface{})
	Error(...interface{})
	Errorln(...interface{})
	Errorf(string, ...interface{})
	Panic(...interface{})
	Panicln(...interface{})
	Panicf(string, ...interface{})

	// Create child monitor with given tags
	WithTags(tags map[string]string) Monitor
	WithTag(key, value string) Monitor
	// Create child monitor with given prefix (prefix applies to everything)
	WithPrefix(prefix string) Monitor
}

func parseLogLevel(logLevel string) logrus.Level {
	switch strings.ToLower(logLevel) {
	case logrus.DebugLevel.String():
		return logrus.DebugLevel
	case logrus.InfoLevel.String():
		return logrus.InfoLevel
	case logrus.WarnLevel.String():
		return logrus.WarnLevel
	case logrus.ErrorLevel.String():
		return logrus.ErrorLevel
	case logrus.FatalLevel.String():
		return logrus.FatalLevel
	case logrus.PanicLevel.String():
		return logrus.PanicLevel
	default:
		panic(fmt.Sprintf("Unsupported log-level: %s", logLevel))
	}
}

func newEntry(logLevel string, tags map[string]string) *logrus.Entry {
	logger := logrus.New()
	logger.Level = parseLogLevel(logLevel)

	// Convert tags to logrus.Fields
	fields := make(logrus.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}

	return logrus.NewEntry(logger).WithFields(fields)
}

// NewMonitor creates a monitor reporting errors to sentry with the given DSN,
// in addition to logging everything with logrus. If sentryDSN is the empty
// string this degrades to NewLoggingMonitor.
func NewMonitor(project string, sentryDSN string, logLevel string, tags map[string]string) Monitor {
	if sentryDSN == "" {
		return NewLoggingMonitor(logLevel, tags)
	}

	client, err := raven.New(sentryDSN)
	if err != nil {
		panic(fmt.Sprintf("Invalid sentry DSN, error: %s", err))
	}

	return &monitor{
		Entry:   newEntry(logLevel, tags),
		client:  client,
		project: project,
	}
}

type monitor struct {
	*logrus.Entry
	client  *raven.Client
	project string
	tags    map[string]string
	prefix  string
}

func (m *monitor) CapturePanic(fn func()) (incidentID string) {
	defer func() {
		if crash := recover(); crash != nil {
			message := fmt.Sprint(crash)
			incidentID = uuid.NewRandom().String()
			m.Entry.WithField("incidentId", incidentID).WithField("panic", crash).Error("Recovered from panic:\n " + message)
			m.submitError(fmt.Errorf("PANIC: %s", message), message, raven.ERROR, incidentID)
		}
	}()
	fn()
	return
}

func (m *monitor) ReportError(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.Entry.WithField("incidentId", incidentID).WithError(err).Error(message...)
	m.submitError(err, fmt.Sprint(message...), raven.ERROR, incidentID)
	return incidentID
}

func (m *monitor) ReportWarning(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.Entry.WithField("incidentId", incidentID).WithError(err).Warn(message...)
	m.submitError(err, fmt.Sprint(message...), raven.WARNING, incidentID)
	return incidentID
}

func (m *monitor) submitError(err error, message string, level raven.Severity, incidentID string) {
	// Capture stack trace
	exception := raven.NewException(err, raven.NewStacktrace(2, 5, []string{
		"github.com/soloinovator/",
	}))

	// Create error packet
	text := fmt.Sprintf("Error: %s\nMessage: %s", err.Error(), message)
	packet := raven.NewPacket(text, nil, exception)
	packet.Level = level

	// Add incidentID and prefix to tags
	tags := make(map[string]string, len(m.tags)+3)
	for tag, value := range m.tags {
		tags[tag] = value
	}
	tags["incidentId"] = incidentID
	tags["prefix"] = m.prefix
	tags["project"] = m.project

	// Send packet, a sentry failure never propagates beyond a log line,
	// monitoring is best-effort by contract.
	eventID, done := m.client.Capture(packet, tags)
	<-done
	if eventID == "" {
		m.Entry.Warn("Failed to submit error report to sentry")
	}
}

func (m *monitor) WithTags(tags map[string]string) Monitor {
	// Merge tags from monitor and tags
	allTags := make(map[string]string, len(m.tags)+len(tags))
	for k, v := range m.tags {
		allTags[k] = v
	}
	for k, v := range tags {
		allTags[k] = v
	}
	// Construct fields for logrus (just satisfiying the type system)
	fields := make(map[string]interface{}, len(allTags))
	for k, v := range allTags {
		fields[k] = v
	}
	fields["prefix"] = m.prefix // don't allow overwrite "prefix"
	return &monitor{
		Entry:   m.Entry.WithFields(fields),
		client:  m.client,
		project: m.project,
		tags:    allTags,
		prefix:  m.prefix,
	}
}

func (m *monitor) WithTag(key, value string) Monitor {
	return m.WithTags(map[string]string{key: value})
}

func (m *monitor) WithPrefix(prefix string) Monitor {
	completePrefix := prefix
	if m.prefix != "" {
		completePrefix = m.prefix + "." + prefix
	}
	return &monitor{
		Entry:   m.Entry.WithField("prefix", completePrefix),
		client:  m.client,
		project: m.project,
		tags:    m.tags,
		prefix:  completePrefix,
	}
}

type loggingMonitor struct {
	*logrus.Entry
	prefix string
}

// NewLoggingMonitor creates a monitor that just logs everything. This won't
// attempt to send anything to sentry.
func NewLoggingMonitor(logLevel string, tags map[string]string) Monitor {
	return &loggingMonitor{
		Entry: newEntry(logLevel, tags),
	}
}

func (m *loggingMonitor) CapturePanic(fn func()) (incidentID string) {
	defer func() {
		if crash := recover(); crash != nil {
			message := fmt.Sprint(crash)
			incidentID = uuid.NewRandom().String()
			m.Entry.WithField("incidentId", incidentID).WithField("panic", crash).Error("Recovered from panic:\n " + message)
		}
	}()
	fn()
	return
}

func (m *loggingMonitor) ReportError(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.Entry.WithField("incidentId", incidentID).WithError(err).Error(message...)
	return incidentID
}

func (m *loggingMonitor) ReportWarning(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.Entry.WithField("incidentId", incidentID).WithError(err).Warn(message...)
	return incidentID
}

func (m *loggingMonitor) WithTags(tags map[string]string) Monitor {
	// Construct fields for logrus (just satisfiying the type system)
	fields := make(map[string]interface{}, len(tags))
	for k, v := range tags {
		fields[k] = v
	}
	fields["prefix"] = m.prefix // don't allow overwrite "prefix"
	return &loggingMonitor{
		Entry:  m.Entry.WithFields(fields),
		prefix: m.prefix,
	}
}

func (m *loggingMonitor) WithTag(key, value string) Monitor {
	return m.WithTags(map[string]string{key: value})
}

func (m *loggingMonitor) WithPrefix(prefix string) Monitor {
	completePrefix := prefix
	if m.prefix != "" {
		completePrefix = m.prefix + "." + prefix
	}
	return &loggingMonitor{
		Entry:  m.Entry.WithField("prefix", completePrefix),
		prefix: completePrefix,
	}
}
