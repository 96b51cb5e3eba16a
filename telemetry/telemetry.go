// Package telemetry publishes fire-and-forget usage records. Records are flat
// key/value maps tagged with an area/feature pair. Publishing is best-effort
// by contract, a failing publisher must never affect the operation that
// emitted the record; callers swallow errors after logging a warning.
package telemetry

import (
	"sort"
	"strconv"
	"sync"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
)

var debug = runtime.Debug("telemetry")

// A Record is one telemetry data point.
type Record struct {
	Area       string
	Feature    string
	Properties map[string]string
}

// A Publisher accepts telemetry records.
type Publisher interface {
	Publish(record Record) error
}

var (
	hostSnapshotOnce  sync.Once
	hostSnapshotCache map[string]string
)

// HostSnapshot returns static facts about the host, computed once per
// process, for enriching telemetry records.
func HostSnapshot() map[string]string {
	hostSnapshotOnce.Do(func() {
		hostSnapshotCache = map[string]string{}
		info, err := host.Info()
		if err != nil {
			debug("failed to read host info: %s", err)
			return
		}
		hostSnapshotCache["os"] = info.OS
		hostSnapshotCache["platform"] = info.Platform
		hostSnapshotCache["platformVersion"] = info.PlatformVersion
		hostSnapshotCache["kernelArch"] = info.KernelArch
	})
	// Copy so callers can't mutate the cache
	snapshot := make(map[string]string, len(hostSnapshotCache))
	for k, v := range hostSnapshotCache {
		snapshot[k] = v
	}
	return snapshot
}

type logPublisher struct {
	monitor runtime.Monitor
}

// NewLogPublisher returns a Publisher that writes records to the given
// monitor at info level, enriched with the host snapshot.
func NewLogPublisher(monitor runtime.Monitor) Publisher {
	return &logPublisher{monitor: monitor.WithPrefix("telemetry")}
}

func (p *logPublisher) Publish(record Record) error {
	tags := make(map[string]string, len(record.Properties)+2+4)
	for k, v := range record.Properties {
		tags[k] = v
	}
	for k, v := range HostSnapshot() {
		tags[k] = v
	}
	tags["area"] = record.Area
	tags["feature"] = record.Feature
	p.monitor.WithTags(tags).Info("telemetry record published")
	return nil
}

// A CapturingPublisher records everything published to it, for tests.
type CapturingPublisher struct {
	m       sync.Mutex
	records []Record
	Err     error // returned from Publish when non-nil
}

// Publish stores the record.
func (p *CapturingPublisher) Publish(record Record) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.records = append(p.records, record)
	return nil
}

// Records returns a copy of the records published so far.
func (p *CapturingPublisher) Records() []Record {
	p.m.Lock()
	defer p.m.Unlock()
	return append([]Record{}, p.records...)
}

// FormatBool renders a boolean property value.
func FormatBool(value bool) string {
	return strconv.FormatBool(value)
}

// SortedKeys returns the property keys of a record in sorted order, mostly
// useful for deterministic rendering.
func SortedKeys(record Record) []string {
	keys := make([]string, 0, len(record.Properties))
	for k := range record.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
