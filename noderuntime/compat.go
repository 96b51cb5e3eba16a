package noderuntime

import (
	"context"
	"os/exec"
	"regexp"
	goruntime "runtime"
	"time"

	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime"
	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

var debug = runtime.Debug("noderuntime")

// Compatibility answers whether a bundled runtime is incompatible with the
// host's C library.
type Compatibility interface {
	// Incompatible returns true if r is known not to run on this host.
	Incompatible(r Runtime) bool
}

// glibcErrorSignature is the loader error printed when a binary requires a
// glibc symbol version the host does not provide. It is the sole positive
// signal of incompatibility, every other probe outcome counts as compatible.
var glibcErrorSignature = regexp.MustCompile(`GLIBC_[0-9]+(\.[0-9]+)*' not found`)

// A Cache memoizes probe results for the process lifetime. Entries are never
// invalidated, a probe result cannot change without replacing the binary or
// the C library, both of which imply an agent restart.
//
// Reads and writes are intentionally unsynchronized: every caller probing the
// same runtime computes the same boolean, so a racing duplicate probe costs
// one extra subprocess and never produces disagreement.
type Cache struct {
	node24 *bool
	node20 *bool
}

// NewCache returns an empty probe cache. One long-lived cache is owned by the
// agent and injected into the Prober, tests create their own to avoid
// cross-test leakage.
func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) get(r Runtime) (incompatible bool, ok bool) {
	var v *bool
	switch r {
	case Node24:
		v = c.node24
	case Node20:
		v = c.node20
	}
	if v == nil {
		return false, false
	}
	return *v, true
}

func (c *Cache) set(r Runtime, incompatible bool) {
	v := incompatible
	switch r {
	case Node24:
		c.node24 = &v
	case Node20:
		c.node20 = &v
	}
}

// DefaultProbeTimeout bounds the version-probe subprocess. A probe that times
// out counts as compatible, never as a hang.
const DefaultProbeTimeout = 30 * time.Second

// ProberOptions holds dependencies for NewProber. Monitor, Settings,
// Translator and Cache are required.
type ProberOptions struct {
	Monitor    runtime.Monitor
	Settings   settings.Source
	Translator PathTranslator
	Cache      *Cache
	// Timeout bounds each probe subprocess, DefaultProbeTimeout if zero.
	Timeout time.Duration
	// GOOS overrides the host operating system, for tests.
	GOOS string
	// Run overrides the probe subprocess spawn, for tests. It returns the
	// combined stdout/stderr of running the binary with a version argument.
	Run func(binary string, timeout time.Duration) (output string, err error)
}

// A Prober determines glibc compatibility of bundled runtimes by spawning
// them with a version argument and scanning the output for the glibc loader
// error signature. Only meaningful on Linux hosts, everywhere else every
// runtime is compatible and nothing is spawned.
type Prober struct {
	monitor    runtime.Monitor
	settings   settings.Source
	translator PathTranslator
	cache      *Cache
	timeout    time.Duration
	goos       string
	run        func(string, time.Duration) (string, error)
}

// NewProber creates a Prober with the given options.
func NewProber(options ProberOptions) *Prober {
	p := &Prober{
		monitor:    options.Monitor,
		settings:   options.Settings,
		translator: options.Translator,
		cache:      options.Cache,
		timeout:    options.Timeout,
		goos:       options.GOOS,
		run:        options.Run,
	}
	if p.timeout == 0 {
		p.timeout = DefaultProbeTimeout
	}
	if p.goos == "" {
		p.goos = goruntime.GOOS
	}
	if p.run == nil {
		p.run = runVersionProbe
	}
	if p.cache == nil {
		panic("noderuntime.NewProber: Cache is required")
	}
	return p
}

var skipProbeKnobs = map[Runtime]string{
	Node24: settings.SkipNode24GlibcCheck,
	Node20: settings.SkipNode20GlibcCheck,
}

// Incompatible reports whether r is known to fail against the host's glibc.
// Results are memoized per runtime for the process lifetime, unless the
// matching skip-knob bypasses the probe entirely.
func (p *Prober) Incompatible(r Runtime) bool {
	knob, probed := skipProbeKnobs[r]
	if !probed {
		// Only the two newest generations carry a glibc floor worth probing
		return false
	}
	if p.goos != "linux" {
		return false
	}
	if p.settings.Bool(knob) {
		debug("glibc check for %s bypassed by %s", r, knob)
		return false
	}

	if incompatible, ok := p.cache.get(r); ok {
		debug("glibc check for %s answered from cache: incompatible=%v", r, incompatible)
		return incompatible
	}

	incompatible := p.probe(r)
	p.cache.set(r, incompatible)
	return incompatible
}

func (p *Prober) probe(r Runtime) bool {
	binary := p.translator.HostPath(r)
	p.monitor.Debugf("probing '%s' for glibc compatibility", binary)

	output, err := p.run(binary, p.timeout)

	// The loader error signature decides, even when the spawn itself failed:
	// an incompatible binary exits non-zero with the signature on stderr.
	if glibcErrorSignature.MatchString(output) {
		p.monitor.Warnf("runtime %s is incompatible with this host's glibc: %s", r, firstLine(output))
		return true
	}
	if err != nil {
		// Inconclusive probes count as compatible, blocking a runtime on
		// ambiguous evidence would break pipelines that would have worked.
		p.monitor.Debugf("glibc probe for %s inconclusive (%s), assuming compatible", r, err)
	}
	return false
}

func runVersionProbe(binary string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "--version")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
