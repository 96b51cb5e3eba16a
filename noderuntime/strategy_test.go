package noderuntime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soloinovator/azure-pipelines-agent-sub000/runtime/mocks"
	"github.com/soloinovator/azure-pipelines-agent-sub000/settings"
)

func newArmResolver(s settings.Static) *Resolver {
	return NewResolver(ResolverOptions{
		Monitor:       mocks.NewMockMonitor(false),
		Settings:      s,
		Translator:    NewExternalsTranslator("/opt/agent/externals", "linux"),
		Compatibility: fakeCompat{},
		HostOS:        "linux",
		HostArch:      "arm",
	})
}

func TestArmHostSubstitutesLegacyNode(t *testing.T) {
	// 32-bit ARM ships only the legacy node bundle, every handler gets it
	resolver := newArmResolver(settings.Static{})

	selection, err := resolver.ResolveHost(NewTaskContext(Node16, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, NodeLegacy, selection.Runtime)
	assert.Equal(t, "node", selection.Strategy)
	assert.Equal(t, "/opt/agent/externals/node/bin/node", selection.Path)
	assert.Contains(t, selection.Reason, "node16")
}

func TestArmHostStillHonorsDeclaredNode20(t *testing.T) {
	resolver := newArmResolver(settings.Static{})

	selection, err := resolver.ResolveHost(NewTaskContext(Node20, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, Node20, selection.Runtime)
}

func TestNode10DirectSelection(t *testing.T) {
	resolver := newResolver(resolverFixture{})

	selection, err := resolver.ResolveHost(NewTaskContext(Node10, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, Node10, selection.Runtime)
	assert.Equal(t, "node10", selection.Strategy)
	assert.Contains(t, selection.Advisory, "end-of-life")
}

type panickingStrategy struct{}

func (panickingStrategy) Name() string { return "panicking" }
func (panickingStrategy) EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	panic("boom")
}
func (panickingStrategy) EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	panic("boom")
}

type erroringStrategy struct {
	err error
}

func (erroringStrategy) Name() string { return "erroring" }
func (s erroringStrategy) EvaluateHost(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	return nil, s.err
}
func (s erroringStrategy) EvaluateContainer(ctx *TaskContext, compat Compatibility) (*Selection, error) {
	return nil, s.err
}

func TestPanickingStrategyIsDemotedToNotApplicable(t *testing.T) {
	resolver := newResolver(resolverFixture{})
	resolver.strategies = append([]Strategy{panickingStrategy{}}, resolver.strategies...)

	selection, err := resolver.ResolveHost(NewTaskContext(Node16, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, Node16, selection.Runtime)
}

func TestFailingStrategyIsDemotedToNotApplicable(t *testing.T) {
	resolver := newResolver(resolverFixture{})
	resolver.strategies = append([]Strategy{
		erroringStrategy{err: errors.New("transient fault")},
	}, resolver.strategies...)

	selection, err := resolver.ResolveHost(NewTaskContext(Node16, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, Node16, selection.Runtime)
}

func TestPolicyViolationStopsResolutionImmediately(t *testing.T) {
	resolver := newResolver(resolverFixture{})
	resolver.strategies = append([]Strategy{
		erroringStrategy{err: &PolicyViolationError{Handler: Node16, Knob: settings.SkipNode24GlibcCheck}},
	}, resolver.strategies...)

	selection, err := resolver.ResolveHost(NewTaskContext(Node16, nil, ""))
	require.Error(t, err)
	assert.Nil(t, selection)
	_, ok := IsPolicyViolationError(err)
	assert.True(t, ok)
}

func TestDeprecatedStrategyDeclinesUnderEOLPolicy(t *testing.T) {
	strategy := &deprecatedStrategy{
		runtime:  Node16,
		settings: settings.Static{settings.EnforceNodeEOLPolicy: "true"},
		hostOS:   "linux",
		hostArch: "amd64",
	}

	selection, err := strategy.EvaluateHost(NewTaskContext(Node16, nil, ""), fakeCompat{})
	require.NoError(t, err)
	assert.Nil(t, selection)
}
