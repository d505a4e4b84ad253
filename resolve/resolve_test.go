package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scxmlc/frontend/builder"
	"github.com/scxmlc/frontend/invoke"
	"github.com/scxmlc/frontend/model"
	"github.com/scxmlc/frontend/xmlreader"
)

func build(t *testing.T, doc, name string) *model.Model {
	t.Helper()
	d, err := xmlreader.ReadString(name+".scxml", doc)
	require.NoError(t, err)
	root := d.Root()
	require.NotNil(t, root)
	cfg := builder.Config{InvokeConfig: invoke.Config{
		Dir:             ".",
		ParentModelName: name,
		AnalyzeChild: func(path string) (invoke.ChildResult, error) {
			return invoke.ChildResult{}, nil
		},
	}}
	return builder.Build(root, name, cfg)
}

func TestResolve_DeepInitial(t *testing.T) {
	// S2
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="s0">
		<state id="s0" initial="s01"><state id="s01"/></state>
	</scxml>`, "s2")

	Resolve(m, nil)
	assert.Equal(t, "s01", m.Initial)
}

func TestResolve_ParallelInitialOverride(t *testing.T) {
	// S3
	doc := `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="s2p112 s2p122">
		<parallel id="s2p1">
			<state id="s2p11" initial="s2p111">
				<state id="s2p111"/><state id="s2p112"/>
			</state>
			<state id="s2p12" initial="s2p121">
				<state id="s2p121"/><state id="s2p122"/>
			</state>
		</parallel>
	</scxml>`
	m := build(t, doc, "s3")
	Resolve(m, nil)

	s11, ok := m.State("s2p11")
	require.True(t, ok)
	assert.Equal(t, "s2p112", s11.Initial)

	s12, ok := m.State("s2p12")
	require.True(t, ok)
	assert.Equal(t, "s2p122", s12.Initial)

	assert.Equal(t, []string{"s2p11", "s2p12"}, m.ParallelRegions["s2p1"])
}

func TestResolve_HistoryLeafTarget(t *testing.T) {
	// S6
	doc := `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="p">
		<state id="p">
			<history id="h"><transition target="x"/></history>
			<state id="x" initial="x1"><state id="x1"/></state>
			<transition event="go" target="h"/>
		</state>
	</scxml>`
	m := build(t, doc, "s6")
	Resolve(m, nil)

	hs, ok := m.HistoryStates["h"]
	require.True(t, ok)
	assert.Equal(t, "x1", hs.LeafTarget)

	p, ok := m.State("p")
	require.True(t, ok)
	require.Len(t, p.Transitions, 1)
	assert.Equal(t, "h", p.Transitions[0].Target)
	assert.Equal(t, "h", p.Transitions[0].HistoryTarget)
}

func TestResolve_PartialParallelInitialFallsBackToRawFirstToken(t *testing.T) {
	// Open question in spec.md §9: when only some tokens exist, fall back to
	// treating the first token as a single initial — raw, with no further
	// leaf-walk (original_source's _resolve_deep_initial returns early on
	// the not-all-exist branch, and _apply_parallel_initial_overrides sets
	// model.initial = tokens[0] verbatim afterward).
	doc := `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="a missing">
		<state id="a" initial="a1"><state id="a1"/></state>
	</scxml>`
	m := build(t, doc, "partial")
	Resolve(m, nil)
	assert.Equal(t, "a", m.Initial)
}

func TestResolve_TransitionActionsDetected(t *testing.T) {
	doc := `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="a">
		<state id="a"><transition event="go" target="a"><log label="x" expr="1"/></transition></state>
	</scxml>`
	m := build(t, doc, "actions")
	Resolve(m, nil)
	assert.True(t, m.HasTransitionActions)
}
