package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

	cfg := Config{InvokeConfig: invoke.Config{
		Dir:             ".",
		ParentModelName: name,
		AnalyzeChild: func(path string) (invoke.ChildResult, error) {
			return invoke.ChildResult{}, nil
		},
	}}
	return Build(root, name, cfg)
}

func TestBuild_EmptyInitial_FallsBackToFirstChildState(t *testing.T) {
	// S1
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml"><state id="a"/><state id="b"/></scxml>`, "s1")
	assert.Equal(t, "a", m.Initial)
	_, aOK := m.State("a")
	_, bOK := m.State("b")
	assert.True(t, aOK)
	assert.True(t, bOK)
	assert.False(t, m.NeedsJSEngine)
	assert.Empty(t, m.Events)
}

func TestBuild_DocumentOrderAndParent(t *testing.T) {
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="s0">
		<state id="s0" initial="s01"><state id="s01"/></state>
	</scxml>`, "s2")

	s0, ok := m.State("s0")
	require.True(t, ok)
	assert.Equal(t, model.KindCompound, s0.Kind)
	assert.Equal(t, 0, s0.DocumentOrder)

	s01, ok := m.State("s01")
	require.True(t, ok)
	assert.Equal(t, "s0", s01.Parent)
	assert.Equal(t, model.KindAtomic, s01.Kind)
	assert.Equal(t, 1, s01.DocumentOrder)
}

func TestBuild_ParallelMarksFeatureFlag(t *testing.T) {
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="p">
		<parallel id="p">
			<state id="r1"/>
			<state id="r2"/>
		</parallel>
	</scxml>`, "s3")

	assert.True(t, m.HasParallelStates)
	p, ok := m.State("p")
	require.True(t, ok)
	assert.Equal(t, model.KindParallel, p.Kind)
}

func TestBuild_HistoryRecordedAsPseudostate(t *testing.T) {
	// S6
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="p">
		<state id="p">
			<history id="h"><transition target="x"/></history>
			<state id="x" initial="x1"><state id="x1"/></state>
			<transition event="go" target="h"/>
		</state>
	</scxml>`, "s6")

	assert.True(t, m.HasHistoryStates)
	hs, ok := m.HistoryStates["h"]
	require.True(t, ok)
	assert.Equal(t, "p", hs.Parent)
	assert.Equal(t, "x", hs.DefaultTarget)

	_, stateExists := m.State("h")
	assert.False(t, stateExists, "history pseudo-state must not be in the states map")

	p, ok := m.State("p")
	require.True(t, ok)
	require.Len(t, p.Transitions, 1)
	assert.Equal(t, "h", p.Transitions[0].Target)
}

func TestBuild_FinalDoneData(t *testing.T) {
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="f">
		<final id="f"><donedata><param name="result" expr="42"/></donedata></final>
	</scxml>`, "s7")

	f, ok := m.State("f")
	require.True(t, ok)
	assert.Equal(t, model.KindFinal, f.Kind)
	require.NotNil(t, f.DoneData)
	require.Len(t, f.DoneData.Params, 1)
	assert.Equal(t, "result", f.DoneData.Params[0].Name)
}

func TestBuild_RootDatamodelSetsNeedsJSEngineUnconditionally(t *testing.T) {
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="a">
		<datamodel><data id="x"/></datamodel>
		<state id="a"/>
	</scxml>`, "s8")

	assert.True(t, m.NeedsJSEngine)
	require.Len(t, m.Variables, 1)
	assert.Equal(t, "x", m.Variables[0].ID)
}

func TestBuild_PerStateDatamodelDoesNotSetNeedsJSEngine(t *testing.T) {
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="a">
		<state id="a"><datamodel><data id="y"/></datamodel></state>
	</scxml>`, "s9")

	assert.False(t, m.NeedsJSEngine)
	a, ok := m.State("a")
	require.True(t, ok)
	require.Len(t, a.Datamodel, 1)
	assert.Equal(t, "y", a.Datamodel[0].ID)
}

func TestBuild_EventTokensSplitAndWildcardsExcluded(t *testing.T) {
	m := build(t, `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="a">
		<state id="a"><transition event="foo bar.* *" target="a"/></state>
	</scxml>`, "s10")

	_, fooOK := m.Events["foo"]
	assert.True(t, fooOK)
	_, wildcardOK := m.Events["*"]
	assert.False(t, wildcardOK)
	_, prefixOK := m.Events["bar.*"]
	assert.False(t, prefixOK)
}
