// Package builder implements the State-Tree Builder (spec.md §4.4): a
// recursive descent over <state>, <parallel>, <final>, <history> that
// assigns document order, records parent-child relationships, and invokes
// the Executable-Content Parser and Invoke Resolver on each state.
//
// Grounded on original_source/tools/codegen/scxml_parser.py's
// _parse_states/_parse_transition, generalized from the original's
// dict-of-dicts SCXMLModel to model.Model/model.State.
package builder

import (
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/scxmlc/frontend/action"
	"github.com/scxmlc/frontend/classifier"
	"github.com/scxmlc/frontend/invoke"
	"github.com/scxmlc/frontend/model"
	"github.com/scxmlc/frontend/xmlreader"
)

// Config parameterizes the build, mainly to thread the invoke resolver's
// filesystem and recursive-analysis dependencies down to wherever a
// <state> with <invoke> children turns up.
type Config struct {
	InvokeConfig invoke.Config
}

// Build walks the root <scxml> element of doc and returns a fully
// populated but not-yet-resolved Model (the Model Resolver and Feature
// Detector run afterward; see analyzer).
func Build(root xmldom.Element, modelName string, cfg Config) *model.Model {
	m := model.New(modelName)

	m.Initial = xmlreader.Attr(root, "initial")
	if b := xmlreader.Attr(root, "binding"); b == "late" {
		m.Binding = model.BindingLate
	}
	if dm := xmlreader.Attr(root, "datamodel"); dm != "" {
		m.DatamodelType = dm
	}

	parseRootDatamodel(root, m)

	order := 0
	ic := invoke.NewCounters()
	buildChildren(root, "", m, &order, cfg, ic)

	if m.Initial == "" {
		m.Initial = firstChildStateID(root)
	}

	return m
}

// parseRootDatamodel handles the root-level <datamodel><data>* block. Per
// SPEC_FULL.md §C.3 (grounded on the original's _parse_datamodel), every
// top-level <data> element — with or without an expr — unconditionally
// sets needs_jsengine, unlike per-state datamodels (§C.4).
func parseRootDatamodel(root xmldom.Element, m *model.Model) {
	dmEls := xmlreader.FindAllChildren(root, "datamodel")
	if len(dmEls) == 0 {
		return
	}
	dataEls := xmlreader.FindAllChildren(dmEls[0], "data")
	for _, d := range dataEls {
		m.Variables = append(m.Variables, model.Data{
			ID:      xmlreader.Attr(d, "id"),
			Expr:    xmlreader.Attr(d, "expr"),
			Src:     xmlreader.Attr(d, "src"),
			Content: xmlreader.Text(d),
		})
		m.NeedsJSEngine = true
	}
}

// parseStateDatamodel handles a per-state <datamodel><data>* block. Per
// SPEC_FULL.md §C.4 this does NOT set needs_jsengine on its own.
func parseStateDatamodel(stateEl xmldom.Element) []model.Data {
	dmEls := xmlreader.FindAllChildren(stateEl, "datamodel")
	if len(dmEls) == 0 {
		return nil
	}
	var out []model.Data
	for _, d := range xmlreader.FindAllChildren(dmEls[0], "data") {
		out = append(out, model.Data{
			ID:      xmlreader.Attr(d, "id"),
			Expr:    xmlreader.Attr(d, "expr"),
			Src:     xmlreader.Attr(d, "src"),
			Content: xmlreader.Text(d),
		})
	}
	return out
}

// stateLikeLocalNames is the search order used for fallback-to-first-child
// when an "initial" attribute is absent (SPEC_FULL.md §C.2, adopted
// verbatim from the original's parse_file: state, then parallel, then
// final).
var stateLikeLocalNames = []string{"state", "parallel", "final"}

func firstChildStateID(parent xmldom.Element) string {
	for _, local := range stateLikeLocalNames {
		for _, el := range xmlreader.FindAllChildren(parent, local) {
			if id := xmlreader.Attr(el, "id"); id != "" {
				return id
			}
		}
	}
	return ""
}

// buildChildren walks the direct state-like children of parentEl in
// document order and recurses into compound/parallel children.
func buildChildren(parentEl xmldom.Element, parentID string, m *model.Model, order *int, cfg Config, ic *invoke.Counters) {
	children := parentEl.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		switch string(child.LocalName()) {
		case "state":
			buildState(child, parentID, m, order, cfg, ic)
		case "parallel":
			buildParallel(child, parentID, m, order, cfg, ic)
		case "final":
			buildFinal(child, parentID, m, order, cfg, ic)
		case "history":
			buildHistory(child, parentID, m)
		}
		// <datamodel>, <invoke>, <transition>, <onentry>, <onexit>, <initial>,
		// <donedata> are handled by the owning state's own parser and are not
		// state-like children dispatched here.
	}
}

func parseTransitions(stateEl xmldom.Element, m *model.Model) []model.Transition {
	var out []model.Transition
	for _, t := range xmlreader.FindAllChildren(stateEl, "transition") {
		out = append(out, parseOneTransition(t, m))
	}
	return out
}

func parseOneTransition(t xmldom.Element, m *model.Model) model.Transition {
	cond := xmlreader.Attr(t, "cond")
	tr := model.Transition{
		Event:  xmlreader.Attr(t, "event"),
		Target: xmlreader.Attr(t, "target"),
		Cond:   cond,
		Type:   model.TransitionExternal,
	}
	if xmlreader.Attr(t, "type") == "internal" {
		tr.Type = model.TransitionInternal
	}

	if cond != "" {
		needsEngine, usesIn, referencesEventMeta := classifier.RequiresEngine(cond)
		if usesIn {
			m.UsesInPredicate = true
		}
		if referencesEventMeta {
			m.HasEventMetadata = true
		}
		if needsEngine {
			m.NeedsJSEngine = true
		}
		res := classifier.Classify(cond)
		if res.Kind == classifier.KindPureIn {
			tr.IsPureIn = true
			tr.CondNative = res.Lowered
		}
	}

	for _, tok := range strings.Fields(tr.Event) {
		if !model.IsWildcardEvent(tok) {
			m.AddEvent(tok)
		}
	}

	tr.Actions = action.Parse(t, m)
	if len(tr.Actions) > 0 {
		m.HasTransitionActions = true
	}

	return tr
}

func buildState(el xmldom.Element, parentID string, m *model.Model, order *int, cfg Config, ic *invoke.Counters) {
	id := xmlreader.Attr(el, "id")
	if id == "" {
		// Recoverable: skip unidentified state (spec.md §7).
		return
	}

	s := &model.State{
		ID:            id,
		Kind:          kindFor(el),
		Parent:        parentID,
		DocumentOrder: nextOrder(order),
		Initial:       xmlreader.Attr(el, "initial"),
		Datamodel:     parseStateDatamodel(el),
	}

	if onentry := xmlreader.FindFirstChild(el, "onentry"); onentry != nil {
		s.OnEntry = action.Parse(onentry, m)
	}
	if onexit := xmlreader.FindFirstChild(el, "onexit"); onexit != nil {
		s.OnExit = action.Parse(onexit, m)
	}

	s.Transitions = parseTransitions(el, m)

	if initialEl := xmlreader.FindFirstChild(el, "initial"); initialEl != nil {
		if initTr := xmlreader.FindFirstChild(initialEl, "transition"); initTr != nil {
			s.InitialTransitionActions = action.Parse(initTr, m)
			if target := xmlreader.Attr(initTr, "target"); target != "" && s.Initial == "" {
				s.Initial = target
			}
		}
	}

	invoke.Resolve(el, s, m, cfg.InvokeConfig, ic)

	m.AddState(s)

	buildChildren(el, id, m, order, cfg, ic)
}

func buildParallel(el xmldom.Element, parentID string, m *model.Model, order *int, cfg Config, ic *invoke.Counters) {
	id := xmlreader.Attr(el, "id")
	if id == "" {
		return
	}
	m.HasParallelStates = true

	s := &model.State{
		ID:            id,
		Kind:          model.KindParallel,
		Parent:        parentID,
		DocumentOrder: nextOrder(order),
		Datamodel:     parseStateDatamodel(el),
	}

	if onentry := xmlreader.FindFirstChild(el, "onentry"); onentry != nil {
		s.OnEntry = action.Parse(onentry, m)
	}
	if onexit := xmlreader.FindFirstChild(el, "onexit"); onexit != nil {
		s.OnExit = action.Parse(onexit, m)
	}
	s.Transitions = parseTransitions(el, m)

	invoke.Resolve(el, s, m, cfg.InvokeConfig, ic)

	m.AddState(s)

	buildChildren(el, id, m, order, cfg, ic)
}

func buildFinal(el xmldom.Element, parentID string, m *model.Model, order *int, cfg Config, ic *invoke.Counters) {
	id := xmlreader.Attr(el, "id")
	if id == "" {
		return
	}

	s := &model.State{
		ID:            id,
		Kind:          model.KindFinal,
		Parent:        parentID,
		DocumentOrder: nextOrder(order),
	}

	if onentry := xmlreader.FindFirstChild(el, "onentry"); onentry != nil {
		s.OnEntry = action.Parse(onentry, m)
	}
	if onexit := xmlreader.FindFirstChild(el, "onexit"); onexit != nil {
		s.OnExit = action.Parse(onexit, m)
	}

	if dd := xmlreader.FindFirstChild(el, "donedata"); dd != nil {
		s.DoneData = parseDoneData(dd)
	}

	m.AddState(s)
}

func parseDoneData(dd xmldom.Element) *model.DoneData {
	out := &model.DoneData{}
	for _, p := range xmlreader.FindAllChildren(dd, "param") {
		out.Params = append(out.Params, model.Param{
			Name:     xmlreader.Attr(p, "name"),
			Expr:     xmlreader.Attr(p, "expr"),
			Location: xmlreader.Attr(p, "location"),
		})
	}
	if contents := xmlreader.FindAllChildren(dd, "content"); len(contents) > 0 {
		c := contents[0]
		out.ContentExpr = xmlreader.Attr(c, "expr")
		out.Content = xmlreader.Text(c)
	}
	return out
}

func buildHistory(el xmldom.Element, parentID string, m *model.Model) {
	id := xmlreader.Attr(el, "id")
	if id == "" {
		return
	}
	m.HasHistoryStates = true

	ht := model.HistoryShallow
	if xmlreader.Attr(el, "type") == "deep" {
		ht = model.HistoryDeep
	}

	var defaultTarget string
	if t := xmlreader.FindFirstChild(el, "transition"); t != nil {
		defaultTarget = xmlreader.Attr(t, "target")
	}

	m.HistoryStates[id] = &model.HistoryState{
		Parent:        parentID,
		Type:          ht,
		DefaultTarget: defaultTarget,
	}
	m.HistoryDefaultTargets[id] = defaultTarget
}

// kindFor determines whether a <state> element is atomic or compound by
// checking for direct state-like children (spec.md §3: "a tagged variant").
func kindFor(el xmldom.Element) model.Kind {
	for _, local := range []string{"state", "parallel", "final"} {
		if len(xmlreader.FindAllChildren(el, local)) > 0 {
			return model.KindCompound
		}
	}
	return model.KindAtomic
}

func nextOrder(order *int) int {
	v := *order
	*order++
	return v
}
