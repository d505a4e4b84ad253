// Package action implements the Executable-Content Parser (spec.md §4.3):
// a recursive parser over <raise>, <send>, <assign>, <if/elseif/else>,
// <foreach>, <log>, <script>, <cancel> that produces a flat, typed action
// list and calls the Expression Classifier on every embedded expression.
//
// Grounded on original_source/tools/codegen/scxml_parser.py's
// _parse_executable_content, generalized from the original's dict-based
// actions to model.Action.
package action

import (
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/scxmlc/frontend/classifier"
	"github.com/scxmlc/frontend/model"
	"github.com/scxmlc/frontend/xmlreader"
)

// Parse walks the direct children of an <onentry>, <onexit>, <transition>,
// <finalize>, or <if> element and returns its executable content in
// document order. Text nodes, comments, and unknown elements are skipped
// (xmlreader.FindAllChildren-style iteration already excludes text/comment
// nodes by using Children()).
func Parse(parent xmldom.Element, m *model.Model) []model.Action {
	if parent == nil {
		return nil
	}
	var actions []model.Action
	children := parent.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		local := string(child.LocalName())
		switch local {
		case "raise":
			actions = append(actions, parseRaise(child, m))
		case "send":
			actions = append(actions, parseSend(child, m))
		case "assign":
			actions = append(actions, parseAssign(child, m))
		case "if":
			actions = append(actions, parseIf(child, m))
		case "foreach":
			actions = append(actions, parseForeach(child, m))
		case "log":
			actions = append(actions, parseLog(child))
		case "script":
			actions = append(actions, parseScript(child, m))
		case "cancel":
			actions = append(actions, parseCancel(child))
		}
		// unrecognized elements are silently skipped (spec.md §4.3)
	}
	return actions
}

func parseRaise(el xmldom.Element, m *model.Model) model.Action {
	event := xmlreader.Attr(el, "event")
	if event != "" {
		// raises are always concrete; no wildcard filtering here (spec.md §4.3)
		m.AddEvent(event)
	}
	return model.Action{Kind: model.ActionRaise, Event: event}
}

func parseSend(el xmldom.Element, m *model.Model) model.Action {
	a := model.Action{
		Kind:       model.ActionSend,
		Event:      xmlreader.Attr(el, "event"),
		EventExpr:  xmlreader.Attr(el, "eventexpr"),
		Target:     xmlreader.Attr(el, "target"),
		TargetExpr: xmlreader.Attr(el, "targetexpr"),
		TypeURI:    xmlreader.Attr(el, "type"),
		TypeExpr:   xmlreader.Attr(el, "typeexpr"),
		SendID:     xmlreader.Attr(el, "id"),
		IDLocation: xmlreader.Attr(el, "idlocation"),
		Delay:      xmlreader.Attr(el, "delay"),
		DelayExpr:  xmlreader.Attr(el, "delayexpr"),
	}
	if nl := xmlreader.Attr(el, "namelist"); nl != "" {
		a.NameList = strings.Fields(nl)
	}

	for _, p := range xmlreader.FindAllChildren(el, "param") {
		a.Params = append(a.Params, model.Param{
			Name:     xmlreader.Attr(p, "name"),
			Expr:     xmlreader.Attr(p, "expr"),
			Location: xmlreader.Attr(p, "location"),
		})
	}

	if contents := xmlreader.FindAllChildren(el, "content"); len(contents) > 0 {
		c := contents[0]
		a.Content = &model.Content{
			Expr: xmlreader.Attr(c, "expr"),
			Text: xmlreader.Text(c),
		}
	}

	if a.Target == "#_parent" {
		m.HasParentCommunication = true
	} else if a.Target == "#_child" {
		m.HasChildCommunication = true
	}

	if a.EventExpr != "" || a.TargetExpr != "" || a.DelayExpr != "" {
		m.HasDynamicExpressions = true
		m.NeedsJSEngine = true
	}

	if a.Event != "" {
		m.AddEvent(a.Event)
	}

	return a
}

func parseAssign(el xmldom.Element, m *model.Model) model.Action {
	// W3C SCXML 5.4: under the ECMAScript datamodel every assignment is
	// runtime-evaluated (spec.md §4.3).
	m.NeedsJSEngine = true
	return model.Action{
		Kind:     model.ActionAssign,
		Location: xmlreader.Attr(el, "location"),
		Expr:     xmlreader.Attr(el, "expr"),
	}
}

func classifyCond(cond string, m *model.Model) (isPureIn bool, native string) {
	if cond == "" {
		return false, ""
	}
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
		return true, res.Lowered
	}
	return false, ""
}

func parseIf(el xmldom.Element, m *model.Model) model.Action {
	cond := xmlreader.Attr(el, "cond")
	isPureIn, native := classifyCond(cond, m)

	a := model.Action{
		Kind:       model.ActionIf,
		Cond:       cond,
		IsPureIn:   isPureIn,
		CondNative: native,
	}

	current := &a.Then
	children := el.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		local := string(child.LocalName())
		switch local {
		case "elseif":
			elseifCond := xmlreader.Attr(child, "cond")
			branchIsPureIn, branchNative := classifyCond(elseifCond, m)
			a.ElseIf = append(a.ElseIf, model.IfBranch{
				Cond:       elseifCond,
				CondNative: branchNative,
				IsPureIn:   branchIsPureIn,
			})
			current = &a.ElseIf[len(a.ElseIf)-1].Actions
		case "else":
			current = &a.Else
		default:
			// unrecognized elements are skipped, as in Parse
			if act := parseSingleAction(child, m); act.Kind != "" {
				*current = append(*current, act)
			}
		}
	}

	return a
}

// parseSingleAction parses one executable-content element outside of the
// recursive Parse loop (used inside <if> branches, matching the original's
// branch-action handling which only covers raise/send/assign/log/script —
// if/foreach nested inside an if-branch still dispatch through the same
// element-kind switch for fidelity with spec.md, which does not special-case
// nested control flow).
func parseSingleAction(el xmldom.Element, m *model.Model) model.Action {
	switch string(el.LocalName()) {
	case "raise":
		return parseRaise(el, m)
	case "send":
		return parseSend(el, m)
	case "assign":
		return parseAssign(el, m)
	case "if":
		return parseIf(el, m)
	case "foreach":
		return parseForeach(el, m)
	case "log":
		return parseLog(el)
	case "script":
		return parseScript(el, m)
	case "cancel":
		return parseCancel(el)
	default:
		return model.Action{}
	}
}

func parseForeach(el xmldom.Element, m *model.Model) model.Action {
	m.NeedsJSEngine = true
	return model.Action{
		Kind:  model.ActionForeach,
		Array: xmlreader.Attr(el, "array"),
		Item:  xmlreader.Attr(el, "item"),
		Index: xmlreader.Attr(el, "index"),
		Body:  Parse(el, m),
	}
}

func parseLog(el xmldom.Element) model.Action {
	return model.Action{
		Kind:  model.ActionLog,
		Label: xmlreader.Attr(el, "label"),
		Expr:  xmlreader.Attr(el, "expr"),
	}
}

func parseScript(el xmldom.Element, m *model.Model) model.Action {
	m.NeedsJSEngine = true
	return model.Action{
		Kind: model.ActionScript,
		Src:  xmlreader.Attr(el, "src"),
		Expr: xmlreader.Text(el),
	}
}

func parseCancel(el xmldom.Element) model.Action {
	return model.Action{
		Kind:       model.ActionCancel,
		SendID:     xmlreader.Attr(el, "sendid"),
		SendIDExpr: xmlreader.Attr(el, "sendidexpr"),
	}
}
