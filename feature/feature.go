// Package feature implements the Feature Detector (spec.md §4.7): a final
// sweep over every transition guard for event-metadata references, run
// after the Model Resolver. It also populates the supplemented per-field
// event-metadata map (SPEC_FULL.md §C.1).
//
// Grounded on original_source/tools/codegen/scxml_parser.py's
// _detect_features, generalized to set model.Model.EventMetadataFields
// rather than seven discrete booleans.
package feature

import (
	"strings"

	"github.com/scxmlc/frontend/model"
)

// eventMetadataFields mirrors classifier.eventMetadataFields; duplicated
// here (rather than imported) because this is a model-level sweep with no
// other dependency on the classifier package, matching the original's
// _detect_features running as an independent final pass over the already
// built model rather than re-invoking the expression classifier.
var eventMetadataFields = []string{
	"_event.origin",
	"_event.origintype",
	"_event.sendid",
	"_event.invokeid",
	"_event.type",
}

// Summary mirrors the feature flags on a model.Model, returned as a plain
// record per spec.md §4.7 ("Return a summary record mirroring the flags").
type Summary struct {
	HasDynamicExpressions  bool
	HasParallelStates      bool
	HasHistoryStates       bool
	HasInvoke              bool
	HasDynamicInvoke       bool
	HasEventMetadata       bool
	HasParentCommunication bool
	HasChildCommunication  bool
	NeedsJSEngine          bool
	UsesInPredicate        bool
	HasTransitionActions   bool
}

// Detect scans every transition's cond for event-metadata references,
// setting has_event_metadata/needs_jsengine and the EventMetadataFields map,
// then returns a Summary of the model's final flag state.
func Detect(m *model.Model) Summary {
	for _, s := range m.States {
		for _, t := range s.Transitions {
			if t.Cond == "" {
				continue
			}
			for _, field := range eventMetadataFields {
				if strings.Contains(t.Cond, field) {
					m.HasEventMetadata = true
					m.NeedsJSEngine = true
					m.EventMetadataFields[field] = true
				}
			}
		}
	}

	return Summary{
		HasDynamicExpressions:  m.HasDynamicExpressions,
		HasParallelStates:      m.HasParallelStates,
		HasHistoryStates:       m.HasHistoryStates,
		HasInvoke:              m.HasInvoke,
		HasDynamicInvoke:       m.HasDynamicInvoke,
		HasEventMetadata:       m.HasEventMetadata,
		HasParentCommunication: m.HasParentCommunication,
		HasChildCommunication:  m.HasChildCommunication,
		NeedsJSEngine:          m.NeedsJSEngine,
		UsesInPredicate:        m.UsesInPredicate,
		HasTransitionActions:   m.HasTransitionActions,
	}
}
