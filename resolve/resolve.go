// Package resolve implements the Model Resolver (spec.md §4.6): the
// post-parse passes over a model.Model built by builder — deep-initial
// resolution, parallel-initial overrides, history target resolution, and
// parallel region computation.
//
// Grounded on original_source/tools/codegen/scxml_parser.py's
// _resolve_deep_initial/_apply_parallel_initial_overrides/
// _resolve_history_targets/_resolve_to_leaf_state/_compute_parallel_regions.
package resolve

import (
	"log/slog"
	"strings"

	"github.com/scxmlc/frontend/model"
)

// maxDepth caps initial/history resolution so a cyclic or malformed
// document can never hang the resolver (spec.md §3 invariant, §7).
const maxDepth = 20

// Resolve runs every resolution sub-pass in the order spec.md §4.6
// specifies: deep-initial, parallel-initial override, history resolution,
// parallel region computation, transition-action detection.
func Resolve(m *model.Model, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	resolveInitial(m, logger)
	resolveHistory(m, logger)
	computeParallelRegions(m)
	detectTransitionActions(m)
}

func resolveInitial(m *model.Model, logger *slog.Logger) {
	tokens := strings.Fields(m.Initial)
	if len(tokens) == 0 {
		return
	}

	// A multi-token initial is always treated as a parallel-initial list,
	// even when not every token names an existing state: overrides apply to
	// whichever tokens do exist, and model.initial collapses to the raw
	// first token without any further leaf-walk (original_source's
	// _resolve_deep_initial returns early on the not-all-exist branch;
	// _apply_parallel_initial_overrides then runs unconditionally and sets
	// model.initial = tokens[0] verbatim).
	if len(tokens) > 1 {
		applyParallelInitialOverrides(m, tokens)
		m.Initial = tokens[0]
		return
	}

	current := tokens[0]
	for depth := 0; depth < maxDepth; depth++ {
		s, ok := m.State(current)
		if !ok || s.Initial == "" {
			break
		}
		next := strings.Fields(s.Initial)
		if len(next) == 0 {
			break
		}
		if _, ok := m.State(next[0]); !ok {
			break
		}
		current = next[0]
	}
	m.Initial = current
}

// applyParallelInitialOverrides encodes each region's chosen initial target
// onto the region's own Initial field, per spec.md §4.6, so that generation
// code can treat every region uniformly.
func applyParallelInitialOverrides(m *model.Model, tokens []string) {
	for _, tok := range tokens {
		s, ok := m.State(tok)
		if !ok {
			continue
		}
		if s.Parent == "" {
			continue
		}
		parent, ok := m.State(s.Parent)
		if !ok {
			continue
		}
		parent.Initial = tok
	}
}

func resolveHistory(m *model.Model, logger *slog.Logger) {
	for id, hs := range m.HistoryStates {
		hs.LeafTarget = resolveToLeaf(m, hs.DefaultTarget, logger)
		m.HistoryStates[id] = hs
	}

	for _, s := range m.States {
		for i := range s.Transitions {
			t := &s.Transitions[i]
			if _, ok := m.HistoryStates[t.Target]; ok {
				t.HistoryTarget = t.Target
			}
		}
		if hs, ok := m.HistoryStates[s.Initial]; ok {
			s.Initial = hs.LeafTarget
		}
	}
}

// resolveToLeaf follows .Initial from start until it names a state with no
// further initial (or the depth cap is hit), mirroring the original's
// _resolve_to_leaf_state. Unresolvable targets are returned unchanged
// (spec.md invariant 5: "or is the same id if unresolvable").
func resolveToLeaf(m *model.Model, start string, logger *slog.Logger) string {
	if start == "" {
		return start
	}
	current := start
	for depth := 0; depth < maxDepth; depth++ {
		s, ok := m.State(current)
		if !ok {
			return current
		}
		if s.Initial == "" {
			return current
		}
		next := strings.Fields(s.Initial)
		if len(next) == 0 {
			return current
		}
		if _, ok := m.State(next[0]); !ok {
			return current
		}
		current = next[0]
	}
	logger.Debug("history leaf resolution hit depth cap", "start", start, "current", current)
	return current
}

func computeParallelRegions(m *model.Model) {
	for _, s := range m.States {
		if s.Kind != model.KindParallel {
			continue
		}
		var region []string
		for _, c := range m.States {
			if c.Parent == s.ID {
				region = append(region, c.ID)
			}
		}
		m.ParallelRegions[s.ID] = region
	}
}

func detectTransitionActions(m *model.Model) {
	for _, s := range m.States {
		for _, t := range s.Transitions {
			if len(t.Actions) > 0 {
				m.HasTransitionActions = true
				return
			}
		}
	}
}
