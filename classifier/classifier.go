// Package classifier implements the Expression Classifier (spec.md §4.2):
// static inspection of a condition or value expression to decide whether
// it is a pure In() predicate, needs a full scripting engine, or
// references event metadata.
//
// Grounded on original_source/tools/codegen/scxml_parser.py's
// _is_pure_in_predicate/_convert_in_to_cpp/_requires_jsengine, adapted to
// the runtime predicate name isStateActive used by this front-end's
// target generator instead of the original's this->isStateActive C++ call.
package classifier

import (
	"regexp"
	"strings"
)

// Kind is the classification result.
type Kind string

const (
	KindEmpty              Kind = "empty"
	KindPureIn             Kind = "pure_in"
	KindNeedsEngine        Kind = "needs_engine"
	KindReferencesEventMeta Kind = "references_event_meta"
)

// Result is the outcome of classifying one expression.
type Result struct {
	Kind   Kind
	Lowered string // populated only when Kind == KindPureIn
}

// eventMetadataFields are the W3C SCXML 5.10.1 event metadata paths.
var eventMetadataFields = []string{
	"_event.origin",
	"_event.origintype",
	"_event.sendid",
	"_event.invokeid",
	"_event.type",
}

// jsFeatures are ECMAScript tells (excluding In(), handled separately).
var jsFeatures = []string{"typeof", "_event.", "function", "var ", "let ", "const "}

// reservedWords surface as error.execution at runtime rather than a
// compile failure if embedded directly (spec.md §4.2 step 5).
var reservedWords = []string{
	"return", "break", "continue", "goto", "switch", "case", "default",
	"if", "else", "while", "do", "for", "class", "struct", "typedef",
	"using", "namespace", "template", "typename", "static", "extern",
	"inline", "virtual", "operator", "new", "delete", "this", "throw",
	"try", "catch", "public", "private", "protected",
}

// pureInPattern is the specification for the pure-In() grammar: only
// In('literal'), &&, ||, parentheses, and whitespace.
var pureInPattern = regexp.MustCompile(`^[\s()&|]*(?:In\('[^']+'\)[\s()&|]*)+$`)

var inCallPattern = regexp.MustCompile(`In\('([^']+)'\)`)

// Classify classifies a single expression string.
func Classify(expr string) Result {
	if expr == "" {
		return Result{Kind: KindEmpty}
	}

	if strings.Contains(expr, "In(") {
		if isPureInPredicate(expr) {
			return Result{Kind: KindPureIn, Lowered: lowerPureIn(expr)}
		}
		return Result{Kind: KindNeedsEngine}
	}

	// Event-metadata paths all start with "_event.", which is also a
	// jsFeatures entry, so they are checked first.
	for _, f := range eventMetadataFields {
		if strings.Contains(expr, f) {
			return Result{Kind: KindReferencesEventMeta}
		}
	}

	for _, f := range jsFeatures {
		if strings.Contains(expr, f) {
			return Result{Kind: KindNeedsEngine}
		}
	}

	trimmed := strings.TrimSpace(expr)
	for _, kw := range reservedWords {
		if trimmed == kw {
			return Result{Kind: KindNeedsEngine}
		}
		if strings.HasPrefix(trimmed, kw) && len(trimmed) > len(kw) {
			next := trimmed[len(kw)]
			if !isIdentChar(next) {
				return Result{Kind: KindNeedsEngine}
			}
		}
	}

	return Result{Kind: KindEmpty}
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// isPureInPredicate reports whether expr is a boolean combination of
// In('literal') with only &&, ||, and parentheses.
func isPureInPredicate(expr string) bool {
	clean := normalizeBooleanOps(expr)
	if !pureInPattern.MatchString(clean) {
		return false
	}
	for _, kw := range []string{"typeof", "_event", "function", "var ", "let ", "const ", "return"} {
		if strings.Contains(clean, kw) {
			return false
		}
	}
	return true
}

// normalizeBooleanOps undoes XML entity escaping of boolean operators
// (spec.md §4.2 step 2).
func normalizeBooleanOps(expr string) string {
	s := strings.ReplaceAll(expr, "&amp;&amp;", "&&")
	s = strings.ReplaceAll(s, "&amp;|", "||")
	return strings.TrimSpace(s)
}

// lowerPureIn substitutes In('X') with isStateActive("X") calls.
func lowerPureIn(expr string) string {
	normalized := normalizeBooleanOps(expr)
	return inCallPattern.ReplaceAllString(normalized, `isStateActive("$1")`)
}

// RequiresEngine is a convenience used by callers (action/builder) that
// only need the boolean "does this need the scripting engine" answer
// plus whether it referenced event metadata along the way, mirroring
// the original's _requires_jsengine return-plus-side-effect shape.
func RequiresEngine(expr string) (needsEngine, usesInPredicate, referencesEventMeta bool) {
	if expr == "" {
		return false, false, false
	}
	if strings.Contains(expr, "In(") {
		usesInPredicate = true
		if isPureInPredicate(expr) {
			return false, true, false
		}
		return true, true, false
	}
	res := Classify(expr)
	switch res.Kind {
	case KindNeedsEngine:
		return true, false, false
	case KindReferencesEventMeta:
		return true, false, true
	default:
		return false, false, false
	}
}
