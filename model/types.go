// Package model defines the typed intermediate representation produced by
// the SCXML analysis front-end: one Model per input document, built once
// and immutable after emission.
package model

// Binding is the SCXML data-binding mode (W3C SCXML 5.3).
type Binding string

const (
	BindingEarly Binding = "early"
	BindingLate  Binding = "late"
)

// HistoryType distinguishes shallow from deep history pseudo-states.
type HistoryType string

const (
	HistoryShallow HistoryType = "shallow"
	HistoryDeep    HistoryType = "deep"
)

// TransitionType is external (default) or internal (SCXML 3.3).
type TransitionType string

const (
	TransitionExternal TransitionType = "external"
	TransitionInternal TransitionType = "internal"
)

// Kind tags the variant a State represents.
type Kind string

const (
	KindAtomic   Kind = "atomic"
	KindCompound Kind = "compound"
	KindParallel Kind = "parallel"
	KindFinal    Kind = "final"
)

// Data represents a <data> declaration (SCXML 5.2).
type Data struct {
	ID      string
	Expr    string
	Src     string
	Content string
}

// Param represents a <param> element (SCXML 5.7/6.2).
type Param struct {
	Name     string
	Expr     string
	Location string
}

// Content represents a <content> element (SCXML 5.6/6.2).
type Content struct {
	Expr string
	Text string
}

// ActionKind enumerates the executable-content element types the parser
// recognizes (SCXML 4).
type ActionKind string

const (
	ActionRaise   ActionKind = "raise"
	ActionSend    ActionKind = "send"
	ActionAssign  ActionKind = "assign"
	ActionIf      ActionKind = "if"
	ActionForeach ActionKind = "foreach"
	ActionLog     ActionKind = "log"
	ActionScript  ActionKind = "script"
	ActionCancel  ActionKind = "cancel"
)

// IfBranch is one arm of an <if>/<elseif>/<else> chain.
type IfBranch struct {
	Cond          string // empty for the else arm
	CondNative    string // lowered form when IsPureIn
	IsPureIn      bool
	NeedsEngine   bool
	Actions       []Action
}

// Action is a single piece of executable content. Only the fields for Kind
// are populated; the rest are zero values.
type Action struct {
	Kind ActionKind

	// raise / send / cancel event identity
	Event     string
	EventExpr string

	// send
	Target     string
	TargetExpr string
	TypeURI    string
	TypeExpr   string
	SendID     string
	IDLocation string
	Delay      string
	DelayExpr  string
	NameList   []string
	Params     []Param
	Content    *Content

	// assign
	Location string
	Expr     string

	// if
	Then    []Action
	ElseIf  []IfBranch
	Else    []Action
	Cond    string // the <if> cond itself
	CondNative string
	IsPureIn   bool

	// foreach
	Array string
	Item  string
	Index string
	Body  []Action

	// log
	Label string

	// script
	Src string

	// cancel
	SendIDExpr string
}

// Transition is one <transition> element (SCXML 3.3).
type Transition struct {
	Event         string
	Target        string
	Cond          string
	IsPureIn      bool
	CondNative    string
	Type          TransitionType
	Actions       []Action
	HistoryTarget string // set by the Model Resolver when Target names a history id
}

// DoneData is the <donedata> payload carried by final states (SCXML 5.5).
type DoneData struct {
	Params      []Param
	Content     string
	ContentExpr string
}

// Invoke is a parsed <invoke> element (SCXML 6.4).
type Invoke struct {
	TypeURI    string
	Src        string
	SrcExpr    string
	ID         string
	IDLocation string
	Autoforward bool
	Params     []Param
	Finalize   []Action
	Content    string
	ContentExpr string

	IsStatic        bool
	HasInlineSCXML  bool
}

// StaticInvoke is the flattened record the downstream generator consumes
// for each static invocation (SCXML 6.4, statically determined child).
type StaticInvoke struct {
	InvokeID         string
	ChildName        string
	StateID          string
	Autoforward      bool
	Src              string
	Params           []Param
	IDLocation       string
	ChildNeedsJSEngine bool
}

// State is one node of the state tree: atomic, compound, parallel, or final.
type State struct {
	ID            string
	Kind          Kind
	Parent        string // empty for root-level states
	DocumentOrder int

	Initial string // raw id, or whitespace-separated list on the root

	Transitions []Transition
	OnEntry     []Action
	OnExit      []Action

	InitialTransitionActions []Action

	Datamodel []Data
	Invokes   []Invoke
	StaticInvokes []StaticInvoke

	DoneData *DoneData // only meaningful when Kind == KindFinal
}

// HistoryState describes a <history> pseudo-state (SCXML 3.11). History
// pseudo-states are not entries of Model.States.
type HistoryState struct {
	Parent        string
	Type          HistoryType
	DefaultTarget string
	LeafTarget    string
}

// Model is the self-describing artifact emitted for one input document.
type Model struct {
	Name         string
	Initial      string
	Binding      Binding
	DatamodelType string

	States []*State // document order
	stateIndex map[string]*State

	Events map[string]struct{}

	HistoryStates         map[string]*HistoryState
	HistoryDefaultTargets map[string]string

	ParallelRegions map[string][]string // parallel state id -> ordered child ids

	Variables []Data // top-level <data> declarations

	StaticInvokes []StaticInvoke

	// Feature flags
	HasDynamicExpressions bool
	HasParallelStates     bool
	HasHistoryStates      bool
	HasInvoke             bool
	HasDynamicInvoke      bool
	HasEventMetadata      bool
	HasParentCommunication bool
	HasChildCommunication  bool
	NeedsJSEngine         bool
	UsesInPredicate       bool
	HasTransitionActions  bool

	// EventMetadataFields records which _event.* accessors are actually
	// referenced by a guard, so the generator can size only what's used.
	// Supplements spec.md's single HasEventMetadata flag (see SPEC_FULL.md §C.1).
	EventMetadataFields map[string]bool
}

// New creates an empty Model with its maps initialized.
func New(name string) *Model {
	return &Model{
		Name:                  name,
		Binding:               BindingEarly,
		DatamodelType:         "ecmascript",
		stateIndex:            make(map[string]*State),
		Events:                make(map[string]struct{}),
		HistoryStates:         make(map[string]*HistoryState),
		HistoryDefaultTargets: make(map[string]string),
		ParallelRegions:       make(map[string][]string),
		EventMetadataFields:   make(map[string]bool),
	}
}

// AddState appends a state in document order and indexes it by id.
// Duplicate ids overwrite the index entry but both copies remain in
// States; §8 invariant 1 is the caller's responsibility to uphold by
// construction (the builder never emits duplicate ids for well-formed
// documents; deferred per §7).
func (m *Model) AddState(s *State) {
	m.States = append(m.States, s)
	m.stateIndex[s.ID] = s
}

// State looks up a state by id. Returns nil, false if absent.
func (m *Model) State(id string) (*State, bool) {
	s, ok := m.stateIndex[id]
	return s, ok
}

// AddEvent records a concrete (non-wildcard) event name.
func (m *Model) AddEvent(name string) {
	if name == "" {
		return
	}
	m.Events[name] = struct{}{}
}

// IsWildcardEvent reports whether an event token is a wildcard or a
// prefix pattern excluded from the concrete event set (§3).
func IsWildcardEvent(token string) bool {
	switch token {
	case "*", ".*", "_*":
		return true
	}
	return len(token) >= 2 && token[len(token)-2:] == ".*"
}
