package lr

import (
	"fmt"
	"strconv"
)

// Action types. Goto entries carry no type tag and render as a bare state
// number.
const (
	ActionShift  = 's'
	ActionReduce = 'r'
	ActionGoto   = 0
)

// Action is one parse-table cell. Value is a state index for shifts and
// gotos, a rule index for reductions. Reducing by rule 0 accepts.
type Action struct {
	Type  byte
	Value int
}

func (a Action) String() string {
	if a.Type == ActionGoto {
		return strconv.Itoa(a.Value)
	}
	return string(a.Type) + strconv.Itoa(a.Value)
}

// State maps grammar symbols to actions.
type State struct {
	Index   int
	Mapping map[string]Action
}

// Table is the ACTION/GOTO table of a grammar, one state per kernel.
type Table struct {
	Closures *ClosureTable
	States   []*State
}

// ConflictError reports a state and symbol with two competing actions. A
// grammar producing one is rejected outright.
type ConflictError struct {
	State    int
	Symbol   string
	Existing Action
	New      Action
}

func (e *ConflictError) Error() string {
	kind := "reduce/reduce"
	if e.Existing.Type == ActionShift || e.New.Type == ActionShift {
		kind = "shift/reduce"
	}
	return fmt.Sprintf("%s conflict in state %d on %q: %s vs %s",
		kind, e.State, e.Symbol, e.Existing, e.New)
}

// NewTable fills states from the closure table. Shift and goto entries come
// from kernel transitions, reduce entries from reducible closure items per
// lookahead.
func NewTable(ct *ClosureTable) (*Table, error) {
	t := &Table{Closures: ct}
	for _, kernel := range ct.Kernels {
		state := &State{Index: kernel.Index, Mapping: map[string]Action{}}
		for _, key := range kernel.Keys {
			action := Action{Type: ActionGoto, Value: kernel.Gotos[key]}
			if ct.Grammar.IsTerminal(key) {
				action.Type = ActionShift
			}
			if err := state.insert(key, action); err != nil {
				return nil, err
			}
		}
		for _, item := range kernel.Closure {
			if !item.reducible() {
				continue
			}
			for _, la := range item.Lookaheads {
				if err := state.insert(la, Action{Type: ActionReduce, Value: item.Rule.Index}); err != nil {
					return nil, err
				}
			}
		}
		t.States = append(t.States, state)
	}
	return t, nil
}

func (s *State) insert(symbol string, action Action) error {
	if existing, ok := s.Mapping[symbol]; ok {
		if existing == action {
			return nil
		}
		return &ConflictError{State: s.Index, Symbol: symbol, Existing: existing, New: action}
	}
	s.Mapping[symbol] = action
	return nil
}
