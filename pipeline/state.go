package pipeline

import "fmt"

// State is a document's position in the processing state machine
type State int

const (
	Received State = iota
	Extracting
	Structuring
	Embedding
	Assembled
	Failed
)

// String returns the upper-case state name
func (s State) String() string {
	switch s {
	case Received:
		return "RECEIVED"
	case Extracting:
		return "EXTRACTING"
	case Structuring:
		return "STRUCTURING"
	case Embedding:
		return "EMBEDDING"
	case Assembled:
		return "ASSEMBLED"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == Assembled || s == Failed
}

var transitions = map[State][]State{
	Received:    {Extracting, Failed},
	Extracting:  {Structuring, Failed},
	Structuring: {Embedding, Failed},
	Embedding:   {Assembled, Failed},
}

// canTransition reports whether from → to is a legal edge
func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transition moves r to the next state. An illegal edge is a programming
// error and panics.
func (r *Result) transition(to State) {
	if !canTransition(r.State, to) {
		panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", r.State, to))
	}
	r.State = to
	r.States = append(r.States, to)
}
