package spacedrep

import (
	"encoding"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State is an item's position in the new -> learning -> review <->
// relearning lifecycle.
type State int

const (
	StateNew        State = iota + 1 // Never reviewed.
	StateLearning                    // Stability below one day.
	StateReview                      // Long-term review cycle.
	StateRelearning                  // Forgotten after a lapse.
)

var stateNames = [...]string{
	StateNew:        "new",
	StateLearning:   "learning",
	StateReview:     "review",
	StateRelearning: "relearning",
}

var (
	_ fmt.Stringer             = State(0)
	_ encoding.TextMarshaler   = State(0)
	_ encoding.TextUnmarshaler = (*State)(nil)
)

func (s State) isValid() bool {
	return s >= StateNew && s <= StateRelearning
}

func (s State) String() string {
	if s.isValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState converts a state name into a State.
func ParseState(name string) (State, error) {
	for s := StateNew; s <= StateRelearning; s++ {
		if strings.EqualFold(name, stateNames[s]) {
			return s, nil
		}
	}
	return 0, errors.Errorf("spacedrep: invalid state: %q", name)
}

// MarshalText implements encoding.TextMarshaler. An unset state encodes
// as new.
func (s State) MarshalText() ([]byte, error) {
	if !s.isValid() {
		s = StateNew
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
