// Package statement models the append-only learning record log: who did
// what to which object, with what result.
package statement

import (
	"time"

	"github.com/google/uuid"
)

// Verb is an action identified by IRI.
type Verb struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

const adlVerbs = "http://adlnet.gov/expapi/verbs/"

var (
	Launched    = Verb{ID: adlVerbs + "launched", Display: "launched"}
	Initialized = Verb{ID: adlVerbs + "initialized", Display: "initialized"}
	Completed   = Verb{ID: adlVerbs + "completed", Display: "completed"}
	Passed      = Verb{ID: adlVerbs + "passed", Display: "passed"}
	Mastered    = Verb{ID: adlVerbs + "mastered", Display: "mastered"}
	Progressed  = Verb{ID: adlVerbs + "progressed", Display: "progressed"}
	Experienced = Verb{ID: adlVerbs + "experienced", Display: "experienced"}
)

// Object is the target of a statement.
type Object struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Result is the outcome attached to a statement.
type Result struct {
	Score      *float64       `json:"score,omitempty"`
	Success    *bool          `json:"success,omitempty"`
	Completion *bool          `json:"completion,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Statement is one immutable learning record.
type Statement struct {
	ID        uuid.UUID `json:"id"`
	Actor     Actor     `json:"actor"`
	Verb      Verb      `json:"verb"`
	Object    Object    `json:"object"`
	Result    *Result   `json:"result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// Sequence is assigned by the store on append.
	Sequence int64 `json:"sequence,omitempty"`
}

// New returns a statement with a fresh id.
func New(actor Actor, verb Verb, object Object, result *Result, at time.Time) Statement {
	return Statement{
		ID:        uuid.New(),
		Actor:     actor,
		Verb:      verb,
		Object:    object,
		Result:    result,
		Timestamp: at.UTC(),
	}
}
