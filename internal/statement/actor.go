package statement

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidActor is returned when an actor payload lacks a usable
// identity.
var ErrInvalidActor = errors.New("invalid actor")

// Account identifies an actor by a user name on a system.
type Account struct {
	HomePage string `json:"homePage"`
	Name     string `json:"name"`
}

// Actor is the agent a statement is about.
type Actor struct {
	ObjectType string   `json:"objectType,omitempty"`
	Name       string   `json:"name,omitempty"`
	Mbox       string   `json:"mbox,omitempty"`
	Account    *Account `json:"account,omitempty"`
}

// ParseActor decodes and validates a JSON agent. The identity is never
// defaulted: a payload without exactly one of mbox or account fails.
func ParseActor(data []byte) (Actor, error) {
	var a Actor
	if err := json.Unmarshal(data, &a); err != nil {
		return Actor{}, errors.Wrapf(ErrInvalidActor, "decode: %v", err)
	}
	if err := a.Validate(); err != nil {
		return Actor{}, err
	}
	if a.ObjectType == "" {
		a.ObjectType = "Agent"
	}
	return a, nil
}

// Validate checks that the actor carries one well-formed identifier.
func (a Actor) Validate() error {
	if a.ObjectType != "" && a.ObjectType != "Agent" {
		return errors.Wrapf(ErrInvalidActor, "unsupported objectType %q", a.ObjectType)
	}
	switch {
	case a.Mbox != "" && a.Account != nil:
		return errors.Wrap(ErrInvalidActor, "mbox and account are mutually exclusive")
	case a.Mbox != "":
		if !strings.HasPrefix(a.Mbox, "mailto:") || len(a.Mbox) == len("mailto:") {
			return errors.Wrapf(ErrInvalidActor, "mbox %q must be a mailto IRI", a.Mbox)
		}
	case a.Account != nil:
		if a.Account.HomePage == "" || a.Account.Name == "" {
			return errors.Wrap(ErrInvalidActor, "account requires homePage and name")
		}
	default:
		return errors.Wrap(ErrInvalidActor, "one of mbox or account is required")
	}
	return nil
}

// Key returns a stable identifier for the actor.
func (a Actor) Key() string {
	if a.Account != nil {
		return a.Account.HomePage + "|" + a.Account.Name
	}
	return a.Mbox
}
