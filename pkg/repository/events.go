package repository

import (
	"github.com/mandelsoft/cimrepository/pkg/events"
)

const (
	OP_CREATED  = "created"
	OP_MODIFIED = "modified"
	OP_DELETED  = "deleted"
)

// Event reports a successful modification of the repository.
// Type is one of the record types, Name is the namespace name, the
// qualifier or class name or the instance path.
type Event struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Operation string `json:"operation"`
}

var _ events.Id = Event{}

func (e Event) GetType() string {
	return e.Type
}

func (e Event) GetNamespace() string {
	return e.Namespace
}

type EventHandler = events.EventHandler[Event]

// RegisterHandler registers a handler for events of a type and the
// given namespaces. The empty type selects all types, no namespace
// selects all namespaces. Handlers are called asynchronously in
// the order of the modifications.
func (r *Repository) RegisterHandler(h EventHandler, typ string, nss ...string) {
	r.events.RegisterHandler(h, typ, nss...)
}

func (r *Repository) UnregisterHandler(h EventHandler, typ string, nss ...string) {
	r.events.UnregisterHandler(h, typ, nss...)
}

func (r *Repository) trigger(typ, ns, name, op string) {
	r.events.TriggerEvent(Event{Type: typ, Namespace: ns, Name: name, Operation: op})
}
