package events

import (
	"strings"
	"time"
)

// Kind names an event as "<namespace>.<name>", for example "speech.rendered".
type Kind string

// Namespace returns the part of the kind before the first dot.
func (k Kind) Namespace() string {
	namespace, _, _ := strings.Cut(string(k), ".")
	return namespace
}

// Event is implemented by every orchestration event.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the fields every event shares. Events embed it.
type Base struct {
	kind       Kind
	occurredAt time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, occurredAt: time.Now()}
}

func (b Base) Kind() Kind { return b.kind }

// Timestamp is when the event was created, not when a handler saw it.
func (b Base) Timestamp() time.Time { return b.occurredAt }
