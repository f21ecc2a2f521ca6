package catclient

import (
	"github.com/havrydotdev/catclient/pkg/launcher"
	"github.com/havrydotdev/catclient/pkg/mc"
)

type EventKind int

const (
	EventStatus EventKind = iota
	EventProgress
	EventWarning
	EventDone
	EventError
)

// Event is posted by a background operation. Every operation ends with
// exactly one EventDone or EventError.
type Event struct {
	Kind    EventKind
	Stage   mc.Stage
	Done    int
	Total   int
	Message string
	Err     error
	Process *launcher.Process
}

func (e Event) Final() bool {
	return e.Kind == EventDone || e.Kind == EventError
}
