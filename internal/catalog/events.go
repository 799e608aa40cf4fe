package catalog

import "time"

// Mutation operations reported to notifiers and the audit log.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReorder = "reorder"
)

// Warning describes a non-fatal storage drift, such as a renamed app whose old
// file could not be removed.
type Warning struct {
	Op    string
	Path  string
	AppID string
	Err   error
}

// WarningFunc receives warnings. It must not block.
type WarningFunc func(Warning)

// ChangeEvent is emitted after a mutation has been persisted.
type ChangeEvent struct {
	Op string    `json:"op"`
	ID string    `json:"id,omitempty"`
	At time.Time `json:"at"`
}

// Notifier is implemented by whatever pushes catalog changes to clients.
type Notifier interface {
	CatalogChanged(ChangeEvent)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ChangeEvent)

func (f NotifierFunc) CatalogChanged(ev ChangeEvent) { f(ev) }

func discardWarning(Warning) {}

// Notifiers delivers each event to every member in order.
type Notifiers []Notifier

func (ns Notifiers) CatalogChanged(ev ChangeEvent) {
	for _, n := range ns {
		if n != nil {
			n.CatalogChanged(ev)
		}
	}
}

// Warnings delivers each warning to every member in order.
func Warnings(fns ...WarningFunc) WarningFunc {
	return func(w Warning) {
		for _, fn := range fns {
			if fn != nil {
				fn(w)
			}
		}
	}
}
