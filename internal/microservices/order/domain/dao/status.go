package dao

type Status string

const (
	StatusNew       Status = "new"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var allowed = map[Status][]Status{
	StatusNew:       {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := allowed[s]
	return ok
}

// CanTransition reports whether an order in status from may move to status to.
func CanTransition(from, to Status) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from s in one step.
func (s Status) Next() []Status {
	return append([]Status(nil), allowed[s]...)
}

func (s Status) Terminal() bool { return s.Valid() && len(allowed[s]) == 0 }

// Active is true for orders the kitchen still has to deal with.
func (s Status) Active() bool {
	return s == StatusNew || s == StatusPreparing || s == StatusReady
}
