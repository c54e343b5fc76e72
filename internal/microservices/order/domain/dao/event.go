package dao

type EventKind string

const (
	EventNewOrder     EventKind = "new-order"
	EventOrderUpdated EventKind = "order-updated"
	// EventHeartbeat is the payload-less keep-alive; never a domain event.
	EventHeartbeat EventKind = "heartbeat"
)

type Event struct {
	Kind  EventKind `json:"kind"`
	Order *Order    `json:"order,omitempty"`
}

func (e Event) IsHeartbeat() bool { return e.Kind == EventHeartbeat }
