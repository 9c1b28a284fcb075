package common

// ChangeVariant names the kind of change a storage reports to its subscribers.
type ChangeVariant string

type Change interface {
	Variant() ChangeVariant
}

type ChangesBroadcaster[CT Change] struct {
	*Broadcaster[CT]
}

func NewChangesBroadcaster[CT Change]() *ChangesBroadcaster[CT] {
	return &ChangesBroadcaster[CT]{
		NewBroadcaster[CT](),
	}
}

// SubscriberFunc adapts a plain callback to the Subscriber interface.
type SubscriberFunc[CT any] func(change CT)

func (f SubscriberFunc[CT]) Receive(change CT) {
	f(change)
}
