package emit

// NullEmitter implements Emitter by discarding all events.
//
// Use it to disable event emission without changing wiring. It is safe
// for concurrent use and has zero overhead.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
