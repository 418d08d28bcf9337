package tablefsm

// EventData is the payload carried by an event to the callbacks of the
// target state. Each callback declares the concrete type it expects.
type EventData any

// NoEventData is the payload of events that carry nothing. A nil payload is
// replaced by NoEventData before dispatch.
type NoEventData struct{}

// Releaser is implemented by payloads that must be returned to an allocator
// once the engine is done with them.
type Releaser interface {
	Release()
}

func orNoEventData(data EventData) EventData {
	if data == nil {
		return NoEventData{}
	}
	return data
}

// releaseData hands a consumed payload back to its allocator, if it has one
func releaseData(data EventData) {
	if r, ok := data.(Releaser); ok {
		r.Release()
	}
}
