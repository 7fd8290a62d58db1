package serialization

import "time"

// Hooks receives one event per top-level serialization call.
type Hooks interface {
	// OnSerialize is called after a value was written. bytes is the output
	// size; err is the write failure, if any.
	OnSerialize(typeName string, bytes int, duration time.Duration, err error)

	// OnDeserialize is called after a document was read.
	OnDeserialize(typeName string, duration time.Duration, result *DeserializationResult)
}

// NoopHooks is a no-op implementation of Hooks.
type NoopHooks struct{}

func (NoopHooks) OnSerialize(string, int, time.Duration, error)               {}
func (NoopHooks) OnDeserialize(string, time.Duration, *DeserializationResult) {}
