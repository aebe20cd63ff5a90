package comm

import (
	"encoding/json"
	"fmt"

	"github.com/golang/glog"
)

// Event is a named push message from the remote side.
type Event struct {
	Name   string
	Params map[string]json.RawMessage
	raw    json.RawMessage
}

// Decode unmarshals the event parameters into v.
func (e Event) Decode(v any) error {
	raw := e.raw
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode event %s: %w", e.Name, err)
	}
	return nil
}

// Emitter fans out one named event to its listeners, in subscription order.
type Emitter struct {
	name      string
	expected  []string
	listeners listenerSet[Event]
}

// Name returns the event name.
func (em *Emitter) Name() string {
	return em.name
}

// Subscribe registers fn and returns a function that removes it.
func (em *Emitter) Subscribe(fn func(Event)) (unsubscribe func()) {
	return em.listeners.add(fn)
}

// Listeners returns the number of subscribed listeners.
func (em *Emitter) Listeners() int {
	return em.listeners.len()
}

func (em *Emitter) emit(env *Envelope) {
	ev := Event{Name: em.name, raw: env.Params}
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, &ev.Params); err != nil {
			glog.V(1).Infof("[comm]event %s params are not an object: %s\n", em.name, err)
		}
	}

	for _, field := range em.expected {
		if _, ok := ev.Params[field]; !ok {
			glog.V(1).Infof("[comm]event %s missing field %q\n", em.name, field)
		}
	}

	em.listeners.dispatch(ev)
}
