package odm

import "sync"

// Listener receives the arguments passed to Emit.
type Listener func(args ...any)

type listener struct {
	fn   Listener
	once bool
}

type emitter struct {
	mu        sync.Mutex
	listeners map[string][]*listener
}

func (e *emitter) add(event string, l *listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	e.listeners[event] = append(e.listeners[event], l)
}

// On registers fn for every emission of event.
func (e *emitter) On(event string, fn Listener) {
	e.add(event, &listener{fn: fn})
}

// Once registers fn for the next emission of event only.
func (e *emitter) Once(event string, fn Listener) {
	e.add(event, &listener{fn: fn, once: true})
}

// Off removes every listener of event.
func (e *emitter) Off(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, event)
}

// ListenerCount the number of listeners registered for event.
func (e *emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// Emit calls the listeners of event in registration order and reports whether
// there were any. Listeners run outside the lock and may register others.
func (e *emitter) Emit(event string, args ...any) bool {
	e.mu.Lock()
	current := e.listeners[event]
	if len(current) == 0 {
		e.mu.Unlock()
		return false
	}
	kept := current[:0:0]
	for _, l := range current {
		if !l.once {
			kept = append(kept, l)
		}
	}
	e.listeners[event] = kept
	e.mu.Unlock()

	for _, l := range current {
		l.fn(args...)
	}
	return true
}
