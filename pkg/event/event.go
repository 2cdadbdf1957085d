// Package event is a small in-process event dispatcher.
//
//	event.Listen(events.BasketChanged, func(p any) { ... })
//	event.Fire(events.BasketChanged, payload)
package event

import (
	"sync"

	"github.com/diybuddy/projectbuddy/pkg/logger"
)

// Name identifies an event.
type Name string

// Handler is a function that receives an event payload.
type Handler func(payload any)

var (
	mu       sync.RWMutex
	handlers = map[Name][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(name Name, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

func snapshot(name Name) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[name]))
	copy(hs, handlers[name])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners.
// A panicking listener is logged and does not stop the others.
func Fire(name Name, payload any) {
	for _, h := range snapshot(name) {
		call(name, h, payload)
	}
}

func call(name Name, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event: listener panicked", "event", string(name), "panic", r)
		}
	}()
	h(payload)
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[Name][]Handler{}
}
