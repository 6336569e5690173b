// Package events dispatches events to handlers registered for
// an event type and a namespace.
package events

import (
	"sync"
)

type Id interface {
	GetType() string
	GetNamespace() string
}

type EventHandler[I Id] interface {
	HandleEvent(I)
}

// HandlerRegistration registers handlers for a type and a list of
// namespaces. The empty type or namespace matches all types or
// namespaces.
type HandlerRegistration[I Id] interface {
	RegisterHandler(h EventHandler[I], kind string, nss ...string)
	UnregisterHandler(h EventHandler[I], kind string, nss ...string)
}

type HandlerRegistry[I Id] interface {
	HandlerRegistration[I]

	// TriggerEvent queues an event. Events are delivered
	// in trigger order by a dedicated goroutine.
	TriggerEvent(I)
	// Close stops the delivery. Pending events are discarded.
	Close()
}

type eventhandlers[I Id] []EventHandler[I]
type namespaces[I Id] map[string]eventhandlers[I]

type registry[I Id] struct {
	lock   sync.Mutex
	cond   *sync.Cond
	closed bool
	queue  []I
	types  map[string]namespaces[I]
}

var _ HandlerRegistry[Id] = (*registry[Id])(nil)

func NewHandlerRegistry[I Id]() HandlerRegistry[I] {
	r := &registry[I]{
		types: map[string]namespaces[I]{},
	}
	r.cond = sync.NewCond(&r.lock)
	go r.run()
	return r
}

func index[I Id](list []EventHandler[I], h EventHandler[I]) int {
	for i, e := range list {
		if e == h {
			return i
		}
	}
	return -1
}

func (r *registry[I]) RegisterHandler(h EventHandler[I], kind string, nss ...string) {
	if len(nss) == 0 {
		nss = []string{""}
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	nsmap := r.types[kind]
	if nsmap == nil {
		nsmap = namespaces[I]{}
		r.types[kind] = nsmap
	}
	for _, ns := range nss {
		if index(nsmap[ns], h) < 0 {
			nsmap[ns] = append(nsmap[ns], h)
		}
	}
}

func (r *registry[I]) UnregisterHandler(h EventHandler[I], kind string, nss ...string) {
	if len(nss) == 0 {
		nss = []string{""}
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	nsmap := r.types[kind]
	if nsmap == nil {
		return
	}
	for _, ns := range nss {
		handlers := nsmap[ns]
		if i := index(handlers, h); i >= 0 {
			handlers = append(handlers[:i:i], handlers[i+1:]...)
		}
		if len(handlers) > 0 {
			nsmap[ns] = handlers
		} else {
			delete(nsmap, ns)
		}
	}
	if len(nsmap) == 0 {
		delete(r.types, kind)
	}
}

// getHandlers must be called with the lock held.
func (r *registry[I]) getHandlers(id I) []EventHandler[I] {
	var handlers []EventHandler[I]

	add := func(list eventhandlers[I]) {
		for _, h := range list {
			if index(handlers, h) < 0 {
				handlers = append(handlers, h)
			}
		}
	}
	for _, kind := range []string{id.GetType(), ""} {
		nsmap := r.types[kind]
		if len(nsmap) == 0 {
			continue
		}
		if ns := id.GetNamespace(); ns != "" {
			add(nsmap[ns])
		}
		add(nsmap[""])
		if id.GetType() == "" {
			break
		}
	}
	return handlers
}

func (r *registry[I]) TriggerEvent(id I) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return
	}
	r.queue = append(r.queue, id)
	r.cond.Signal()
}

func (r *registry[I]) Close() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.closed = true
	r.queue = nil
	r.cond.Broadcast()
}

func (r *registry[I]) run() {
	r.lock.Lock()
	for {
		for len(r.queue) == 0 && !r.closed {
			r.cond.Wait()
		}
		if r.closed {
			r.lock.Unlock()
			return
		}
		id := r.queue[0]
		r.queue = r.queue[1:]
		handlers := r.getHandlers(id)
		r.lock.Unlock()

		for _, h := range handlers {
			h.HandleEvent(id)
		}
		r.lock.Lock()
	}
}
