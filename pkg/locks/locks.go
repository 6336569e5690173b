// Package locks provides reader/writer locks for a dynamic set of
// named elements. Multiple elements are always locked in lexical
// order of their keys.
package locks

import (
	"sort"
	"sync"
)

type Mode int

const (
	Read Mode = iota
	Write
)

func (m Mode) String() string {
	if m == Write {
		return "write"
	}
	return "read"
}

// Request describes a lock requested for an element.
type Request struct {
	Key  string
	Mode Mode
}

func R(key string) Request {
	return Request{Key: key, Mode: Read}
}

func W(key string) Request {
	return Request{Key: key, Mode: Write}
}

type Unlocker func()

type elementLock struct {
	sync.RWMutex
	refs int
}

type ElementLocks struct {
	lock  sync.Mutex
	locks map[string]*elementLock
}

func NewElementLocks() *ElementLocks {
	return &ElementLocks{locks: map[string]*elementLock{}}
}

func (e *ElementLocks) ref(key string) *elementLock {
	e.lock.Lock()
	defer e.lock.Unlock()

	l := e.locks[key]
	if l == nil {
		l = &elementLock{}
		e.locks[key] = l
	}
	l.refs++
	return l
}

func (e *ElementLocks) unref(key string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	l := e.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(e.locks, key)
	}
}

// Size returns the number of elements currently locked or waiting.
func (e *ElementLocks) Size() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.locks)
}

// Acquire locks all requested elements in lexical key order. An
// element requested multiple times is locked once, a write request
// wins over read requests. The returned function releases all locks.
func (e *ElementLocks) Acquire(reqs ...Request) Unlocker {
	modes := map[string]Mode{}
	for _, r := range reqs {
		if m, ok := modes[r.Key]; !ok || m < r.Mode {
			modes[r.Key] = r.Mode
		}
	}
	keys := make([]string, 0, len(modes))
	for k := range modes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	held := make([]*elementLock, len(keys))
	for i, k := range keys {
		l := e.ref(k)
		held[i] = l
		if modes[k] == Write {
			l.Lock()
		} else {
			l.RLock()
		}
	}

	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			k := keys[i]
			if modes[k] == Write {
				held[i].Unlock()
			} else {
				held[i].RUnlock()
			}
			e.unref(k)
		}
	}
}

func (e *ElementLocks) Lock(keys ...string) Unlocker {
	return e.Acquire(requests(Write, keys)...)
}

func (e *ElementLocks) RLock(keys ...string) Unlocker {
	return e.Acquire(requests(Read, keys)...)
}

func requests(m Mode, keys []string) []Request {
	r := make([]Request, len(keys))
	for i, k := range keys {
		r[i] = Request{Key: k, Mode: m}
	}
	return r
}
