package runtime

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Types maps type names to Go struct types implementing E.
type Types[E Object] interface {
	TypeNames() []string
	HasType(t string) bool
	CreateObject(typ string) (E, error)
	Register(name string, proto E) error
}

type types[E Object] struct {
	lock  sync.RWMutex
	types map[string]reflect.Type
}

var _ Types[Object] = (*types[Object])(nil)

func NewTypes[E Object]() Types[E] {
	return newTypes[E]()
}

func newTypes[E Object]() *types[E] {
	return &types[E]{types: map[string]reflect.Type{}}
}

func (s *types[E]) Register(name string, proto E) error {
	t := reflect.TypeOf(proto)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("prototype for type %q must be a pointer to a struct", name)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.types[name] != nil {
		return fmt.Errorf("type %q already registered", name)
	}
	s.types[name] = t.Elem()
	return nil
}

func (s *types[E]) HasType(t string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.types[t] != nil
}

func (s *types[E]) CreateObject(typ string) (E, error) {
	var _nil E

	s.lock.RLock()
	t := s.types[typ]
	s.lock.RUnlock()

	if t == nil {
		return _nil, fmt.Errorf("unknown object type %q", typ)
	}
	o := reflect.New(t).Interface().(E)
	o.SetType(typ)
	return o, nil
}

func (s *types[E]) TypeNames() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	names := make([]string, 0, len(s.types))
	for n := range s.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type ElementType[P any] interface {
	Object
	*P
}

// Register registers the struct type T for the given type name.
func Register[T any, P ElementType[T], E Object](s Types[E], name string) error {
	p, ok := any(P(new(T))).(E)
	if !ok {
		return fmt.Errorf("%s does not implement %s", reflect.TypeOf(P(nil)), reflect.TypeOf((*E)(nil)).Elem())
	}
	return s.Register(name, p)
}

func MustRegister[T any, P ElementType[T], E Object](s Types[E], name string) {
	if err := Register[T, P, E](s, name); err != nil {
		panic(err)
	}
}
