// Package repository implements a CIM schema repository holding
// qualifier declarations, classes and instances in a tree of
// namespaces. All mutations are persisted to a database.Database.
package repository

import (
	"sort"
	"sync"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/events"
	"github.com/mandelsoft/cimrepository/pkg/locks"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
	"github.com/mandelsoft/cimrepository/pkg/resolver"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

type Repository struct {
	// lock guards the namespace tree and the state table.
	lock       sync.RWMutex
	nslocks    *locks.ElementLocks
	namespaces *namespace.Manager
	states     map[string]*nsState
	events     events.HandlerRegistry[Event]

	db   database.Database[database.Object]
	host string
}

// Open creates the database described by spec and
// loads the repository content from it.
func Open(spec database.Specification[database.Object], host ...string) (*Repository, error) {
	db, err := spec.Create(NewScheme())
	if err != nil {
		return nil, cimerr.Wrap(err, "cannot open database")
	}
	r, err := New(db, host...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// New creates a repository on a database created with NewScheme.
// The optional host is used for the paths returned by the repository.
func New(db database.Database[database.Object], host ...string) (*Repository, error) {
	r := &Repository{
		nslocks:    locks.NewElementLocks(),
		namespaces: namespace.New(),
		states:     map[string]*nsState{},
		db:         db,
		host:       utils.Optional(host...),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	r.events = events.NewHandlerRegistry[Event]()
	return r, nil
}

func (r *Repository) Close() error {
	r.events.Close()
	return r.db.Close()
}

func (r *Repository) Host() string {
	return r.host
}

func (r *Repository) load() error {
	nsrecs, err := r.db.ListObjects(TYPE_NAMESPACE, "")
	if err != nil {
		return cimerr.Wrap(err, "cannot load namespaces")
	}
	var pending []*namespace.Namespace
	for _, o := range nsrecs {
		if rec, ok := o.(*NamespaceRecord); ok {
			ns := rec.Spec
			pending = append(pending, &ns)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Name < pending[j].Name })
	for len(pending) > 0 {
		var next []*namespace.Namespace
		for _, ns := range pending {
			if ns.Parent != "" && !r.namespaces.Exists(ns.Parent) {
				next = append(next, ns)
				continue
			}
			if err := r.namespaces.Create(ns.Name, ns.Attributes); err != nil {
				return cimerr.Wrap(err, "cannot load namespace %q", ns.Name)
			}
			r.states[namespace.Key(ns.Name)] = newState(ns.Name)
		}
		if len(next) == len(pending) {
			return cimerr.New(cimerr.Failed, "namespace %q: parent %q not found", next[0].Name, next[0].Parent)
		}
		pending = next
	}

	qrecs, err := r.db.ListObjects(TYPE_QUALIFIER, "")
	if err != nil {
		return cimerr.Wrap(err, "cannot load qualifier declarations")
	}
	for _, o := range qrecs {
		s, err := r.recordState(o)
		if err != nil {
			return err
		}
		d := o.(*QualifierRecord).Spec
		s.qualifiers[key(d.Name)] = d
	}

	crecs, err := r.db.ListObjects(TYPE_CLASS, "")
	if err != nil {
		return cimerr.Wrap(err, "cannot load classes")
	}
	for _, o := range crecs {
		s, err := r.recordState(o)
		if err != nil {
			return err
		}
		s.addClass(o.(*ClassRecord).Spec)
	}

	irecs, err := r.db.ListObjects(TYPE_INSTANCE, "")
	if err != nil {
		return cimerr.Wrap(err, "cannot load instances")
	}
	for _, o := range irecs {
		s, err := r.recordState(o)
		if err != nil {
			return err
		}
		i := o.(*InstanceRecord).Spec
		v := r.view(s.name)
		class, ok := v.LookupClass(i.ClassName)
		if !ok {
			return cimerr.New(cimerr.Failed, "namespace %q: class %q of instance %s not found", s.name, i.ClassName, i.Path)
		}
		if err := v.normalizeInstance(i, class); err != nil {
			return cimerr.Wrap(err, "namespace %q: instance %s", s.name, i.Path)
		}
		s.addInstance(i, class)
	}
	log.Info("loaded {{namespaces}} namespaces, {{classes}} classes and {{instances}} instances",
		"namespaces", len(r.states), "classes", len(crecs), "instances", len(irecs))
	return nil
}

func (r *Repository) recordState(o database.Object) (*nsState, error) {
	s := r.states[o.GetNamespace()]
	if s == nil {
		return nil, cimerr.New(cimerr.Failed, "namespace %q of %s not found", o.GetNamespace(), database.StringId(o))
	}
	return s, nil
}

////////////////////////////////////////////////////////////////////////////////
// locking

// view provides the tables visible in a namespace. The states of
// the schema chain are ordered from the namespace to its farthest
// visible ancestor. The dependents are requested only by operations
// checking for derived elements.
type view struct {
	chain      []*nsState
	dependents []*nsState
}

var _ resolver.Context = (*view)(nil)

// view must be called with the tree lock held.
func (r *Repository) view(ns string) *view {
	chain, err := r.namespaces.SchemaChain(ns)
	if err != nil {
		return nil
	}
	v := &view{}
	for _, n := range chain {
		v.chain = append(v.chain, r.states[namespace.Key(n)])
	}
	return v
}

// dependents returns all namespaces sharing the schema of ns.
func (r *Repository) dependents(ns string) []string {
	var result []string
	for _, c := range r.namespaces.Children(ns) {
		result = append(result, c)
		result = append(result, r.dependents(c)...)
	}
	return result
}

// access acquires the tree lock for reading and the namespace lock
// with the requested mode. The visible ancestors are locked for
// reading, the dependents for reading if requested.
func (r *Repository) access(ns string, mode locks.Mode, withDependents ...bool) (*view, func(), error) {
	r.lock.RLock()

	v := r.view(ns)
	if v == nil {
		r.lock.RUnlock()
		return nil, nil, cimerr.ErrNotFound(cimerr.OBJ_NAMESPACE, ns)
	}

	reqs := []locks.Request{{Key: namespace.Key(v.chain[0].name), Mode: mode}}
	for _, s := range v.chain[1:] {
		reqs = append(reqs, locks.R(namespace.Key(s.name)))
	}
	if utils.Optional(withDependents...) {
		for _, d := range r.dependents(ns) {
			s := r.states[namespace.Key(d)]
			v.dependents = append(v.dependents, s)
			reqs = append(reqs, locks.R(namespace.Key(d)))
		}
	}
	unlock := r.nslocks.Acquire(reqs...)
	return v, func() {
		unlock()
		r.lock.RUnlock()
	}, nil
}

func (v *view) local() *nsState {
	return v.chain[0]
}

func (v *view) LookupQualifierDecl(name string) (*cim.QualifierDecl, bool) {
	for _, s := range v.chain {
		if d := s.qualifiers[key(name)]; d != nil {
			return d, true
		}
	}
	return nil, false
}

func (v *view) LookupClass(name string) (*cim.Class, bool) {
	_, c := v.lookupClass(name)
	return c, c != nil
}

func (v *view) lookupClass(name string) (*nsState, *cim.Class) {
	for _, s := range v.chain {
		if c := s.classes[key(name)]; c != nil {
			return s, c
		}
	}
	return nil, nil
}

func (v *view) getClass(name string) (*cim.Class, error) {
	if c, ok := v.LookupClass(name); ok {
		return c, nil
	}
	return nil, cimerr.ErrNotFound(cimerr.OBJ_CLASS, name)
}

// subClassNames returns the names of the classes derived from the
// given one ("" for all root classes) visible in the namespace.
func (v *view) subClassNames(name string, deep bool) []string {
	var result []string

	done := map[string]bool{}
	queue := []string{key(name)}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range v.chain {
			for _, k := range s.children[cur].UnsortedList() {
				if done[k] {
					continue
				}
				done[k] = true
				result = append(result, s.classes[k].Name)
				if deep {
					queue = append(queue, k)
				}
			}
		}
	}
	sort.Strings(result)
	return result
}

// classNames returns the class and, if deep is set, all class names
// derived from it as lower case names.
func (v *view) classNames(name string, deep bool) []string {
	result := []string{key(name)}
	if deep {
		for _, n := range v.subClassNames(name, true) {
			result = append(result, key(n))
		}
	}
	return result
}

////////////////////////////////////////////////////////////////////////////////
// persistence

func (r *Repository) store(o database.Object) error {
	if err := r.db.SetObject(o); err != nil {
		return cimerr.Wrap(err, "cannot store %s", database.StringId(o))
	}
	return nil
}

func (r *Repository) remove(id database.ObjectId) error {
	if err := r.db.DeleteObject(id); err != nil {
		return cimerr.Wrap(err, "cannot delete %s", database.StringId(id))
	}
	return nil
}

func (r *Repository) externalPath(ns string, p cim.ObjectPath) cim.ObjectPath {
	if p.Namespace() == "" {
		p = p.WithNamespace(ns)
	}
	if p.Host() == "" && r.host != "" {
		p = p.WithHost(r.host)
	}
	return p
}
