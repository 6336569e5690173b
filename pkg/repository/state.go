package repository

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mandelsoft/cimrepository/pkg/association"
	"github.com/mandelsoft/cimrepository/pkg/cim"
)

// nsState holds the tables of a namespace. It is guarded by the
// lock of its namespace.
type nsState struct {
	name       string
	qualifiers map[string]*cim.QualifierDecl
	classes    map[string]*cim.Class
	// children maps a superclass name ("" for root classes) to the
	// names of the classes of this namespace directly derived from it.
	children       map[string]sets.Set[string]
	instances      map[string]*cim.Instance
	classInstances map[string]sets.Set[string]
	assoc          *association.Index
	classAssoc     *association.Index
}

func newState(name string) *nsState {
	return &nsState{
		name:           name,
		qualifiers:     map[string]*cim.QualifierDecl{},
		classes:        map[string]*cim.Class{},
		children:       map[string]sets.Set[string]{},
		instances:      map[string]*cim.Instance{},
		classInstances: map[string]sets.Set[string]{},
		assoc:          association.New(),
		classAssoc:     association.New(),
	}
}

func (s *nsState) isEmpty() bool {
	return len(s.classes) == 0 && len(s.instances) == 0
}

func (s *nsState) addClass(c *cim.Class) {
	k := key(c.Name)
	s.classes[k] = c
	sk := key(c.SuperClass)
	if s.children[sk] == nil {
		s.children[sk] = sets.New[string]()
	}
	s.children[sk].Insert(k)

	if c.IsAssociation() {
		var refs []association.Reference
		for _, p := range c.ReferenceProperties() {
			if p.ReferenceClass != "" {
				refs = append(refs, association.Reference{Role: p.Name, Target: cim.NewClassPath(p.ReferenceClass)})
			}
		}
		s.classAssoc.Add(c.Path(), c.Name, refs...)
	}
}

func (s *nsState) removeClass(name string) *cim.Class {
	k := key(name)
	c := s.classes[k]
	if c == nil {
		return nil
	}
	delete(s.classes, k)
	sk := key(c.SuperClass)
	if set := s.children[sk]; set != nil {
		set.Delete(k)
		if set.Len() == 0 {
			delete(s.children, sk)
		}
	}
	s.classAssoc.Remove(c.Path())
	return c
}

func (s *nsState) hasChildren(name string) bool {
	return s.children[key(name)].Len() > 0
}

func (s *nsState) hasInstances(name string) bool {
	return s.classInstances[key(name)].Len() > 0
}

// addInstance adds a resolved instance with its namespace-free path.
func (s *nsState) addInstance(i *cim.Instance, class *cim.Class) {
	pk := i.Path.Key()
	ck := key(i.ClassName)
	s.instances[pk] = i
	if s.classInstances[ck] == nil {
		s.classInstances[ck] = sets.New[string]()
	}
	s.classInstances[ck].Insert(pk)

	if class.IsAssociation() {
		var refs []association.Reference
		for _, p := range i.Properties {
			if !p.IsReference() || p.Value.IsNull() {
				continue
			}
			target, err := p.Value.GetReference()
			if err != nil {
				continue
			}
			refs = append(refs, association.Reference{Role: p.Name, Target: target.Normalize(s.name)})
		}
		s.assoc.Add(i.Path, class.Name, refs...)
	}
}

func (s *nsState) removeInstance(p cim.ObjectPath) *cim.Instance {
	pk := p.Key()
	i := s.instances[pk]
	if i == nil {
		return nil
	}
	delete(s.instances, pk)
	ck := key(i.ClassName)
	if set := s.classInstances[ck]; set != nil {
		set.Delete(pk)
		if set.Len() == 0 {
			delete(s.classInstances, ck)
		}
	}
	s.assoc.Remove(i.Path)
	return i
}
