package repository

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/locks"
	"github.com/mandelsoft/cimrepository/pkg/resolver"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

// CreateClass resolves and stores a new class. The superclass may be
// defined in the namespace or in a visible ancestor.
func (r *Repository) CreateClass(ns string, class *cim.Class) error {
	v, unlock, err := r.access(ns, locks.Write, true)
	if err != nil {
		return err
	}
	defer unlock()

	s := v.local()
	if err := r.namespaces.CheckUpdatesAllowed(s.name); err != nil {
		return err
	}
	if _, ok := v.LookupClass(class.Name); ok {
		return cimerr.ErrAlreadyExists(cimerr.OBJ_CLASS, class.Name)
	}
	for _, d := range v.dependents {
		if d.classes[key(class.Name)] != nil {
			return cimerr.New(cimerr.AlreadyExists, "class %q already exists in dependent namespace %q", class.Name, d.name)
		}
	}

	resolved, err := resolver.ResolveClass(v, class)
	if err != nil {
		return err
	}
	if err := r.store(newClassRecord(s.name, resolved)); err != nil {
		return err
	}
	s.addClass(resolved)
	log.Debug("created class {{class}} in {{namespace}}", "class", resolved.Name, "namespace", s.name)
	r.trigger(TYPE_CLASS, s.name, resolved.Name, OP_CREATED)
	return nil
}

// ModifyClass replaces a class of the namespace. Classes with
// subclasses cannot be modified and the superclass cannot be changed.
func (r *Repository) ModifyClass(ns string, class *cim.Class) error {
	v, unlock, err := r.access(ns, locks.Write, true)
	if err != nil {
		return err
	}
	defer unlock()

	s := v.local()
	if err := r.namespaces.CheckUpdatesAllowed(s.name); err != nil {
		return err
	}
	old := s.classes[key(class.Name)]
	if old == nil {
		return cimerr.ErrNotFound(cimerr.OBJ_CLASS, class.Name)
	}
	if key(old.SuperClass) != key(class.SuperClass) {
		return cimerr.New(cimerr.InvalidClass, "class %q: superclass cannot be changed from %q to %q", old.Name, old.SuperClass, class.SuperClass)
	}
	if r.hasSubClasses(v, class.Name) {
		return cimerr.New(cimerr.ClassHasChildren, "class %q has subclasses", old.Name)
	}

	resolved, err := resolver.ResolveClass(v, class)
	if err != nil {
		return err
	}
	if !compatible(old, resolved) {
		if err := r.checkNoInstances(v, old.Name); err != nil {
			return err
		}
	}
	if err := r.store(newClassRecord(s.name, resolved)); err != nil {
		return err
	}
	s.removeClass(old.Name)
	s.addClass(resolved)
	log.Debug("modified class {{class}} in {{namespace}}", "class", resolved.Name, "namespace", s.name)
	r.trigger(TYPE_CLASS, s.name, resolved.Name, OP_MODIFIED)
	return nil
}

// DeleteClass deletes a class without subclasses and instances.
func (r *Repository) DeleteClass(ns, name string) error {
	v, unlock, err := r.access(ns, locks.Write, true)
	if err != nil {
		return err
	}
	defer unlock()

	s := v.local()
	if err := r.namespaces.CheckUpdatesAllowed(s.name); err != nil {
		return err
	}
	c := s.classes[key(name)]
	if c == nil {
		return cimerr.ErrNotFound(cimerr.OBJ_CLASS, name)
	}
	if r.hasSubClasses(v, name) {
		return cimerr.New(cimerr.ClassHasChildren, "class %q has subclasses", c.Name)
	}
	if err := r.checkNoInstances(v, c.Name); err != nil {
		return err
	}
	if err := r.remove(classId(s.name, name)); err != nil {
		return err
	}
	s.removeClass(name)
	log.Debug("deleted class {{class}} in {{namespace}}", "class", c.Name, "namespace", s.name)
	r.trigger(TYPE_CLASS, s.name, c.Name, OP_DELETED)
	return nil
}

func (r *Repository) checkNoInstances(v *view, name string) error {
	for _, d := range append([]*nsState{v.local()}, v.dependents...) {
		if d.hasInstances(name) {
			return cimerr.New(cimerr.ClassHasInstances, "class %q has instances in namespace %q", name, d.name)
		}
	}
	return nil
}

// compatible reports whether the instances of a class stay valid for
// the modified class: same association kind and the same properties
// with equal types and key flags. Qualifiers, defaults and methods
// may change.
func compatible(old, mod *cim.Class) bool {
	if old.IsAssociation() != mod.IsAssociation() || len(old.Properties) != len(mod.Properties) {
		return false
	}
	for i := range old.Properties {
		o := &old.Properties[i]
		m, ok := mod.Properties.Get(o.Name)
		if !ok {
			return false
		}
		if o.Type() != m.Type() || o.IsArray() != m.IsArray() || o.ArraySize != m.ArraySize ||
			o.IsKey() != m.IsKey() || !strings.EqualFold(o.ReferenceClass, m.ReferenceClass) {
			return false
		}
	}
	return true
}

func (r *Repository) hasSubClasses(v *view, name string) bool {
	for _, d := range append([]*nsState{v.local()}, v.dependents...) {
		if d.hasChildren(name) {
			return true
		}
	}
	return false
}

// GetClass returns a class visible in the namespace.
func (r *Repository) GetClass(ns, name string, opts ...Options) (*cim.Class, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := v.getClass(name)
	if err != nil {
		return nil, err
	}
	o := utils.Optional(opts...)
	return o.Class(c), nil
}

// EnumerateClassNames returns the names of the classes derived from
// the given class, all root classes for an empty class name. With
// deep all transitively derived classes are returned.
func (r *Repository) EnumerateClassNames(ns, className string, deep bool) ([]string, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if className != "" {
		if _, err := v.getClass(className); err != nil {
			return nil, err
		}
	}
	return v.subClassNames(className, deep), nil
}

func (r *Repository) EnumerateClasses(ns, className string, deep bool, opts ...Options) ([]*cim.Class, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if className != "" {
		if _, err := v.getClass(className); err != nil {
			return nil, err
		}
	}
	o := utils.Optional(opts...)
	var result []*cim.Class
	for _, n := range v.subClassNames(className, deep) {
		c, _ := v.LookupClass(n)
		result = append(result, o.Class(c))
	}
	return result, nil
}

// GetSuperClassNames returns the superclass chain of a class
// starting with its direct superclass.
func (r *Repository) GetSuperClassNames(ns, className string) ([]string, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := v.getClass(className)
	if err != nil {
		return nil, err
	}
	return v.superClassNames(c), nil
}

func (v *view) superClassNames(c *cim.Class) []string {
	var result []string
	for c.SuperClass != "" {
		s, ok := v.LookupClass(c.SuperClass)
		if !ok {
			break
		}
		result = append(result, s.Name)
		c = s
	}
	return result
}
