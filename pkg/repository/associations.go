package repository

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mandelsoft/cimrepository/pkg/association"
	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	"github.com/mandelsoft/cimrepository/pkg/locks"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

// AssociationFilter restricts association queries. Class names
// match the given class and all classes derived from it, role names
// are compared case-insensitively. Empty fields match everything.
type AssociationFilter struct {
	AssocClass  string `json:"assocClass,omitempty"`
	ResultClass string `json:"resultClass,omitempty"`
	Role        string `json:"role,omitempty"`
	ResultRole  string `json:"resultRole,omitempty"`
}

func (v *view) indexFilter(f AssociationFilter) (*association.Filter, error) {
	r := &association.Filter{Role: f.Role, ResultRole: f.ResultRole}
	if f.AssocClass != "" {
		if _, err := v.getClass(f.AssocClass); err != nil {
			return nil, err
		}
		r.AssocClasses = sets.New(v.classNames(f.AssocClass, true)...)
	}
	if f.ResultClass != "" {
		if _, err := v.getClass(f.ResultClass); err != nil {
			return nil, err
		}
		r.ResultClasses = sets.New(v.classNames(f.ResultClass, true)...)
	}
	return r, nil
}

// entries returns the index entries for a source object. For class
// paths the class level index is searched for the class and all its
// superclasses.
func (v *view) entries(source cim.ObjectPath, f AssociationFilter) ([]association.Entry, error) {
	if source.ClassName() == "" {
		return nil, cimerr.New(cimerr.InvalidParameter, "source path without class name")
	}
	filter, err := v.indexFilter(f)
	if err != nil {
		return nil, err
	}
	s := v.local()
	if !source.IsClassPath() {
		return s.assoc.Lookup(v.instancePath(source).Normalize(s.name), filter), nil
	}

	c, err := v.getClass(source.ClassName())
	if err != nil {
		return nil, err
	}
	var result []association.Entry
	for _, n := range append([]string{c.Name}, v.superClassNames(c)...) {
		for _, st := range v.chain {
			result = append(result, st.classAssoc.Lookup(cim.NewClassPath(n), filter)...)
		}
	}
	return result, nil
}

// exists reports whether the object at the end of an association is
// known. Instances in foreign namespaces cannot be verified.
func (v *view) exists(p cim.ObjectPath) bool {
	if p.IsClassPath() {
		_, ok := v.LookupClass(p.ClassName())
		return ok
	}
	if p.Namespace() != "" {
		return true
	}
	return v.local().instances[p.Key()] != nil
}

func (v *view) associatorNames(source cim.ObjectPath, f AssociationFilter) ([]cim.ObjectPath, error) {
	list, err := v.entries(source, f)
	if err != nil {
		return nil, err
	}
	done := sets.New[string]()
	var result []cim.ObjectPath
	for _, e := range list {
		id := pathId(e.Result)
		if !v.exists(e.Result) || done.Has(id) {
			continue
		}
		done.Insert(id)
		result = append(result, e.Result)
	}
	sortPaths(result)
	return result, nil
}

func (v *view) referenceNames(source cim.ObjectPath, f AssociationFilter) ([]cim.ObjectPath, error) {
	list, err := v.entries(source, f)
	if err != nil {
		return nil, err
	}
	done := sets.New[string]()
	var result []cim.ObjectPath
	for _, e := range list {
		id := pathId(e.Instance)
		if !v.exists(e.Instance) || done.Has(id) {
			continue
		}
		done.Insert(id)
		result = append(result, e.Instance)
	}
	sortPaths(result)
	return result, nil
}

// AssociatorNames returns the paths of the objects associated with
// the source object. For a class path the associated classes are
// returned.
func (r *Repository) AssociatorNames(ns string, source cim.ObjectPath, f AssociationFilter) ([]cim.ObjectPath, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list, err := v.associatorNames(source, f)
	if err != nil {
		return nil, err
	}
	return r.externalPaths(v.local().name, list), nil
}

// Associators returns the objects associated with the source object.
// Associated instances of foreign namespaces are omitted.
func (r *Repository) Associators(ns string, source cim.ObjectPath, f AssociationFilter, opts ...Options) ([]cim.EmbeddedObject, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list, err := v.associatorNames(source, f)
	if err != nil {
		return nil, err
	}
	return r.objects(v, list, utils.Optional(opts...)), nil
}

// ReferenceNames returns the paths of the associations referring to
// the source object. The result class filter selects the
// association classes.
func (r *Repository) ReferenceNames(ns string, source cim.ObjectPath, resultClass, role string) ([]cim.ObjectPath, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list, err := v.referenceNames(source, AssociationFilter{AssocClass: resultClass, Role: role})
	if err != nil {
		return nil, err
	}
	return r.externalPaths(v.local().name, list), nil
}

func (r *Repository) References(ns string, source cim.ObjectPath, resultClass, role string, opts ...Options) ([]cim.EmbeddedObject, error) {
	v, unlock, err := r.access(ns, locks.Read)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list, err := v.referenceNames(source, AssociationFilter{AssocClass: resultClass, Role: role})
	if err != nil {
		return nil, err
	}
	return r.objects(v, list, utils.Optional(opts...)), nil
}

func (r *Repository) objects(v *view, list []cim.ObjectPath, opts Options) []cim.EmbeddedObject {
	s := v.local()
	var result []cim.EmbeddedObject
	for _, p := range list {
		if p.IsClassPath() {
			if c, ok := v.LookupClass(p.ClassName()); ok {
				result = append(result, opts.Class(c))
			}
			continue
		}
		if i := s.instances[p.Key()]; i != nil && p.Namespace() == "" {
			result = append(result, r.exportInstance(s.name, i, opts))
		}
	}
	return result
}

func (r *Repository) externalPaths(ns string, list []cim.ObjectPath) []cim.ObjectPath {
	for i, p := range list {
		list[i] = r.externalPath(ns, p)
	}
	return list
}

func pathId(p cim.ObjectPath) string {
	return key(p.Namespace()) + ":" + p.Key()
}

func sortPaths(list []cim.ObjectPath) {
	sort.Slice(list, func(i, j int) bool { return list[i].String() < list[j].String() })
}
