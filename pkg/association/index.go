// Package association provides the index used to answer association
// queries. Entries are keyed by the normalized path of the object
// referenced by an association.
package association

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mandelsoft/cimrepository/pkg/cim"
)

// Entry describes one direction of an association: the object
// found under the index key is referenced by Role of the association
// Instance, the opposite end is referenced by ResultRole.
type Entry struct {
	Instance    cim.ObjectPath
	AssocClass  string
	Role        string
	ResultRole  string
	Result      cim.ObjectPath
	ResultClass string
}

// Reference is a named reference of an association.
type Reference struct {
	Role   string
	Target cim.ObjectPath
}

// Filter restricts a lookup. Empty fields match everything.
// Class sets contain lower case class names.
type Filter struct {
	AssocClasses  sets.Set[string]
	ResultClasses sets.Set[string]
	Role          string
	ResultRole    string
}

func (f *Filter) Match(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.AssocClasses != nil && !f.AssocClasses.Has(strings.ToLower(e.AssocClass)) {
		return false
	}
	if f.ResultClasses != nil && !f.ResultClasses.Has(strings.ToLower(e.ResultClass)) {
		return false
	}
	if f.Role != "" && !strings.EqualFold(f.Role, e.Role) {
		return false
	}
	if f.ResultRole != "" && !strings.EqualFold(f.ResultRole, e.ResultRole) {
		return false
	}
	return true
}

// Index maps referenced objects to the association entries
// referring to them. It is not synchronized.
type Index struct {
	entries map[string][]Entry
	sources map[string]sets.Set[string]
}

func New() *Index {
	return &Index{
		entries: map[string][]Entry{},
		sources: map[string]sets.Set[string]{},
	}
}

// Add registers an association with its references. One entry is
// created for every ordered pair of distinct references.
func (i *Index) Add(instance cim.ObjectPath, assocClass string, refs ...Reference) {
	ikey := instance.Key()
	for f, from := range refs {
		for t, to := range refs {
			if f == t {
				continue
			}
			key := from.Target.Key()
			i.entries[key] = append(i.entries[key], Entry{
				Instance:    instance,
				AssocClass:  assocClass,
				Role:        from.Role,
				ResultRole:  to.Role,
				Result:      to.Target,
				ResultClass: to.Target.ClassName(),
			})
			s := i.sources[ikey]
			if s == nil {
				s = sets.New[string]()
				i.sources[ikey] = s
			}
			s.Insert(key)
		}
	}
}

// Remove deletes all entries of the given association.
func (i *Index) Remove(instance cim.ObjectPath) bool {
	ikey := instance.Key()
	s := i.sources[ikey]
	if s == nil {
		return false
	}
	for key := range s {
		var r []Entry
		for _, e := range i.entries[key] {
			if e.Instance.Key() != ikey {
				r = append(r, e)
			}
		}
		if len(r) == 0 {
			delete(i.entries, key)
		} else {
			i.entries[key] = r
		}
	}
	delete(i.sources, ikey)
	return true
}

// Lookup returns the entries for the given referenced object
// matching the filter.
func (i *Index) Lookup(target cim.ObjectPath, filter *Filter) []Entry {
	var r []Entry
	for _, e := range i.entries[target.Key()] {
		if filter.Match(&e) {
			r = append(r, e)
		}
	}
	return r
}

// Len returns the number of registered associations.
func (i *Index) Len() int {
	return len(i.sources)
}
