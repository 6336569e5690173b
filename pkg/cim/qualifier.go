package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// QualifierDecl declares name, type, default value, scope and
// flavor of a qualifier within a namespace.
type QualifierDecl struct {
	Name      string `json:"name"`
	Value     Value  `json:"value"`
	Scope     Scope  `json:"scope"`
	Flavor    Flavor `json:"flavor"`
	ArraySize int    `json:"arraySize,omitempty"`
}

// NewQualifierDecl creates a declaration. The default value determines
// the declared type.
func NewQualifierDecl(name string, def Value, scope Scope, flavor Flavor) *QualifierDecl {
	return &QualifierDecl{Name: name, Value: def, Scope: scope, Flavor: flavor}
}

func (d *QualifierDecl) Type() Type {
	return d.Value.Type()
}

func (d *QualifierDecl) IsArray() bool {
	return d.Value.IsArray()
}

func (d *QualifierDecl) Copy() *QualifierDecl {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func (d *QualifierDecl) Validate() error {
	if !IsLegalName(d.Name) {
		return cimerr.New(cimerr.InvalidParameter, "illegal qualifier name %q", d.Name)
	}
	if !d.Value.IsValid() {
		return cimerr.New(cimerr.InvalidParameter, "qualifier %q: missing type", d.Name)
	}
	if d.Value.Type() == TypeObject {
		return cimerr.New(cimerr.InvalidParameter, "qualifier %q: type object not allowed", d.Name)
	}
	if d.Scope == ScopeNone {
		return cimerr.New(cimerr.InvalidParameter, "qualifier %q: empty scope", d.Name)
	}
	if d.ArraySize < 0 || d.ArraySize > 0 && !d.IsArray() {
		return cimerr.New(cimerr.InvalidParameter, "qualifier %q: invalid array size", d.Name)
	}
	return d.Flavor.Validate()
}

// Qualifier is a qualifier value attached to an element.
type Qualifier struct {
	Name       string `json:"name"`
	Value      Value  `json:"value"`
	Flavor     Flavor `json:"flavor,omitempty"`
	Propagated bool   `json:"propagated,omitempty"`
}

// NewQualifier creates a qualifier. An omitted flavor means the
// flavor of the declaration applies.
func NewQualifier(name string, v Value, flavor ...Flavor) Qualifier {
	var f Flavor
	for _, e := range flavor {
		f |= e
	}
	return Qualifier{Name: name, Value: v, Flavor: f}
}

// Qualifiers is a list of qualifiers with case-insensitive names.
type Qualifiers []Qualifier

func (q Qualifiers) Find(name string) int {
	for i, e := range q {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

func (q Qualifiers) Get(name string) (Qualifier, bool) {
	if i := q.Find(name); i >= 0 {
		return q[i], true
	}
	return Qualifier{}, false
}

// IsTrue reports whether a boolean qualifier is present with value TRUE.
func (q Qualifiers) IsTrue(name string) bool {
	e, ok := q.Get(name)
	if !ok {
		return false
	}
	b, err := e.Value.GetBoolean()
	return err == nil && b
}

// Set replaces a qualifier with the same name or appends it.
func (q *Qualifiers) Set(e Qualifier) {
	if i := q.Find(e.Name); i >= 0 {
		(*q)[i] = e
	} else {
		*q = append(*q, e)
	}
}

func (q *Qualifiers) Remove(name string) bool {
	if i := q.Find(name); i >= 0 {
		*q = append((*q)[:i:i], (*q)[i+1:]...)
		return true
	}
	return false
}

// Local returns the non-propagated qualifiers.
func (q Qualifiers) Local() Qualifiers {
	var r Qualifiers
	for _, e := range q {
		if !e.Propagated {
			r = append(r, e)
		}
	}
	return r
}

func (q Qualifiers) Copy() Qualifiers {
	if q == nil {
		return nil
	}
	return append(Qualifiers{}, q...)
}

// CheckDuplicates fails with AlreadyExists for a repeated name.
func (q Qualifiers) CheckDuplicates() error {
	for i, e := range q {
		if q[:i].Find(e.Name) >= 0 {
			return cimerr.New(cimerr.AlreadyExists, "duplicate qualifier %q", e.Name)
		}
	}
	return nil
}
