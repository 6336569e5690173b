package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Property is a typed member of a class or instance. The declared
// type is the type of its (possibly null) value.
type Property struct {
	Name           string     `json:"name"`
	Value          Value      `json:"value"`
	ArraySize      int        `json:"arraySize,omitempty"`
	ReferenceClass string     `json:"referenceClass,omitempty"`
	Qualifiers     Qualifiers `json:"qualifiers,omitempty"`
	ClassOrigin    string     `json:"classOrigin,omitempty"`
	Propagated     bool       `json:"propagated,omitempty"`
}

func NewProperty(name string, v Value, qualifiers ...Qualifier) Property {
	return Property{Name: name, Value: v, Qualifiers: qualifiers}
}

// NewReferenceProperty declares a reference to the given class.
func NewReferenceProperty(name, refClass string, qualifiers ...Qualifier) Property {
	return Property{Name: name, Value: NewNull(TypeReference, false), ReferenceClass: refClass, Qualifiers: qualifiers}
}

func (p *Property) Type() Type {
	return p.Value.Type()
}

func (p *Property) IsArray() bool {
	return p.Value.IsArray()
}

func (p *Property) IsKey() bool {
	return p.Qualifiers.IsTrue(QUALIFIER_KEY)
}

func (p *Property) IsReference() bool {
	return p.Value.Type() == TypeReference
}

// Scope returns the qualifier scope of the property.
func (p *Property) Scope() Scope {
	if p.IsReference() {
		return ScopeReference
	}
	return ScopeProperty
}

func (p Property) Copy() Property {
	p.Qualifiers = p.Qualifiers.Copy()
	return p
}

func (p *Property) Validate() error {
	if !IsLegalName(p.Name) {
		return cimerr.New(cimerr.InvalidParameter, "illegal property name %q", p.Name)
	}
	if !p.Value.IsValid() {
		return cimerr.New(cimerr.InvalidParameter, "property %q: missing type", p.Name)
	}
	if p.IsReference() && p.IsArray() {
		return cimerr.New(cimerr.InvalidParameter, "property %q: reference arrays are not supported", p.Name)
	}
	if p.ArraySize < 0 || p.ArraySize > 0 && !p.IsArray() {
		return cimerr.New(cimerr.InvalidParameter, "property %q: invalid array size", p.Name)
	}
	if p.ArraySize > 0 && p.Value.Len() > p.ArraySize {
		return cimerr.New(cimerr.InvalidParameter, "property %q: array exceeds size %d", p.Name, p.ArraySize)
	}
	return p.Qualifiers.CheckDuplicates()
}

// Properties is a list of properties with case-insensitive names.
type Properties []Property

func (l Properties) Find(name string) int {
	for i, p := range l {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

func (l Properties) Get(name string) (*Property, bool) {
	if i := l.Find(name); i >= 0 {
		return &l[i], true
	}
	return nil, false
}

func (l *Properties) Set(p Property) {
	if i := l.Find(p.Name); i >= 0 {
		(*l)[i] = p
	} else {
		*l = append(*l, p)
	}
}

func (l *Properties) Remove(name string) bool {
	if i := l.Find(name); i >= 0 {
		*l = append((*l)[:i:i], (*l)[i+1:]...)
		return true
	}
	return false
}

func (l Properties) Names() []string {
	var names []string
	for _, p := range l {
		names = append(names, p.Name)
	}
	return names
}

func (l Properties) Copy() Properties {
	if l == nil {
		return nil
	}
	r := make(Properties, len(l))
	for i, p := range l {
		r[i] = p.Copy()
	}
	return r
}

func (l Properties) CheckDuplicates() error {
	for i, p := range l {
		if l[:i].Find(p.Name) >= 0 {
			return cimerr.New(cimerr.AlreadyExists, "duplicate property %q", p.Name)
		}
	}
	return nil
}
