package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Scope determines the element kinds a qualifier may be attached to.
type Scope uint16

const (
	ScopeClass Scope = 1 << iota
	ScopeAssociation
	ScopeIndication
	ScopeProperty
	ScopeReference
	ScopeMethod
	ScopeParameter

	ScopeNone Scope = 0
	ScopeAny        = ScopeClass | ScopeAssociation | ScopeIndication | ScopeProperty |
		ScopeReference | ScopeMethod | ScopeParameter
)

var scopeNames = []struct {
	scope Scope
	name  string
}{
	{ScopeClass, "Class"},
	{ScopeAssociation, "Association"},
	{ScopeIndication, "Indication"},
	{ScopeProperty, "Property"},
	{ScopeReference, "Reference"},
	{ScopeMethod, "Method"},
	{ScopeParameter, "Parameter"},
}

func (s Scope) Has(o Scope) bool {
	return s&o == o
}

func (s Scope) Union(o Scope) Scope {
	return s | o
}

func (s Scope) String() string {
	if s == ScopeAny {
		return "Any"
	}
	var names []string
	for _, n := range scopeNames {
		if s.Has(n.scope) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

func ParseScope(str string) (Scope, error) {
	var s Scope
	for _, e := range strings.Split(str, "|") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.EqualFold(e, "Any") {
			s |= ScopeAny
			continue
		}
		found := false
		for _, n := range scopeNames {
			if strings.EqualFold(n.name, e) {
				s |= n.scope
				found = true
				break
			}
		}
		if !found {
			return 0, cimerr.New(cimerr.InvalidParameter, "unknown scope %q", e)
		}
	}
	return s, nil
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(data []byte) error {
	v, err := ParseScope(string(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
