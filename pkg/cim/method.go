package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

type Parameter struct {
	Name           string     `json:"name"`
	Type           Type       `json:"type"`
	IsArray        bool       `json:"isArray,omitempty"`
	ArraySize      int        `json:"arraySize,omitempty"`
	ReferenceClass string     `json:"referenceClass,omitempty"`
	Qualifiers     Qualifiers `json:"qualifiers,omitempty"`
}

func NewParameter(name string, t Type, qualifiers ...Qualifier) Parameter {
	return Parameter{Name: name, Type: t, Qualifiers: qualifiers}
}

func (p Parameter) Copy() Parameter {
	p.Qualifiers = p.Qualifiers.Copy()
	return p
}

func (p *Parameter) Validate() error {
	if !IsLegalName(p.Name) {
		return cimerr.New(cimerr.InvalidParameter, "illegal parameter name %q", p.Name)
	}
	if !p.Type.IsValid() {
		return cimerr.New(cimerr.InvalidParameter, "parameter %q: missing type", p.Name)
	}
	if p.ArraySize < 0 || p.ArraySize > 0 && !p.IsArray {
		return cimerr.New(cimerr.InvalidParameter, "parameter %q: invalid array size", p.Name)
	}
	return p.Qualifiers.CheckDuplicates()
}

type Method struct {
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Qualifiers  Qualifiers  `json:"qualifiers,omitempty"`
	ClassOrigin string      `json:"classOrigin,omitempty"`
	Propagated  bool        `json:"propagated,omitempty"`
}

func NewMethod(name string, t Type, params ...Parameter) Method {
	return Method{Name: name, Type: t, Parameters: params}
}

func (m Method) Copy() Method {
	m.Qualifiers = m.Qualifiers.Copy()
	if m.Parameters != nil {
		params := make([]Parameter, len(m.Parameters))
		for i, p := range m.Parameters {
			params[i] = p.Copy()
		}
		m.Parameters = params
	}
	return m
}

func (m *Method) FindParameter(name string) int {
	for i, p := range m.Parameters {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

func (m *Method) Validate() error {
	if !IsLegalName(m.Name) {
		return cimerr.New(cimerr.InvalidParameter, "illegal method name %q", m.Name)
	}
	if !m.Type.IsValid() || m.Type == TypeObject {
		return cimerr.New(cimerr.InvalidParameter, "method %q: invalid return type", m.Name)
	}
	for i := range m.Parameters {
		p := &m.Parameters[i]
		if err := p.Validate(); err != nil {
			return cimerr.Wrap(err, "method %q", m.Name)
		}
		if m.FindParameter(p.Name) != i {
			return cimerr.New(cimerr.AlreadyExists, "method %q: duplicate parameter %q", m.Name, p.Name)
		}
	}
	return m.Qualifiers.CheckDuplicates()
}

type Methods []Method

func (l Methods) Find(name string) int {
	for i, m := range l {
		if strings.EqualFold(m.Name, name) {
			return i
		}
	}
	return -1
}

func (l Methods) Get(name string) (*Method, bool) {
	if i := l.Find(name); i >= 0 {
		return &l[i], true
	}
	return nil, false
}

func (l *Methods) Set(m Method) {
	if i := l.Find(m.Name); i >= 0 {
		(*l)[i] = m
	} else {
		*l = append(*l, m)
	}
}

func (l Methods) Copy() Methods {
	if l == nil {
		return nil
	}
	r := make(Methods, len(l))
	for i, m := range l {
		r[i] = m.Copy()
	}
	return r
}

func (l Methods) CheckDuplicates() error {
	for i, m := range l {
		if l[:i].Find(m.Name) >= 0 {
			return cimerr.New(cimerr.AlreadyExists, "duplicate method %q", m.Name)
		}
	}
	return nil
}
