package cim

import (
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Class is a class definition. Classes handed out by the repository
// are resolved: inherited members are present and marked as propagated.
type Class struct {
	Name       string     `json:"name"`
	SuperClass string     `json:"superClass,omitempty"`
	Qualifiers Qualifiers `json:"qualifiers,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	Methods    Methods    `json:"methods,omitempty"`
}

var _ EmbeddedObject = (*Class)(nil)

func NewClass(name, superClass string) *Class {
	return &Class{Name: name, SuperClass: superClass}
}

func (c *Class) GetClassName() string {
	return c.Name
}

func (c *Class) copyObject() EmbeddedObject {
	return c.Copy()
}

func (c *Class) Copy() *Class {
	if c == nil {
		return nil
	}
	return &Class{
		Name:       c.Name,
		SuperClass: c.SuperClass,
		Qualifiers: c.Qualifiers.Copy(),
		Properties: c.Properties.Copy(),
		Methods:    c.Methods.Copy(),
	}
}

func (c *Class) AddQualifier(q ...Qualifier) *Class {
	for _, e := range q {
		c.Qualifiers.Set(e)
	}
	return c
}

func (c *Class) AddProperty(p ...Property) *Class {
	c.Properties = append(c.Properties, p...)
	return c
}

func (c *Class) AddMethod(m ...Method) *Class {
	c.Methods = append(c.Methods, m...)
	return c
}

func (c *Class) IsAssociation() bool {
	return c.Qualifiers.IsTrue(QUALIFIER_ASSOCIATION)
}

func (c *Class) IsIndication() bool {
	return c.Qualifiers.IsTrue(QUALIFIER_INDICATION)
}

func (c *Class) IsAbstract() bool {
	return c.Qualifiers.IsTrue(QUALIFIER_ABSTRACT)
}

// Scope returns the qualifier scope of the class.
func (c *Class) Scope() Scope {
	switch {
	case c.IsAssociation():
		return ScopeAssociation
	case c.IsIndication():
		return ScopeIndication
	}
	return ScopeClass
}

// KeyNames returns the key property names in declaration order.
func (c *Class) KeyNames() []string {
	var keys []string
	for _, p := range c.Properties {
		if p.IsKey() {
			keys = append(keys, p.Name)
		}
	}
	return keys
}

func (c *Class) HasKeys() bool {
	return len(c.KeyNames()) > 0
}

// ReferenceProperties returns the reference-typed properties.
func (c *Class) ReferenceProperties() []*Property {
	var refs []*Property
	for i := range c.Properties {
		if c.Properties[i].IsReference() {
			refs = append(refs, &c.Properties[i])
		}
	}
	return refs
}

// Validate checks the local structure of a class definition.
func (c *Class) Validate() error {
	if !IsLegalName(c.Name) {
		return cimerr.New(cimerr.InvalidParameter, "illegal class name %q", c.Name)
	}
	if c.SuperClass != "" && !IsLegalName(c.SuperClass) {
		return cimerr.New(cimerr.InvalidParameter, "illegal superclass name %q", c.SuperClass)
	}
	if err := c.Qualifiers.CheckDuplicates(); err != nil {
		return err
	}
	for i := range c.Properties {
		if err := c.Properties[i].Validate(); err != nil {
			return err
		}
	}
	if err := c.Properties.CheckDuplicates(); err != nil {
		return err
	}
	for i := range c.Methods {
		if err := c.Methods[i].Validate(); err != nil {
			return err
		}
	}
	return c.Methods.CheckDuplicates()
}

// Path returns the class path.
func (c *Class) Path() ObjectPath {
	return NewClassPath(c.Name)
}
