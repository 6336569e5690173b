package repository

import (
	"github.com/mandelsoft/cimrepository/pkg/cim"
)

// Options controls the content of returned classes and instances.
// The zero value requests the complete objects.
type Options struct {
	// LocalOnly omits inherited elements.
	LocalOnly bool `json:"localOnly,omitempty"`
	// ExcludeQualifiers omits all qualifiers.
	ExcludeQualifiers bool `json:"excludeQualifiers,omitempty"`
	// ExcludeClassOrigin omits the class origin of properties and methods.
	ExcludeClassOrigin bool `json:"excludeClassOrigin,omitempty"`
	// PropertyList restricts the properties to the given names.
	// A nil list selects all properties.
	PropertyList []string `json:"propertyList,omitempty"`
}

func (o *Options) includesProperty(name string) bool {
	if o.PropertyList == nil {
		return true
	}
	for _, n := range o.PropertyList {
		if key(n) == key(name) {
			return true
		}
	}
	return false
}

func (o *Options) filterQualifiers(q cim.Qualifiers) cim.Qualifiers {
	if o.ExcludeQualifiers {
		return nil
	}
	if o.LocalOnly {
		return q.Local()
	}
	return q
}

func (o *Options) filterProperties(props cim.Properties) cim.Properties {
	var r cim.Properties
	for _, p := range props {
		if o.LocalOnly && p.Propagated || !o.includesProperty(p.Name) {
			continue
		}
		p.Qualifiers = o.filterQualifiers(p.Qualifiers)
		if o.ExcludeClassOrigin {
			p.ClassOrigin = ""
		}
		r = append(r, p)
	}
	return r
}

// Class returns a filtered copy of a class.
func (o *Options) Class(c *cim.Class) *cim.Class {
	c = c.Copy()
	c.Qualifiers = o.filterQualifiers(c.Qualifiers)
	c.Properties = o.filterProperties(c.Properties)

	var methods cim.Methods
	for _, m := range c.Methods {
		if o.LocalOnly && m.Propagated {
			continue
		}
		m.Qualifiers = o.filterQualifiers(m.Qualifiers)
		if o.ExcludeQualifiers {
			for i := range m.Parameters {
				m.Parameters[i].Qualifiers = nil
			}
		}
		if o.ExcludeClassOrigin {
			m.ClassOrigin = ""
		}
		methods = append(methods, m)
	}
	c.Methods = methods
	return c
}

// Instance returns a filtered copy of an instance.
func (o *Options) Instance(i *cim.Instance) *cim.Instance {
	i = i.Copy()
	i.Qualifiers = o.filterQualifiers(i.Qualifiers)
	i.Properties = o.filterProperties(i.Properties)
	return i
}
