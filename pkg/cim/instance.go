package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Instance is an instance of a class.
type Instance struct {
	ClassName  string     `json:"className"`
	Qualifiers Qualifiers `json:"qualifiers,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	Path       ObjectPath `json:"path"`
}

var _ EmbeddedObject = (*Instance)(nil)

func NewInstance(className string) *Instance {
	return &Instance{ClassName: className}
}

func (i *Instance) GetClassName() string {
	return i.ClassName
}

func (i *Instance) copyObject() EmbeddedObject {
	return i.Copy()
}

func (i *Instance) Copy() *Instance {
	if i == nil {
		return nil
	}
	return &Instance{
		ClassName:  i.ClassName,
		Qualifiers: i.Qualifiers.Copy(),
		Properties: i.Properties.Copy(),
		Path:       i.Path.WithKeyBindings(i.Path.keys...),
	}
}

// SetProperty sets the value of a property, adding it if required.
// The property is no longer marked as propagated.
func (i *Instance) SetProperty(name string, v Value) *Instance {
	if p, ok := i.Properties.Get(name); ok {
		p.Value = v
		p.Propagated = false
	} else {
		i.Properties = append(i.Properties, NewProperty(name, v))
	}
	return i
}

func (i *Instance) AddProperty(p ...Property) *Instance {
	i.Properties = append(i.Properties, p...)
	return i
}

func (i *Instance) GetValue(name string) (Value, bool) {
	if p, ok := i.Properties.Get(name); ok {
		return p.Value, true
	}
	return Value{}, false
}

// BuildPath builds the instance path from the key properties of the
// class in declaration order. Every key requires a non-null value.
func (i *Instance) BuildPath(class *Class) (ObjectPath, error) {
	if !strings.EqualFold(i.ClassName, class.Name) {
		return ObjectPath{}, cimerr.New(cimerr.InvalidParameter, "instance of %q does not match class %q", i.ClassName, class.Name)
	}
	var keys []KeyBinding
	for _, name := range class.KeyNames() {
		v, ok := i.GetValue(name)
		if !ok || v.IsNull() {
			return ObjectPath{}, cimerr.New(cimerr.InvalidParameter, "missing value for key %q of class %q", name, class.Name)
		}
		kb, err := NewKeyBinding(name, v)
		if err != nil {
			return ObjectPath{}, err
		}
		keys = append(keys, kb)
	}
	return NewObjectPath("", "", class.Name, keys...), nil
}

func (i *Instance) Validate() error {
	if !IsLegalName(i.ClassName) {
		return cimerr.New(cimerr.InvalidParameter, "illegal class name %q", i.ClassName)
	}
	if err := i.Qualifiers.CheckDuplicates(); err != nil {
		return err
	}
	for j := range i.Properties {
		if !IsLegalName(i.Properties[j].Name) {
			return cimerr.New(cimerr.InvalidParameter, "illegal property name %q", i.Properties[j].Name)
		}
	}
	return i.Properties.CheckDuplicates()
}
