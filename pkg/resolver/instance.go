package resolver

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// ResolveInstance completes an instance according to its resolved
// class. The properties are ordered like the class properties, missing
// ones are filled with the class defaults.
func ResolveInstance(ctx Context, class *cim.Class, inst *cim.Instance) (*cim.Instance, error) {
	log.Trace("resolving instance of class {{class}}", "class", inst.ClassName)

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(class.Name, inst.ClassName) {
		return nil, cimerr.New(cimerr.InvalidParameter, "instance class %q does not match class %q", inst.ClassName, class.Name)
	}
	if class.IsAbstract() {
		return nil, cimerr.New(cimerr.InvalidParameter, "class %q is abstract", class.Name)
	}

	for _, p := range inst.Properties {
		cp, ok := class.Properties.Get(p.Name)
		if !ok {
			return nil, cimerr.New(cimerr.InvalidParameter, "property %q not declared in class %q", p.Name, class.Name)
		}
		if p.Type() != cp.Type() || p.IsArray() != cp.IsArray() {
			return nil, cimerr.New(cimerr.InvalidParameter, "property %q: type %s does not match class type %s", p.Name, p.Value.TypeString(), cp.Value.TypeString())
		}
		if cp.ArraySize > 0 && !p.Value.IsNull() && p.Value.Len() != cp.ArraySize {
			return nil, cimerr.New(cimerr.InvalidParameter, "property %q: array size %d required", p.Name, cp.ArraySize)
		}
	}

	result := &cim.Instance{
		ClassName: class.Name,
	}

	var err error
	result.Qualifiers, err = ResolveQualifiers(ctx, inst.Qualifiers.Local(), class.Qualifiers, class.Scope(), cim.FlavorToInstance)
	if err != nil {
		return nil, cimerr.Wrap(err, "instance of %q", class.Name)
	}

	for _, cp := range class.Properties {
		lp, ok := inst.Properties.Get(cp.Name)
		if !ok {
			p := cp.Copy()
			p.Qualifiers = propagated(cp.Qualifiers, cim.FlavorToInstance)
			p.Propagated = true
			result.Properties = append(result.Properties, p)
			continue
		}
		p, err := resolveProperty(ctx, *lp, cp.Qualifiers, cim.FlavorToInstance)
		if err != nil {
			return nil, cimerr.Wrap(err, "instance of %q", class.Name)
		}
		p.Name = cp.Name
		p.ClassOrigin = cp.ClassOrigin
		p.ReferenceClass = cp.ReferenceClass
		p.ArraySize = cp.ArraySize
		result.Properties = append(result.Properties, p)
	}
	return result, nil
}
