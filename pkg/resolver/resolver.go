// Package resolver merges local class and instance declarations with
// the inherited ones according to the qualifier flavors.
package resolver

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Context provides the schema elements visible in the namespace
// a class or instance is resolved for.
type Context interface {
	LookupQualifierDecl(name string) (*cim.QualifierDecl, bool)
	LookupClass(name string) (*cim.Class, bool)
}

// ResolveClass resolves a class definition against its resolved
// superclass. The given class is not modified.
func ResolveClass(ctx Context, class *cim.Class) (*cim.Class, error) {
	log.Trace("resolving class {{class}}", "class", class.Name)

	if err := class.Validate(); err != nil {
		return nil, err
	}

	var super *cim.Class
	if class.SuperClass != "" {
		sc, ok := ctx.LookupClass(class.SuperClass)
		if !ok {
			return nil, cimerr.New(cimerr.InvalidClass, "superclass %q of class %q not found", class.SuperClass, class.Name)
		}
		super = sc
	} else {
		super = &cim.Class{}
	}
	if strings.EqualFold(super.Name, class.Name) {
		return nil, cimerr.New(cimerr.InvalidClass, "class %q cannot be its own superclass", class.Name)
	}

	local := class.Qualifiers.Local()
	scope := cim.ScopeClass
	switch {
	case local.IsTrue(cim.QUALIFIER_ASSOCIATION) || super.IsAssociation():
		scope = cim.ScopeAssociation
	case local.IsTrue(cim.QUALIFIER_INDICATION) || super.IsIndication():
		scope = cim.ScopeIndication
	}

	result := &cim.Class{
		Name:       class.Name,
		SuperClass: super.Name,
	}

	var err error
	result.Qualifiers, err = ResolveQualifiers(ctx, local, super.Qualifiers, scope, cim.FlavorToSubclass)
	if err != nil {
		return nil, cimerr.Wrap(err, "class %q", class.Name)
	}

	result.Properties, err = resolveProperties(ctx, class, super, scope == cim.ScopeAssociation)
	if err != nil {
		return nil, cimerr.Wrap(err, "class %q", class.Name)
	}

	result.Methods, err = resolveMethods(ctx, class, super)
	if err != nil {
		return nil, cimerr.Wrap(err, "class %q", class.Name)
	}
	return result, nil
}

func localProperties(props cim.Properties) cim.Properties {
	var r cim.Properties
	for _, p := range props {
		if !p.Propagated {
			r = append(r, p)
		}
	}
	return r
}

func resolveProperties(ctx Context, class, super *cim.Class, assoc bool) (cim.Properties, error) {
	local := localProperties(class.Properties)
	for i := range local {
		if local[i].IsReference() && !assoc {
			return nil, cimerr.New(cimerr.InvalidParameter, "non-association class contains reference property %q", local[i].Name)
		}
	}

	var result cim.Properties
	for _, sp := range super.Properties {
		lp, ok := local.Get(sp.Name)
		if !ok {
			p := sp.Copy()
			p.Propagated = true
			p.Qualifiers = propagated(sp.Qualifiers, cim.FlavorToSubclass)
			result = append(result, p)
			continue
		}
		if lp.Type() != sp.Type() || lp.IsArray() != sp.IsArray() {
			return nil, cimerr.New(cimerr.InvalidClass, "property %q: type %s does not match inherited type %s", lp.Name, lp.Value.TypeString(), sp.Value.TypeString())
		}
		p, err := resolveProperty(ctx, *lp, sp.Qualifiers, cim.FlavorToSubclass)
		if err != nil {
			return nil, err
		}
		if p.ReferenceClass == "" {
			p.ReferenceClass = sp.ReferenceClass
		}
		if p.Value.IsNull() && !sp.Value.IsNull() {
			p.Value = sp.Value
		}
		p.ClassOrigin = sp.ClassOrigin
		result = append(result, p)
	}

	for _, lp := range local {
		if super.Properties.Find(lp.Name) >= 0 {
			continue
		}
		p, err := resolveProperty(ctx, lp, nil, cim.FlavorToSubclass)
		if err != nil {
			return nil, err
		}
		p.ClassOrigin = class.Name
		result = append(result, p)
	}

	if err := result.CheckDuplicates(); err != nil {
		return nil, err
	}
	return result, nil
}

func resolveProperty(ctx Context, p cim.Property, inherited cim.Qualifiers, propagation cim.Flavor) (cim.Property, error) {
	q, err := ResolveQualifiers(ctx, p.Qualifiers.Local(), inherited, p.Scope(), propagation)
	if err != nil {
		return p, cimerr.Wrap(err, "property %q", p.Name)
	}
	r := p.Copy()
	r.Qualifiers = q
	r.Propagated = false
	return r, nil
}

func resolveMethods(ctx Context, class, super *cim.Class) (cim.Methods, error) {
	var local cim.Methods
	for _, m := range class.Methods {
		if !m.Propagated {
			local = append(local, m)
		}
	}

	var result cim.Methods
	for _, sm := range super.Methods {
		lm, ok := local.Get(sm.Name)
		if !ok {
			m := sm.Copy()
			m.Propagated = true
			m.Qualifiers = propagated(sm.Qualifiers, cim.FlavorToSubclass)
			result = append(result, m)
			continue
		}
		if lm.Type != sm.Type {
			return nil, cimerr.New(cimerr.InvalidClass, "method %q: return type %s does not match inherited type %s", lm.Name, lm.Type, sm.Type)
		}
		m, err := resolveMethod(ctx, *lm, &sm)
		if err != nil {
			return nil, err
		}
		m.ClassOrigin = sm.ClassOrigin
		result = append(result, m)
	}

	for _, lm := range local {
		if super.Methods.Find(lm.Name) >= 0 {
			continue
		}
		m, err := resolveMethod(ctx, lm, nil)
		if err != nil {
			return nil, err
		}
		m.ClassOrigin = class.Name
		result = append(result, m)
	}
	return result, result.CheckDuplicates()
}

func resolveMethod(ctx Context, m cim.Method, super *cim.Method) (cim.Method, error) {
	var inherited cim.Qualifiers
	if super != nil {
		inherited = super.Qualifiers
	}
	r := m.Copy()
	q, err := ResolveQualifiers(ctx, m.Qualifiers.Local(), inherited, cim.ScopeMethod, cim.FlavorToSubclass)
	if err != nil {
		return r, cimerr.Wrap(err, "method %q", m.Name)
	}
	r.Qualifiers = q
	r.Propagated = false

	for i := range r.Parameters {
		p := &r.Parameters[i]
		var pinherited cim.Qualifiers
		if super != nil {
			if j := super.FindParameter(p.Name); j >= 0 {
				sp := super.Parameters[j]
				if sp.Type != p.Type || sp.IsArray != p.IsArray {
					return r, cimerr.New(cimerr.InvalidClass, "method %q: parameter %q does not match inherited type", m.Name, p.Name)
				}
				pinherited = sp.Qualifiers
			}
		}
		q, err := ResolveQualifiers(ctx, p.Qualifiers.Local(), pinherited, cim.ScopeParameter, cim.FlavorToSubclass)
		if err != nil {
			return r, cimerr.Wrap(err, "method %q: parameter %q", m.Name, p.Name)
		}
		p.Qualifiers = q
	}
	return r, nil
}

// propagated returns the inherited qualifiers featuring the given
// propagation flavor marked as propagated.
func propagated(inherited cim.Qualifiers, propagation cim.Flavor) cim.Qualifiers {
	var r cim.Qualifiers
	for _, q := range inherited {
		if q.Flavor.Has(propagation) {
			q.Propagated = true
			r = append(r, q)
		}
	}
	return r
}
