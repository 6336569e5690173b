package resolver

import (
	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// ResolveQualifiers merges the local qualifiers of an element with the
// qualifiers of the inherited element. Inherited qualifiers are taken
// over if their flavor features the given propagation flavor
// (ToSubclass for classes, ToInstance for instances).
func ResolveQualifiers(ctx Context, local, inherited cim.Qualifiers, scope cim.Scope, propagation cim.Flavor) (cim.Qualifiers, error) {
	var result cim.Qualifiers

	for _, q := range local {
		if result.Find(q.Name) >= 0 {
			return nil, cimerr.New(cimerr.AlreadyExists, "duplicate qualifier %q", q.Name)
		}
		decl, ok := ctx.LookupQualifierDecl(q.Name)
		if !ok {
			return nil, cimerr.New(cimerr.InvalidParameter, "qualifier %q not declared", q.Name)
		}
		if !decl.Scope.Has(scope) {
			return nil, cimerr.New(cimerr.InvalidParameter, "qualifier %q not allowed for scope %s", q.Name, scope)
		}
		if !q.Value.IsValid() {
			q.Value = decl.Value
		}
		if q.Value.Type() != decl.Type() || q.Value.IsArray() != decl.IsArray() {
			return nil, cimerr.New(cimerr.InvalidParameter, "qualifier %q: type %s does not match declared type %s", q.Name, q.Value.TypeString(), decl.Value.TypeString())
		}
		if err := q.Flavor.Validate(); err != nil {
			return nil, cimerr.Wrap(err, "qualifier %q", q.Name)
		}
		flavor := decl.Flavor.Merge(q.Flavor)

		if iq, ok := inherited.Get(q.Name); ok && iq.Flavor.Has(propagation) {
			if !iq.Flavor.IsOverridable() && !iq.Value.Equal(q.Value) {
				return nil, cimerr.New(cimerr.InvalidClass, "illegal override of %q", q.Name)
			}
		}
		q.Name = decl.Name
		q.Flavor = flavor
		q.Propagated = false
		result = append(result, q)
	}

	for _, iq := range inherited {
		if !iq.Flavor.Has(propagation) || result.Find(iq.Name) >= 0 {
			continue
		}
		iq.Propagated = true
		result = append(result, iq)
	}
	return result, nil
}
