package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Flavor controls propagation and overriding of qualifiers.
type Flavor uint16

const (
	FlavorOverridable Flavor = 1 << iota
	FlavorToSubclass
	FlavorToInstance
	FlavorTranslatable
	FlavorEnableOverride
	FlavorDisableOverride
	FlavorRestricted

	FlavorNone     Flavor = 0
	FlavorDefaults        = FlavorOverridable | FlavorToSubclass
	FlavorAll             = FlavorOverridable | FlavorToSubclass | FlavorToInstance | FlavorTranslatable |
		FlavorEnableOverride | FlavorDisableOverride | FlavorRestricted
)

var flavorNames = []struct {
	flavor Flavor
	name   string
}{
	{FlavorOverridable, "Overridable"},
	{FlavorToSubclass, "ToSubclass"},
	{FlavorToInstance, "ToInstance"},
	{FlavorTranslatable, "Translatable"},
	{FlavorEnableOverride, "EnableOverride"},
	{FlavorDisableOverride, "DisableOverride"},
	{FlavorRestricted, "Restricted"},
}

func (f Flavor) Has(o Flavor) bool {
	return f&o == o
}

func (f Flavor) Union(o Flavor) Flavor {
	return f | o
}

// IsOverridable reports whether a qualifier with this flavor
// may be redeclared with a different value.
func (f Flavor) IsOverridable() bool {
	return !f.Has(FlavorDisableOverride) || f.Has(FlavorEnableOverride)
}

// Merge applies an explicitly given local flavor to this
// declaration flavor. An empty local flavor keeps the declaration flavor.
func (f Flavor) Merge(local Flavor) Flavor {
	if local == FlavorNone {
		return f
	}
	r := f | local
	if local.Has(FlavorRestricted) {
		r &^= FlavorToSubclass
	} else if local.Has(FlavorToSubclass) {
		r &^= FlavorRestricted
	}
	if local.Has(FlavorDisableOverride) {
		r &^= FlavorEnableOverride | FlavorOverridable
	} else if local.Has(FlavorEnableOverride) {
		r &^= FlavorDisableOverride
		r |= FlavorOverridable
	}
	return r
}

// Validate checks for contradicting flavor bits.
func (f Flavor) Validate() error {
	if f.Has(FlavorEnableOverride | FlavorDisableOverride) {
		return cimerr.New(cimerr.InvalidParameter, "flavor %s enables and disables override", f)
	}
	if f.Has(FlavorToSubclass | FlavorRestricted) {
		return cimerr.New(cimerr.InvalidParameter, "flavor %s is restricted and propagated", f)
	}
	return nil
}

func (f Flavor) String() string {
	var names []string
	for _, n := range flavorNames {
		if f.Has(n.flavor) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

func ParseFlavor(s string) (Flavor, error) {
	var f Flavor
	for _, e := range strings.Split(s, "|") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		found := false
		for _, n := range flavorNames {
			if strings.EqualFold(n.name, e) {
				f |= n.flavor
				found = true
				break
			}
		}
		if !found {
			return 0, cimerr.New(cimerr.InvalidParameter, "unknown flavor %q", e)
		}
	}
	return f, nil
}

func (f Flavor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Flavor) UnmarshalText(data []byte) error {
	v, err := ParseFlavor(string(data))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
