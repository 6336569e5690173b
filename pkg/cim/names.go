package cim

import (
	"strings"
	"unicode/utf8"
)

// Standard qualifier names.
const (
	QUALIFIER_ABSTRACT      = "Abstract"
	QUALIFIER_ASSOCIATION   = "Association"
	QUALIFIER_AGGREGATE     = "Aggregate"
	QUALIFIER_AGGREGATION   = "Aggregation"
	QUALIFIER_DESCRIPTION   = "Description"
	QUALIFIER_DISPLAYNAME   = "DisplayName"
	QUALIFIER_INDICATION    = "Indication"
	QUALIFIER_IN            = "In"
	QUALIFIER_KEY           = "Key"
	QUALIFIER_OUT           = "Out"
	QUALIFIER_OVERRIDE      = "Override"
	QUALIFIER_REQUIRED      = "Required"
	QUALIFIER_VERSION       = "Version"
	QUALIFIER_EMBEDDEDOBJ   = "EmbeddedObject"
	QUALIFIER_EMBEDDEDINST  = "EmbeddedInstance"
	QUALIFIER_MAPPINGSTRING = "MappingStrings"
)

// StandardQualifierDecls returns the declarations of the standard
// qualifiers used by the repository.
func StandardQualifierDecls() []*QualifierDecl {
	return []*QualifierDecl{
		NewQualifierDecl(QUALIFIER_ABSTRACT, NewBoolean(false), ScopeClass|ScopeAssociation|ScopeIndication, FlavorRestricted|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_ASSOCIATION, NewBoolean(false), ScopeAssociation, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_AGGREGATE, NewBoolean(false), ScopeReference, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_AGGREGATION, NewBoolean(false), ScopeAssociation, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_DESCRIPTION, NewNull(TypeString, false), ScopeAny, FlavorDefaults|FlavorTranslatable),
		NewQualifierDecl(QUALIFIER_DISPLAYNAME, NewNull(TypeString, false), ScopeAny, FlavorDefaults|FlavorTranslatable),
		NewQualifierDecl(QUALIFIER_INDICATION, NewBoolean(false), ScopeClass|ScopeIndication, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_IN, NewBoolean(true), ScopeParameter, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_KEY, NewBoolean(false), ScopeProperty|ScopeReference, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_OUT, NewBoolean(false), ScopeParameter, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_OVERRIDE, NewNull(TypeString, false), ScopeProperty|ScopeReference|ScopeMethod, FlavorRestricted|FlavorOverridable),
		NewQualifierDecl(QUALIFIER_REQUIRED, NewBoolean(false), ScopeProperty|ScopeReference|ScopeMethod|ScopeParameter, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_VERSION, NewNull(TypeString, false), ScopeClass|ScopeAssociation|ScopeIndication, FlavorRestricted|FlavorOverridable|FlavorTranslatable),
		NewQualifierDecl(QUALIFIER_EMBEDDEDOBJ, NewBoolean(false), ScopeProperty|ScopeMethod|ScopeParameter, FlavorToSubclass|FlavorDisableOverride),
		NewQualifierDecl(QUALIFIER_EMBEDDEDINST, NewNull(TypeString, false), ScopeProperty|ScopeMethod|ScopeParameter, FlavorDefaults),
		NewQualifierDecl(QUALIFIER_MAPPINGSTRING, NewNull(TypeString, true), ScopeAny, FlavorDefaults),
	}
}

// IsLegalName checks a class, property, method, parameter or
// qualifier name.
func IsLegalName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= 0x80 && c != utf8.RuneError:
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsLegalNamespaceName checks for a sequence of legal name
// components separated by '/'.
func IsLegalNamespaceName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range strings.Split(name, "/") {
		if !IsLegalNameComponent(c) {
			return false
		}
	}
	return true
}

// IsLegalNameComponent checks a single namespace name component.
// In contrast to element names it may start with a digit.
func IsLegalNameComponent(name string) bool {
	return name != "" && IsLegalName("_"+name)
}
