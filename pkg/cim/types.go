package cim

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// Type is the type tag of a Value.
type Type int

const (
	TypeInvalid Type = iota
	TypeBoolean
	TypeUint8
	TypeSint8
	TypeUint16
	TypeSint16
	TypeUint32
	TypeSint32
	TypeUint64
	TypeSint64
	TypeReal32
	TypeReal64
	TypeChar16
	TypeString
	TypeDateTime
	TypeReference
	TypeObject
)

var typeNames = []string{
	TypeInvalid:   "invalid",
	TypeBoolean:   "boolean",
	TypeUint8:     "uint8",
	TypeSint8:     "sint8",
	TypeUint16:    "uint16",
	TypeSint16:    "sint16",
	TypeUint32:    "uint32",
	TypeSint32:    "sint32",
	TypeUint64:    "uint64",
	TypeSint64:    "sint64",
	TypeReal32:    "real32",
	TypeReal64:    "real64",
	TypeChar16:    "char16",
	TypeString:    "string",
	TypeDateTime:  "datetime",
	TypeReference: "reference",
	TypeObject:    "object",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[TypeInvalid]
	}
	return typeNames[t]
}

func (t Type) IsValid() bool {
	return t > TypeInvalid && t <= TypeObject
}

func (t Type) IsInteger() bool {
	return t >= TypeUint8 && t <= TypeSint64
}

func (t Type) IsSigned() bool {
	switch t {
	case TypeSint8, TypeSint16, TypeSint32, TypeSint64:
		return true
	}
	return false
}

func (t Type) IsReal() bool {
	return t == TypeReal32 || t == TypeReal64
}

func (t Type) IsNumeric() bool {
	return t.IsInteger() || t.IsReal()
}

// bits returns the width of integer types.
func (t Type) bits() int {
	switch t {
	case TypeUint8, TypeSint8:
		return 8
	case TypeUint16, TypeSint16, TypeChar16:
		return 16
	case TypeUint32, TypeSint32, TypeReal32:
		return 32
	}
	return 64
}

func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if i != int(TypeInvalid) && strings.EqualFold(n, s) {
			return Type(i), nil
		}
	}
	if strings.EqualFold(s, "ref") {
		return TypeReference, nil
	}
	return TypeInvalid, cimerr.New(cimerr.InvalidParameter, "unknown type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(data []byte) error {
	v, err := ParseType(string(data))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Char16 is a UCS-2 character.
type Char16 uint16

func (c Char16) String() string {
	return string(rune(c))
}
