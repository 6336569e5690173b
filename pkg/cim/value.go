package cim

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

// EmbeddedObject is a class or instance held by a Value of type object.
type EmbeddedObject interface {
	GetClassName() string
	copyObject() EmbeddedObject
}

// Scalar is the set of native Go types a Value may hold.
type Scalar interface {
	bool | uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64 |
		float32 | float64 | Char16 | string | DateTime | ObjectPath
}

// Value is a typed scalar or homogeneous array value. A null value
// keeps its type. Values are immutable.
type Value struct {
	typ   Type
	array bool
	null  bool
	// data holds the native scalar or []any for arrays.
	data any
}

func NewNull(t Type, array bool) Value {
	return Value{typ: t, array: array, null: true}
}

func NewBoolean(v bool) Value {
	return Value{typ: TypeBoolean, data: v}
}

func NewUint8(v uint8) Value {
	return Value{typ: TypeUint8, data: v}
}

func NewSint8(v int8) Value {
	return Value{typ: TypeSint8, data: v}
}

func NewUint16(v uint16) Value {
	return Value{typ: TypeUint16, data: v}
}

func NewSint16(v int16) Value {
	return Value{typ: TypeSint16, data: v}
}

func NewUint32(v uint32) Value {
	return Value{typ: TypeUint32, data: v}
}

func NewSint32(v int32) Value {
	return Value{typ: TypeSint32, data: v}
}

func NewUint64(v uint64) Value {
	return Value{typ: TypeUint64, data: v}
}

func NewSint64(v int64) Value {
	return Value{typ: TypeSint64, data: v}
}

func NewReal32(v float32) Value {
	return Value{typ: TypeReal32, data: v}
}

func NewReal64(v float64) Value {
	return Value{typ: TypeReal64, data: v}
}

func NewChar16(v Char16) Value {
	return Value{typ: TypeChar16, data: v}
}

func NewString(v string) Value {
	return Value{typ: TypeString, data: v}
}

func NewDateTime(v DateTime) Value {
	return Value{typ: TypeDateTime, data: v}
}

func NewReference(v ObjectPath) Value {
	return Value{typ: TypeReference, data: v}
}

// NewObject embeds a copy of a class or instance.
func NewObject(o EmbeddedObject) Value {
	if o == nil || reflect.ValueOf(o).IsNil() {
		return NewNull(TypeObject, false)
	}
	return Value{typ: TypeObject, data: o.copyObject()}
}

// ValueOf creates a scalar value for a native value.
func ValueOf[T Scalar](v T) Value {
	return Value{typ: scalarType(any(v)), data: v}
}

// ArrayOf creates an array value from native values.
func ArrayOf[T Scalar](elems ...T) Value {
	var zero T
	data := make([]any, len(elems))
	for i, e := range elems {
		data[i] = e
	}
	return Value{typ: scalarType(any(zero)), array: true, data: data}
}

// NewArray creates an array from scalar values of one type.
func NewArray(elems ...Value) (Value, error) {
	if len(elems) == 0 {
		return Value{}, cimerr.New(cimerr.InvalidParameter, "empty array requires an explicit type")
	}
	return NewArrayOf(elems[0].typ, elems...)
}

// NewArrayOf creates a typed array from scalar values.
func NewArrayOf(t Type, elems ...Value) (Value, error) {
	if !t.IsValid() {
		return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid array type")
	}
	data := make([]any, len(elems))
	for i, e := range elems {
		if e.typ != t {
			return Value{}, cimerr.New(cimerr.TypeMismatch, "array element %d: %s instead of %s", i, e.typ, t)
		}
		if e.array || e.null {
			return Value{}, cimerr.New(cimerr.InvalidParameter, "array element %d must be a non-null scalar", i)
		}
		data[i] = e.data
	}
	return Value{typ: t, array: true, data: data}, nil
}

func scalarType(v any) Type {
	switch v.(type) {
	case bool:
		return TypeBoolean
	case uint8:
		return TypeUint8
	case int8:
		return TypeSint8
	case uint16:
		return TypeUint16
	case int16:
		return TypeSint16
	case uint32:
		return TypeUint32
	case int32:
		return TypeSint32
	case uint64:
		return TypeUint64
	case int64:
		return TypeSint64
	case float32:
		return TypeReal32
	case float64:
		return TypeReal64
	case Char16:
		return TypeChar16
	case string:
		return TypeString
	case DateTime:
		return TypeDateTime
	case ObjectPath:
		return TypeReference
	case EmbeddedObject:
		return TypeObject
	}
	return TypeInvalid
}

func (v Value) Type() Type {
	return v.typ
}

func (v Value) IsArray() bool {
	return v.array
}

func (v Value) IsNull() bool {
	return v.null
}

// IsValid reports whether the value carries a type.
func (v Value) IsValid() bool {
	return v.typ.IsValid()
}

// Len returns the number of array elements.
func (v Value) Len() int {
	if !v.array || v.null {
		return 0
	}
	return len(v.data.([]any))
}

// Elements returns the elements of an array as scalar values.
func (v Value) Elements() []Value {
	if !v.array || v.null {
		return nil
	}
	data := v.data.([]any)
	r := make([]Value, len(data))
	for i, e := range data {
		r[i] = Value{typ: v.typ, data: e}
	}
	return r
}

// Interface returns the native value, nil for null values
// and a []T for arrays.
func (v Value) Interface() any {
	if v.null || !v.typ.IsValid() {
		return nil
	}
	if !v.array {
		if o, ok := v.data.(EmbeddedObject); ok {
			return o.copyObject()
		}
		return v.data
	}
	data := v.data.([]any)
	s := reflect.MakeSlice(reflect.SliceOf(scalarReflectType(v.typ)), len(data), len(data))
	for i, e := range data {
		if o, ok := e.(EmbeddedObject); ok {
			e = o.copyObject()
		}
		s.Index(i).Set(reflect.ValueOf(e))
	}
	return s.Interface()
}

var embeddedObjectType = reflect.TypeOf((*EmbeddedObject)(nil)).Elem()

func scalarReflectType(t Type) reflect.Type {
	if t == TypeObject {
		return embeddedObjectType
	}
	return reflect.TypeOf(scalarProto(t))
}

func scalarProto(t Type) any {
	switch t {
	case TypeBoolean:
		return false
	case TypeUint8:
		return uint8(0)
	case TypeSint8:
		return int8(0)
	case TypeUint16:
		return uint16(0)
	case TypeSint16:
		return int16(0)
	case TypeUint32:
		return uint32(0)
	case TypeSint32:
		return int32(0)
	case TypeUint64:
		return uint64(0)
	case TypeSint64:
		return int64(0)
	case TypeReal32:
		return float32(0)
	case TypeReal64:
		return float64(0)
	case TypeChar16:
		return Char16(0)
	case TypeString:
		return ""
	case TypeDateTime:
		return DateTime{}
	case TypeReference:
		return ObjectPath{}
	}
	return nil
}

func get[T any](v Value, t Type) (T, error) {
	var _nil T
	if v.typ != t || v.array {
		return _nil, cimerr.New(cimerr.TypeMismatch, "value of type %s is no %s", v.TypeString(), t)
	}
	if v.null {
		return _nil, cimerr.New(cimerr.InvalidParameter, "null %s value", t)
	}
	return v.data.(T), nil
}

func (v Value) GetBoolean() (bool, error) {
	return get[bool](v, TypeBoolean)
}

func (v Value) GetUint8() (uint8, error) {
	return get[uint8](v, TypeUint8)
}

func (v Value) GetSint8() (int8, error) {
	return get[int8](v, TypeSint8)
}

func (v Value) GetUint16() (uint16, error) {
	return get[uint16](v, TypeUint16)
}

func (v Value) GetSint16() (int16, error) {
	return get[int16](v, TypeSint16)
}

func (v Value) GetUint32() (uint32, error) {
	return get[uint32](v, TypeUint32)
}

func (v Value) GetSint32() (int32, error) {
	return get[int32](v, TypeSint32)
}

func (v Value) GetUint64() (uint64, error) {
	return get[uint64](v, TypeUint64)
}

func (v Value) GetSint64() (int64, error) {
	return get[int64](v, TypeSint64)
}

func (v Value) GetReal32() (float32, error) {
	return get[float32](v, TypeReal32)
}

func (v Value) GetReal64() (float64, error) {
	return get[float64](v, TypeReal64)
}

func (v Value) GetChar16() (Char16, error) {
	return get[Char16](v, TypeChar16)
}

func (v Value) GetString() (string, error) {
	return get[string](v, TypeString)
}

func (v Value) GetDateTime() (DateTime, error) {
	return get[DateTime](v, TypeDateTime)
}

func (v Value) GetReference() (ObjectPath, error) {
	return get[ObjectPath](v, TypeReference)
}

// GetObject returns a copy of the embedded class or instance.
func (v Value) GetObject() (EmbeddedObject, error) {
	o, err := get[EmbeddedObject](v, TypeObject)
	if err != nil {
		return nil, err
	}
	return o.copyObject(), nil
}

// ArrayValues returns the elements of an array as native values.
func ArrayValues[T Scalar](v Value) ([]T, error) {
	var zero T
	t := scalarType(any(zero))
	if v.typ != t || !v.array {
		return nil, cimerr.New(cimerr.TypeMismatch, "value of type %s is no %s array", v.TypeString(), t)
	}
	if v.null {
		return nil, nil
	}
	data := v.data.([]any)
	r := make([]T, len(data))
	for i, e := range data {
		r[i] = e.(T)
	}
	return r, nil
}

// AsInt64 returns an integer value as int64.
func (v Value) AsInt64() (int64, error) {
	if !v.typ.IsInteger() || v.array || v.null {
		return 0, cimerr.New(cimerr.TypeMismatch, "value of type %s is no integer", v.TypeString())
	}
	if v.typ == TypeUint64 {
		u := v.data.(uint64)
		if u > math.MaxInt64 {
			return 0, cimerr.New(cimerr.OutOfRange, "%d exceeds sint64", u)
		}
		return int64(u), nil
	}
	return reflect.ValueOf(v.data).Convert(reflect.TypeOf(int64(0))).Int(), nil
}

// AsUint64 returns a non-negative integer value as uint64.
func (v Value) AsUint64() (uint64, error) {
	if !v.typ.IsInteger() || v.array || v.null {
		return 0, cimerr.New(cimerr.TypeMismatch, "value of type %s is no integer", v.TypeString())
	}
	if v.typ.IsSigned() {
		i := reflect.ValueOf(v.data).Int()
		if i < 0 {
			return 0, cimerr.New(cimerr.OutOfRange, "negative value %d", i)
		}
		return uint64(i), nil
	}
	return reflect.ValueOf(v.data).Uint(), nil
}

// TypeString describes the type including the array marker.
func (v Value) TypeString() string {
	if v.array {
		return v.typ.String() + "[]"
	}
	return v.typ.String()
}

// Equal compares type-exact. Values of different types are never equal.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ || v.array != o.array || v.null != o.null {
		return false
	}
	if v.null || !v.typ.IsValid() {
		return true
	}
	if !v.array {
		return scalarEqual(v.data, o.data)
	}
	a, b := v.data.([]any), o.data.([]any)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !scalarEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func scalarEqual(a, b any) bool {
	switch x := a.(type) {
	case DateTime:
		return x.Equal(b.(DateTime))
	case ObjectPath:
		return x.Equal(b.(ObjectPath))
	case EmbeddedObject:
		return reflect.DeepEqual(x, b)
	}
	return a == b
}

func (v Value) String() string {
	if !v.typ.IsValid() {
		return "<invalid>"
	}
	if v.null {
		return "NULL"
	}
	if !v.array {
		return formatScalar(v.data)
	}
	var elems []string
	for _, e := range v.data.([]any) {
		elems = append(elems, formatScalar(e))
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

func formatScalar(d any) string {
	switch x := d.(type) {
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case Char16:
		return x.String()
	case string:
		return x
	case DateTime:
		return x.String()
	case ObjectPath:
		return x.String()
	case EmbeddedObject:
		switch x.(type) {
		case *Class:
			return fmt.Sprintf("class %s", x.GetClassName())
		default:
			return fmt.Sprintf("instance of %s", x.GetClassName())
		}
	}
	return fmt.Sprintf("%d", d)
}

// ParseValue parses the textual form of a scalar value.
func ParseValue(t Type, s string) (Value, error) {
	switch {
	case t == TypeBoolean:
		switch {
		case strings.EqualFold(s, "true"):
			return NewBoolean(true), nil
		case strings.EqualFold(s, "false"):
			return NewBoolean(false), nil
		}
		return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid boolean %q", s)
	case t.IsInteger():
		return parseInteger(t, s)
	case t == TypeReal32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid real32 %q", s)
		}
		return NewReal32(float32(f)), nil
	case t == TypeReal64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid real64 %q", s)
		}
		return NewReal64(f), nil
	case t == TypeChar16:
		r := []rune(s)
		if len(r) != 1 || r[0] > 0xffff {
			return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid char16 %q", s)
		}
		return NewChar16(Char16(r[0])), nil
	case t == TypeString:
		return NewString(s), nil
	case t == TypeDateTime:
		dt, err := ParseDateTime(s)
		if err != nil {
			return Value{}, err
		}
		return NewDateTime(dt), nil
	case t == TypeReference:
		p, err := ParseObjectPath(s)
		if err != nil {
			return Value{}, err
		}
		return NewReference(p), nil
	}
	return Value{}, cimerr.New(cimerr.NotSupported, "no textual form for type %s", t)
}

func parseInteger(t Type, s string) (Value, error) {
	base := 10
	digits := s
	neg := false
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	if neg {
		digits = "-" + digits
	}
	if t.IsSigned() {
		i, err := strconv.ParseInt(digits, base, t.bits())
		if err != nil {
			return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid %s %q", t, s)
		}
		switch t {
		case TypeSint8:
			return NewSint8(int8(i)), nil
		case TypeSint16:
			return NewSint16(int16(i)), nil
		case TypeSint32:
			return NewSint32(int32(i)), nil
		}
		return NewSint64(i), nil
	}
	if neg {
		return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid %s %q", t, s)
	}
	u, err := strconv.ParseUint(digits, base, t.bits())
	if err != nil {
		return Value{}, cimerr.New(cimerr.InvalidParameter, "invalid %s %q", t, s)
	}
	switch t {
	case TypeUint8:
		return NewUint8(uint8(u)), nil
	case TypeUint16:
		return NewUint16(uint16(u)), nil
	case TypeUint32:
		return NewUint32(uint32(u)), nil
	}
	return NewUint64(u), nil
}
