package cim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

type KeyType int

const (
	KeyString KeyType = iota
	KeyBoolean
	KeyNumeric
	KeyReference
)

func (k KeyType) String() string {
	switch k {
	case KeyBoolean:
		return "boolean"
	case KeyNumeric:
		return "numeric"
	case KeyReference:
		return "reference"
	}
	return "string"
}

// KeyBinding binds a key property to its value in textual form.
type KeyBinding struct {
	Name  string
	Type  KeyType
	Value string
}

// NewKeyBinding creates a binding for a typed key value.
func NewKeyBinding(name string, v Value) (KeyBinding, error) {
	if v.IsNull() || v.IsArray() || !v.IsValid() {
		return KeyBinding{}, cimerr.New(cimerr.InvalidParameter, "key %q requires a non-null scalar value", name)
	}
	switch t := v.Type(); {
	case t == TypeBoolean:
		return KeyBinding{name, KeyBoolean, v.String()}, nil
	case t.IsNumeric():
		return KeyBinding{name, KeyNumeric, v.String()}, nil
	case t == TypeString, t == TypeChar16, t == TypeDateTime:
		return KeyBinding{name, KeyString, v.String()}, nil
	case t == TypeReference:
		return KeyBinding{name, KeyReference, v.String()}, nil
	}
	return KeyBinding{}, cimerr.New(cimerr.InvalidParameter, "key %q: type %s cannot be used as key", name, v.Type())
}

// Reference returns the path of a reference binding.
func (k KeyBinding) Reference() (ObjectPath, error) {
	if k.Type != KeyReference {
		return ObjectPath{}, cimerr.New(cimerr.TypeMismatch, "key %q is no reference", k.Name)
	}
	return ParseObjectPath(k.Value)
}

// Equal compares name case-insensitively and the values according to
// their kind.
func (k KeyBinding) Equal(o KeyBinding) bool {
	return strings.EqualFold(k.Name, o.Name) && k.valueEqual(o)
}

func (k KeyBinding) valueEqual(o KeyBinding) bool {
	if k.Type != o.Type {
		return false
	}
	switch k.Type {
	case KeyBoolean:
		return strings.EqualFold(k.Value, o.Value)
	case KeyNumeric:
		if a, err := parseKeyUint(k.Value); err == nil {
			b, err := parseKeyUint(o.Value)
			return err == nil && a == b
		}
		if a, err := parseKeyInt(k.Value); err == nil {
			b, err := parseKeyInt(o.Value)
			return err == nil && a == b
		}
	case KeyReference:
		a, err := ParseObjectPath(k.Value)
		if err != nil {
			break
		}
		b, err := ParseObjectPath(o.Value)
		return err == nil && a.Equal(b)
	}
	return k.Value == o.Value
}

func (k KeyBinding) canonicalValue() string {
	switch k.Type {
	case KeyBoolean:
		return strings.ToUpper(k.Value)
	case KeyNumeric:
		if u, err := parseKeyUint(k.Value); err == nil {
			return strconv.FormatUint(u, 10)
		}
		if i, err := parseKeyInt(k.Value); err == nil {
			return strconv.FormatInt(i, 10)
		}
	case KeyReference:
		if p, err := ParseObjectPath(k.Value); err == nil {
			return quote(p.Key())
		}
		return quote(k.Value)
	case KeyString:
		return quote(k.Value)
	}
	return k.Value
}

func (k KeyBinding) String() string {
	switch k.Type {
	case KeyString, KeyReference:
		return k.Name + "=" + quote(k.Value)
	case KeyBoolean:
		return k.Name + "=" + strings.ToUpper(k.Value)
	}
	return k.Name + "=" + k.Value
}

////////////////////////////////////////////////////////////////////////////////

// ObjectPath identifies a class or an instance by optional host,
// optional namespace, class name and key bindings.
type ObjectPath struct {
	host      string
	namespace string
	className string
	keys      []KeyBinding
}

func NewClassPath(className string) ObjectPath {
	return ObjectPath{className: className}
}

func NewObjectPath(host, namespace, className string, keys ...KeyBinding) ObjectPath {
	return ObjectPath{
		host:      host,
		namespace: namespace,
		className: className,
		keys:      append([]KeyBinding(nil), keys...),
	}
}

func MustParseObjectPath(s string) ObjectPath {
	p, err := ParseObjectPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p ObjectPath) Host() string {
	return p.host
}

func (p ObjectPath) Namespace() string {
	return p.namespace
}

func (p ObjectPath) ClassName() string {
	return p.className
}

// IsZero reports an empty path.
func (p ObjectPath) IsZero() bool {
	return p.className == "" && p.host == "" && p.namespace == "" && len(p.keys) == 0
}

// IsClassPath reports a path without key bindings.
func (p ObjectPath) IsClassPath() bool {
	return len(p.keys) == 0
}

func (p ObjectPath) KeyBindings() []KeyBinding {
	return append([]KeyBinding(nil), p.keys...)
}

func (p ObjectPath) KeyBinding(name string) (KeyBinding, bool) {
	for _, k := range p.keys {
		if strings.EqualFold(k.Name, name) {
			return k, true
		}
	}
	return KeyBinding{}, false
}

func (p ObjectPath) WithHost(host string) ObjectPath {
	p.host = host
	p.keys = p.KeyBindings()
	return p
}

func (p ObjectPath) WithNamespace(ns string) ObjectPath {
	p.namespace = ns
	p.keys = p.KeyBindings()
	return p
}

func (p ObjectPath) WithClassName(name string) ObjectPath {
	p.className = name
	p.keys = p.KeyBindings()
	return p
}

func (p ObjectPath) WithKeyBindings(keys ...KeyBinding) ObjectPath {
	p.keys = append([]KeyBinding(nil), keys...)
	return p
}

// Retype adjusts the kinds of quoted key bindings to the declared
// types of the key properties of the class. A parsed string value
// looking like an object path is taken as reference otherwise.
func (p ObjectPath) Retype(class *Class) ObjectPath {
	p.keys = p.KeyBindings()
	for i, k := range p.keys {
		if k.Type != KeyString && k.Type != KeyReference {
			continue
		}
		prop, ok := class.Properties.Get(k.Name)
		if !ok {
			continue
		}
		switch prop.Type() {
		case TypeReference:
			p.keys[i].Type = KeyReference
		case TypeString, TypeChar16, TypeDateTime:
			p.keys[i].Type = KeyString
		}
	}
	return p
}

// Normalize strips the host and the namespace if it equals
// the given local namespace.
func (p ObjectPath) Normalize(ns string) ObjectPath {
	p.host = ""
	if strings.EqualFold(p.namespace, ns) {
		p.namespace = ""
	}
	p.keys = p.KeyBindings()
	return p
}

// Equal compares class name and key bindings case-insensitively,
// host and namespace only if given on both sides.
func (p ObjectPath) Equal(o ObjectPath) bool {
	if !strings.EqualFold(p.className, o.className) {
		return false
	}
	if p.host != "" && o.host != "" && !strings.EqualFold(p.host, o.host) {
		return false
	}
	if p.namespace != "" && o.namespace != "" && !strings.EqualFold(p.namespace, o.namespace) {
		return false
	}
	if len(p.keys) != len(o.keys) {
		return false
	}
	for _, k := range p.keys {
		ok, found := o.KeyBinding(k.Name)
		if !found || !k.valueEqual(ok) {
			return false
		}
	}
	return true
}

// Key returns a canonical string without host and namespace
// usable as map key. Equal paths without differing host or
// namespace have equal keys.
func (p ObjectPath) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(p.className))
	keys := sortedKeys(p.keys)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('.')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(strings.ToLower(k.Name))
		b.WriteByte('=')
		b.WriteString(k.canonicalValue())
	}
	return b.String()
}

// String returns the canonical string form with key bindings
// sorted by name.
func (p ObjectPath) String() string {
	var b strings.Builder
	if p.host != "" {
		b.WriteString("//")
		b.WriteString(p.host)
		b.WriteByte('/')
	}
	if p.namespace != "" {
		b.WriteString(p.namespace)
		b.WriteByte(':')
	}
	b.WriteString(p.className)
	for i, k := range sortedKeys(p.keys) {
		if i == 0 {
			b.WriteByte('.')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(k.String())
	}
	return b.String()
}

func (p ObjectPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *ObjectPath) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*p = ObjectPath{}
		return nil
	}
	v, err := ParseObjectPath(string(data))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func sortedKeys(keys []KeyBinding) []KeyBinding {
	r := append([]KeyBinding(nil), keys...)
	sort.SliceStable(r, func(i, j int) bool {
		return strings.ToLower(r[i].Name) < strings.ToLower(r[j].Name)
	})
	return r
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('"')
	return b.String()
}

////////////////////////////////////////////////////////////////////////////////

// ParseObjectPath parses [//host/][namespace:]ClassName[.key=value{,key=value}].
func ParseObjectPath(s string) (ObjectPath, error) {
	var p ObjectPath

	rest := s
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		i := strings.IndexByte(rest, '/')
		if i <= 0 {
			return p, invalidPath(s, "missing host")
		}
		p.host = rest[:i]
		rest = rest[i+1:]
	}

	end := strings.IndexAny(rest, ".\"=")
	if end < 0 {
		end = len(rest)
	}
	if i := strings.IndexByte(rest[:end], ':'); i >= 0 {
		p.namespace = rest[:i]
		if !IsLegalNamespaceName(p.namespace) {
			return ObjectPath{}, invalidPath(s, "illegal namespace")
		}
		rest = rest[i+1:]
	}

	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		p.className = rest
		rest = ""
	} else {
		p.className = rest[:dot]
		rest = rest[dot+1:]
		if rest == "" {
			return ObjectPath{}, invalidPath(s, "missing key bindings")
		}
	}
	if !IsLegalName(p.className) {
		return ObjectPath{}, invalidPath(s, "illegal class name")
	}
	if rest == "=@" {
		return p, nil
	}

	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return ObjectPath{}, invalidPath(s, "missing '='")
		}
		name := rest[:eq]
		if !IsLegalName(name) {
			return ObjectPath{}, invalidPath(s, "illegal key name")
		}
		if _, dup := p.KeyBinding(name); dup {
			return ObjectPath{}, invalidPath(s, "duplicate key "+name)
		}
		rest = rest[eq+1:]

		var kb KeyBinding
		var err error
		kb, rest, err = parseKeyValue(name, rest)
		if err != nil {
			return ObjectPath{}, invalidPath(s, err.Error())
		}
		p.keys = append(p.keys, kb)
		if rest != "" {
			if rest[0] != ',' || len(rest) == 1 {
				return ObjectPath{}, invalidPath(s, "garbage after key value")
			}
			rest = rest[1:]
		}
	}
	return p, nil
}

func parseKeyValue(name, rest string) (KeyBinding, string, error) {
	if strings.HasPrefix(rest, "\"") {
		var b strings.Builder
		i := 1
		for ; i < len(rest); i++ {
			c := rest[i]
			if c == '\\' {
				i++
				if i >= len(rest) || rest[i] != '"' && rest[i] != '\\' {
					return KeyBinding{}, "", cimerr.New(cimerr.InvalidParameter, "invalid escape in value of key %s", name)
				}
				b.WriteByte(rest[i])
				continue
			}
			if c == '"' {
				break
			}
			b.WriteByte(c)
		}
		if i >= len(rest) {
			return KeyBinding{}, "", cimerr.New(cimerr.InvalidParameter, "unterminated value of key %s", name)
		}
		value := b.String()
		kind := KeyString
		if ref, err := ParseObjectPath(value); err == nil && len(ref.keys) > 0 {
			kind = KeyReference
		}
		return KeyBinding{name, kind, value}, rest[i+1:], nil
	}

	end := strings.IndexByte(rest, ',')
	if end < 0 {
		end = len(rest)
	}
	value := rest[:end]
	switch {
	case strings.EqualFold(value, "true"), strings.EqualFold(value, "false"):
		return KeyBinding{name, KeyBoolean, strings.ToUpper(value)}, rest[end:], nil
	case isNumericKey(value):
		return KeyBinding{name, KeyNumeric, value}, rest[end:], nil
	}
	return KeyBinding{}, "", cimerr.New(cimerr.InvalidParameter, "invalid value %q of key %s", value, name)
}

func parseKeyUint(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseKeyInt(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	u, err := parseKeyUint(strings.TrimPrefix(s, "-"))
	if err != nil || u > 1<<63 || !neg && u == 1<<63 {
		return strconv.ParseInt(s, 10, 64)
	}
	if neg {
		return -int64(u), nil
	}
	return int64(u), nil
}

func isNumericKey(s string) bool {
	if _, err := parseKeyInt(s); err == nil {
		return true
	}
	if _, err := parseKeyUint(s); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil && s != "" && !strings.ContainsAny(s, "xXnN")
}

func invalidPath(s, msg string) error {
	return cimerr.New(cimerr.InvalidParameter, "invalid object path %q: %s", s, msg)
}
