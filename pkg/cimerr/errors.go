package cimerr

import (
	"errors"
	"fmt"
)

// Kind is the error kind of a repository failure.
// Kinds can be used as targets for errors.Is.
type Kind int

const (
	Failed Kind = iota
	NotFound
	AlreadyExists
	InvalidParameter
	InvalidClass
	NamespaceNotEmpty
	NotSupported
	OutOfRange
	TypeMismatch
	ClassHasChildren
	ClassHasInstances
)

var kindNames = map[Kind]string{
	Failed:            "failed",
	NotFound:          "not found",
	AlreadyExists:     "already exists",
	InvalidParameter:  "invalid parameter",
	InvalidClass:      "invalid class",
	NamespaceNotEmpty: "namespace not empty",
	NotSupported:      "not supported",
	OutOfRange:        "out of range",
	TypeMismatch:      "type mismatch",
	ClassHasChildren:  "class has children",
	ClassHasInstances: "class has instances",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string {
	return k.String()
}

// Object tags the kind of element a NotFound or AlreadyExists error refers to.
type Object string

const (
	OBJ_CLASS     Object = "class"
	OBJ_INSTANCE  Object = "instance"
	OBJ_NAMESPACE Object = "namespace"
	OBJ_QUALIFIER Object = "qualifier"
	OBJ_PROPERTY  Object = "property"
)

type Error struct {
	kind   Kind
	object Object
	msg    string
	cause  error
}

var _ error = (*Error)(nil)

func New(k Kind, msg string, args ...any) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{kind: k, msg: msg}
}

func NewForObject(k Kind, obj Object, name string) error {
	return &Error{kind: k, object: obj, msg: fmt.Sprintf("%s %q", obj, name)}
}

func ErrNotFound(obj Object, name string) error {
	return NewForObject(NotFound, obj, name)
}

func ErrAlreadyExists(obj Object, name string) error {
	return NewForObject(AlreadyExists, obj, name)
}

func (e *Error) Error() string {
	msg := e.kind.String()
	if e.msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.msg)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Object() Object {
	return e.object
}

func (e *Error) Message() string {
	return e.msg
}

func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.kind == t
	case *Error:
		return e.kind == t.kind && (t.object == "" || e.object == t.object)
	}
	return false
}

// KindOf returns the kind of a repository error.
// Foreign errors are reported as Failed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Failed
}

// ObjectOf returns the object tag of a repository error, if any.
func ObjectOf(err error) Object {
	var e *Error
	if errors.As(err, &e) {
		return e.object
	}
	return ""
}

// IsNotFound checks for a NotFound error, optionally restricted to
// the given object kinds.
func IsNotFound(err error, objs ...Object) bool {
	return is(err, NotFound, objs...)
}

func IsAlreadyExists(err error, objs ...Object) bool {
	return is(err, AlreadyExists, objs...)
}

func is(err error, k Kind, objs ...Object) bool {
	var e *Error
	if !errors.As(err, &e) || e.kind != k {
		return false
	}
	if len(objs) == 0 {
		return true
	}
	for _, o := range objs {
		if e.object == o {
			return true
		}
	}
	return false
}

// Wrap prefixes the message of a repository error and keeps its kind.
// Foreign errors are wrapped as Failed.
func Wrap(err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	var e *Error
	if errors.As(err, &e) {
		if e.msg != "" {
			msg = fmt.Sprintf("%s: %s", msg, e.msg)
		}
		return &Error{kind: e.kind, object: e.object, msg: msg, cause: e.cause}
	}
	return &Error{kind: Failed, msg: msg, cause: err}
}
