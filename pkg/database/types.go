package database

import (
	"errors"
	"fmt"

	"github.com/mandelsoft/cimrepository/pkg/runtime"
)

var ErrNotExist = errors.New("object not found")

// ObjectId identifies a stored object by type, namespace and name.
type ObjectId interface {
	GetType() string
	GetNamespace() string
	GetName() string
}

// Object is a storable record.
type Object interface {
	ObjectId
	runtime.Object
	SetNamespace(string)
	SetName(string)
}

type Scheme[O Object] interface {
	runtime.Scheme[O]
}

func NewScheme[O Object]() Scheme[O] {
	return runtime.NewYAMLScheme[O]()
}

type ObjectMeta struct {
	runtime.ObjectMeta `json:",inline"`
	Namespace          string `json:"namespace"`
	Name               string `json:"name"`
}

var _ ObjectId = (*ObjectMeta)(nil)

func NewObjectMeta(typ, ns, name string) ObjectMeta {
	return ObjectMeta{ObjectMeta: runtime.ObjectMeta{Type: typ}, Namespace: ns, Name: name}
}

func (o *ObjectMeta) GetNamespace() string {
	return o.Namespace
}

func (o *ObjectMeta) GetName() string {
	return o.Name
}

func (o *ObjectMeta) SetNamespace(ns string) {
	o.Namespace = ns
}

func (o *ObjectMeta) SetName(name string) {
	o.Name = name
}

type objectid struct {
	kind      string
	namespace string
	name      string
}

func NewObjectId(typ, ns, name string) ObjectId {
	return &objectid{typ, ns, name}
}

func (o *objectid) GetType() string {
	return o.kind
}

func (o *objectid) GetNamespace() string {
	return o.namespace
}

func (o *objectid) GetName() string {
	return o.name
}

func (o *objectid) String() string {
	return StringId(o)
}

func EqualObjectId(a, b ObjectId) bool {
	return a.GetType() == b.GetType() &&
		a.GetNamespace() == b.GetNamespace() &&
		a.GetName() == b.GetName()
}

func StringId(a ObjectId) string {
	return fmt.Sprintf("%s/%s/%s", a.GetType(), a.GetNamespace(), a.GetName())
}
