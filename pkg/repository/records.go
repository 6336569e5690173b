package repository

import (
	"strings"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
	"github.com/mandelsoft/cimrepository/pkg/runtime"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

const (
	TYPE_NAMESPACE = "namespace"
	TYPE_QUALIFIER = "qualifier"
	TYPE_CLASS     = "class"
	TYPE_INSTANCE  = "instance"
)

// the attributes of a namespace are stored in the namespace itself.
const namespaceRecord = "attributes"

type NamespaceRecord struct {
	database.ObjectMeta `json:",inline"`
	Spec                namespace.Namespace `json:"spec"`
}

type QualifierRecord struct {
	database.ObjectMeta `json:",inline"`
	Spec                *cim.QualifierDecl `json:"spec"`
}

type ClassRecord struct {
	database.ObjectMeta `json:",inline"`
	Spec                *cim.Class `json:"spec"`
}

type InstanceRecord struct {
	database.ObjectMeta `json:",inline"`
	Spec                *cim.Instance `json:"spec"`
}

// NewScheme provides the scheme for the records stored
// by a repository.
func NewScheme() database.Scheme[database.Object] {
	s := database.NewScheme[database.Object]()
	runtime.MustRegister[NamespaceRecord, *NamespaceRecord, database.Object](s, TYPE_NAMESPACE)
	runtime.MustRegister[QualifierRecord, *QualifierRecord, database.Object](s, TYPE_QUALIFIER)
	runtime.MustRegister[ClassRecord, *ClassRecord, database.Object](s, TYPE_CLASS)
	runtime.MustRegister[InstanceRecord, *InstanceRecord, database.Object](s, TYPE_INSTANCE)
	return s
}

func newNamespaceRecord(ns *namespace.Namespace) *NamespaceRecord {
	return &NamespaceRecord{
		ObjectMeta: database.NewObjectMeta(TYPE_NAMESPACE, namespace.Key(ns.Name), namespaceRecord),
		Spec:       *ns,
	}
}

func namespaceId(ns string) database.ObjectId {
	return database.NewObjectId(TYPE_NAMESPACE, namespace.Key(ns), namespaceRecord)
}

func newQualifierRecord(ns string, d *cim.QualifierDecl) *QualifierRecord {
	return &QualifierRecord{
		ObjectMeta: database.NewObjectMeta(TYPE_QUALIFIER, namespace.Key(ns), key(d.Name)),
		Spec:       d,
	}
}

func qualifierId(ns, name string) database.ObjectId {
	return database.NewObjectId(TYPE_QUALIFIER, namespace.Key(ns), key(name))
}

func newClassRecord(ns string, c *cim.Class) *ClassRecord {
	return &ClassRecord{
		ObjectMeta: database.NewObjectMeta(TYPE_CLASS, namespace.Key(ns), key(c.Name)),
		Spec:       c,
	}
}

func classId(ns, name string) database.ObjectId {
	return database.NewObjectId(TYPE_CLASS, namespace.Key(ns), key(name))
}

func newInstanceRecord(ns string, i *cim.Instance) *InstanceRecord {
	return &InstanceRecord{
		ObjectMeta: database.NewObjectMeta(TYPE_INSTANCE, namespace.Key(ns), instanceName(i.Path)),
		Spec:       i,
	}
}

func instanceId(ns string, p cim.ObjectPath) database.ObjectId {
	return database.NewObjectId(TYPE_INSTANCE, namespace.Key(ns), instanceName(p))
}

// instanceName maps an instance path to a name usable by
// all store implementations.
func instanceName(p cim.ObjectPath) string {
	return utils.HashData(p.Key())
}

func key(name string) string {
	return strings.ToLower(name)
}
