package service

import (
	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/namespace"
	"github.com/mandelsoft/cimrepository/pkg/repository"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

const (
	KIND_NAMESPACES  = "namespaces"
	KIND_QUALIFIERS  = "qualifiers"
	KIND_CLASSES     = "classes"
	KIND_INSTANCES   = "instances"
	KIND_ASSOCIATORS = "associators"
	KIND_REFERENCES  = "references"
	KIND_STATUS      = "status"
	KIND_WATCH       = "watch"
)

const (
	HEADER_REQUEST_ID = "X-Request-Id"
	HEADER_ETAG       = "ETag"
	HEADER_LOCATION   = "Location"
)

type Error struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestId string `json:"requestId,omitempty"`
}

type Items[E any] struct {
	Items []E `json:"items"`
}

type NamespaceRequest struct {
	Name string `json:"name"`
	namespace.Attributes
}

// AssociationRequest is the body of associator and reference queries.
// For reference queries ResultClass selects the association classes
// and ResultRole and AssocClass are ignored.
type AssociationRequest struct {
	Source cim.ObjectPath `json:"source"`
	repository.AssociationFilter
	Names   bool               `json:"names,omitempty"`
	Options repository.Options `json:"options"`
}

// Result is an element of an association query result.
type Result struct {
	Path     *cim.ObjectPath `json:"path,omitempty"`
	Class    *cim.Class      `json:"class,omitempty"`
	Instance *cim.Instance   `json:"instance,omitempty"`
}

type Status struct {
	Started    utils.Timestamp `json:"started"`
	Host       string          `json:"host,omitempty"`
	Namespaces []string        `json:"namespaces"`
}
