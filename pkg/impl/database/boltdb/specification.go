package boltdb

import (
	"github.com/mandelsoft/cimrepository/pkg/database"
)

type Specification[O database.Object] struct {
	Path     string
	Bucket   string
	NoSync   bool
	ReadOnly bool
}

var _ database.Specification[database.Object] = (*Specification[database.Object])(nil)

func NewSpecification[O database.Object](path string) *Specification[O] {
	return &Specification[O]{Path: path}
}

func (s *Specification[O]) Create(scheme database.Scheme[O]) (database.Database[O], error) {
	return New[O](scheme, s)
}
