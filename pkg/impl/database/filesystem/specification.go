package filesystem

import (
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/utils"
)

type Specification[O database.Object] struct {
	Path       string
	FileSystem vfs.FileSystem
}

var _ database.Specification[database.Object] = (*Specification[database.Object])(nil)

func NewSpecification[O database.Object](path string, fss ...vfs.FileSystem) *Specification[O] {
	return &Specification[O]{
		Path:       path,
		FileSystem: utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...),
	}
}

func (s *Specification[O]) Create(scheme database.Scheme[O]) (database.Database[O], error) {
	return New[O](scheme, s.Path, s.FileSystem)
}
