package repository_test

import (
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/impl/database/filesystem"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/repository"
)

var (
	shared = me.NamespaceAttributes{Shareable: true, UpdatesAllowed: true}
	key    = cim.NewQualifier(cim.QUALIFIER_KEY, cim.NewBoolean(true))
	assoc  = cim.NewQualifier(cim.QUALIFIER_ASSOCIATION, cim.NewBoolean(true))
)

func openRepository(fs vfs.FileSystem) *me.Repository {
	return Must(me.Open(filesystem.NewSpecification[database.Object]("/cim", fs)))
}

// newRepository provides a repository with a shareable namespace
// root holding the standard qualifiers.
func newRepository() (*me.Repository, vfs.FileSystem) {
	fs := Must(NewMemoryFileSystem())
	r := openRepository(fs)
	MustBeSuccessful(r.CreateNameSpace("root", shared))
	MustBeSuccessful(r.InstallStandardQualifiers("root"))
	return r, fs
}

func personClass() *cim.Class {
	return cim.NewClass("Person", "").AddProperty(
		cim.NewProperty("Name", cim.NewNull(cim.TypeString, false), key),
		cim.NewProperty("Age", cim.NewNull(cim.TypeUint32, false)),
	)
}

func person(name string, age uint32) *cim.Instance {
	return cim.NewInstance("Person").
		SetProperty("Name", cim.NewString(name)).
		SetProperty("Age", cim.NewUint32(age))
}

func friendsClass() *cim.Class {
	return cim.NewClass("Friends", "").
		AddQualifier(assoc).
		AddProperty(
			cim.NewReferenceProperty("Left", "Person", key),
			cim.NewReferenceProperty("Right", "Person", key),
		)
}

func friends(left, right cim.ObjectPath) *cim.Instance {
	return cim.NewInstance("Friends").
		SetProperty("Left", cim.NewReference(left)).
		SetProperty("Right", cim.NewReference(right))
}
