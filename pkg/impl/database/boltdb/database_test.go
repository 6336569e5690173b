package boltdb_test

import (
	"os"
	"path/filepath"

	"github.com/go-test/deep"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/runtime"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/impl/database/boltdb"
)

type Record struct {
	database.ObjectMeta `json:",inline"`

	Value string `json:"value,omitempty"`
}

func NewRecord(typ, ns, name, v string) *Record {
	return &Record{ObjectMeta: database.NewObjectMeta(typ, ns, name), Value: v}
}

var _ = Describe("bolt database", func() {
	var scheme database.Scheme[database.Object]
	var db database.Database[database.Object]
	var dir string

	BeforeEach(func() {
		scheme = database.NewScheme[database.Object]()
		runtime.MustRegister[Record, *Record, database.Object](scheme, "class")
		runtime.MustRegister[Record, *Record, database.Object](scheme, "instance")

		dir = Must(os.MkdirTemp("", "boltdb-"))
		db = Must(me.NewSpecification[database.Object](filepath.Join(dir, "cim.db")).Create(scheme))

		MustBeSuccessful(db.SetObject(NewRecord("class", "root", "a", "A")))
		MustBeSuccessful(db.SetObject(NewRecord("class", "root", "b", "B")))
		MustBeSuccessful(db.SetObject(NewRecord("class", "root/sub", "c", "C")))
		MustBeSuccessful(db.SetObject(NewRecord("instance", "root", "x", "X")))
	})

	AfterEach(func() {
		MustBeSuccessful(db.Close())
		os.RemoveAll(dir)
	})

	It("gets objects", func() {
		o := Must(db.GetObject(database.NewObjectId("class", "root", "a")))
		Expect(deep.Equal(o, NewRecord("class", "root", "a", "A"))).To(BeNil())

		_, err := db.GetObject(database.NewObjectId("class", "root", "x"))
		Expect(err).To(MatchError(database.ErrNotExist))
	})

	It("lists namespaces", func() {
		Expect(Must(db.ListObjects("class", "root"))).To(ConsistOf(
			NewRecord("class", "root", "a", "A"),
			NewRecord("class", "root", "b", "B"),
		))
		Expect(Must(db.ListObjectIds("class", "root/sub"))).To(ConsistOf(
			database.NewObjectId("class", "root/sub", "c"),
		))
		Expect(Must(db.ListObjects("class", ""))).To(HaveLen(3))
		Expect(Must(db.ListObjects("instance", ""))).To(HaveLen(1))
		Expect(Must(db.ListObjects("qualifier", ""))).To(BeEmpty())
	})

	It("overwrites and deletes objects", func() {
		MustBeSuccessful(db.SetObject(NewRecord("class", "root", "a", "modified")))
		o := Must(db.GetObject(database.NewObjectId("class", "root", "a")))
		Expect(o.(*Record).Value).To(Equal("modified"))

		MustBeSuccessful(db.DeleteObject(o))
		Expect(db.DeleteObject(o)).To(MatchError(database.ErrNotExist))
		Expect(Must(db.ListObjects("class", "root"))).To(HaveLen(1))
	})

	It("persists objects", func() {
		MustBeSuccessful(db.Close())
		db = Must(me.NewSpecification[database.Object](filepath.Join(dir, "cim.db")).Create(scheme))
		Expect(Must(db.ListObjectIds("class", ""))).To(HaveLen(3))
	})

	It("rejects invalid ids", func() {
		Expect(db.SetObject(NewRecord("class", "", "a", ""))).To(HaveOccurred())
	})
})
