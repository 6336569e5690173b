package namespace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/namespace"
)

var _ = Describe("namespace manager", func() {
	var m *me.Manager

	shared := me.Attributes{Shareable: true, UpdatesAllowed: true}

	BeforeEach(func() {
		m = me.New()
		MustBeSuccessful(m.Create("root", shared))
	})

	It("creates namespaces", func() {
		MustBeSuccessful(m.Create("root/A", me.Attributes{Parent: "ROOT", UpdatesAllowed: true}))
		Expect(m.Names()).To(Equal([]string{"root", "root/A"}))
		Expect(m.Exists("Root/a")).To(BeTrue())

		ns := Must(m.Get("root/a"))
		Expect(ns.Name).To(Equal("root/A"))
		Expect(ns.Parent).To(Equal("root"))
		Expect(m.Children("root")).To(Equal([]string{"root/A"}))
	})

	It("rejects duplicates and illegal names", func() {
		Expect(m.Create("ROOT", shared)).To(MatchError(cimerr.AlreadyExists))
		Expect(m.Create("root//x", shared)).To(MatchError(cimerr.InvalidParameter))
		Expect(m.Create("", shared)).To(MatchError(cimerr.InvalidParameter))
	})

	It("requires a shareable parent", func() {
		err := m.Create("child", me.Attributes{Parent: "missing"})
		Expect(err).To(MatchError(cimerr.NotFound))
		Expect(cimerr.IsNotFound(err, cimerr.OBJ_NAMESPACE)).To(BeTrue())

		MustBeSuccessful(m.Create("private", me.Attributes{}))
		Expect(m.Create("child", me.Attributes{Parent: "private"})).To(MatchError(cimerr.NotSupported))
	})

	It("refuses to delete namespaces with children", func() {
		MustBeSuccessful(m.Create("root/A", me.Attributes{Parent: "root"}))
		Expect(m.Children("root")).NotTo(BeEmpty())
		Expect(m.Delete("root")).To(MatchError(cimerr.NamespaceNotEmpty))

		MustBeSuccessful(m.Delete("root/A"))
		Expect(m.Children("root")).To(BeEmpty())
		MustBeSuccessful(m.Delete("root"))
		Expect(m.Names()).To(BeEmpty())
		Expect(m.Delete("root")).To(MatchError(cimerr.NotFound))
	})

	It("refuses to clear shareable while children exist", func() {
		MustBeSuccessful(m.Create("root/A", me.Attributes{Parent: "root"}))
		Expect(m.Modify("root", false, true)).To(MatchError(cimerr.NotSupported))
		MustBeSuccessful(m.Modify("root", true, false))
		Expect(m.CheckUpdatesAllowed("root")).To(MatchError(cimerr.NotSupported))

		MustBeSuccessful(m.Delete("root/A"))
		MustBeSuccessful(m.Modify("root", false, true))
		Expect(Must(m.Get("root")).Shareable).To(BeFalse())
		MustBeSuccessful(m.CheckUpdatesAllowed("root"))
	})

	It("provides the schema chain", func() {
		MustBeSuccessful(m.Create("root/A", me.Attributes{Parent: "root", Shareable: true}))
		MustBeSuccessful(m.Create("root/A/B", me.Attributes{Parent: "root/A"}))
		MustBeSuccessful(m.Create("other", me.Attributes{}))

		Expect(m.SchemaChain("root/a/b")).To(Equal([]string{"root/A/B", "root/A", "root"}))
		Expect(m.SchemaChain("other")).To(Equal([]string{"other"}))
		_, err := m.SchemaChain("missing")
		Expect(err).To(MatchError(cimerr.NotFound))
	})
})
