package repository_test

import (
	"github.com/mandelsoft/vfs/pkg/vfs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/repository"
)

var _ = Describe("instances", func() {
	var r *me.Repository
	var fs vfs.FileSystem

	age := func(i *cim.Instance) cim.Value {
		v, ok := i.GetValue("Age")
		Expect(ok).To(BeTrue())
		return v
	}

	BeforeEach(func() {
		r, fs = newRepository()
	})

	AfterEach(func() {
		MustBeSuccessful(r.Close())
	})

	It("runs the instance life cycle in a dependent namespace", func() {
		MustBeSuccessful(r.CreateNameSpace("root/A", me.NamespaceAttributes{Shareable: true, UpdatesAllowed: true, Parent: "root"}))
		MustBeSuccessful(r.CreateClass("root/A", personClass()))

		p := Must(r.CreateInstance("root/A", person("Bob", 5)))
		Expect(p.Normalize("root/A").String()).To(Equal(`Person.Name="Bob"`))
		Expect(p.Namespace()).To(Equal("root/A"))

		mod := person("Bob", 6)
		MustBeSuccessful(r.ModifyInstance("root/A", mod))
		i := Must(r.GetInstance("root/A", p))
		Expect(age(i)).To(Equal(cim.NewUint32(6)))
		Expect(i.Path.String()).To(Equal(`root/A:Person.Name="Bob"`))

		MustBeSuccessful(r.DeleteInstance("root/A", p))
		_, err := r.GetInstance("root/A", p)
		Expect(err).To(MatchError(cimerr.NotFound))
		Expect(cimerr.IsNotFound(err, cimerr.OBJ_INSTANCE)).To(BeTrue())
		Expect(r.DeleteInstance("root/A", p)).To(MatchError(cimerr.NotFound))
	})

	Context("with class", func() {
		BeforeEach(func() {
			MustBeSuccessful(r.CreateClass("root", personClass()))
		})

		It("rejects invalid instances", func() {
			Must(r.CreateInstance("root", person("Bob", 5)))
			Expect(r.CreateInstance("root", person("bob", 7))).Error().NotTo(HaveOccurred())
			Expect(r.CreateInstance("root", person("Bob", 7))).Error().To(MatchError(cimerr.AlreadyExists))

			Expect(r.CreateInstance("root", cim.NewInstance("Person").SetProperty("Age", cim.NewUint32(1)))).Error().
				To(MatchError(cimerr.InvalidParameter))
			Expect(r.CreateInstance("root", person("Alice", 1).SetProperty("Height", cim.NewUint32(1)))).Error().
				To(MatchError(cimerr.InvalidParameter))
			Expect(r.CreateInstance("root", person("Alice", 1).SetProperty("Age", cim.NewString("old")))).Error().
				To(MatchError(cimerr.InvalidParameter))
			Expect(r.CreateInstance("root", cim.NewInstance("None"))).Error().To(MatchError(cimerr.InvalidClass))

			MustBeSuccessful(r.CreateClass("root", cim.NewClass("Keyless", "").AddProperty(cim.NewProperty("Value", cim.NewString("")))))
			Expect(r.CreateInstance("root", cim.NewInstance("Keyless"))).Error().To(MatchError(cimerr.InvalidParameter))

			abstract := personClass()
			abstract.Name = "Abstract"
			MustBeSuccessful(r.CreateClass("root", abstract.AddQualifier(cim.NewQualifier(cim.QUALIFIER_ABSTRACT, cim.NewBoolean(true)))))
			Expect(r.CreateInstance("root", cim.NewInstance("Abstract").SetProperty("Name", cim.NewString("x")))).Error().
				To(MatchError(cimerr.InvalidParameter))
		})

		It("fills defaults and builds paths from keys", func() {
			p := Must(r.CreateInstance("root", cim.NewInstance("person").SetProperty("NAME", cim.NewString("Bob"))))
			Expect(p.String()).To(Equal(`root:Person.Name="Bob"`))

			i := Must(r.GetInstance("root", cim.MustParseObjectPath(`person.name="Bob"`)))
			Expect(i.ClassName).To(Equal("Person"))
			Expect(i.Properties.Names()).To(Equal([]string{"Name", "Age"}))
			Expect(age(i).IsNull()).To(BeTrue())
			a, _ := i.Properties.Get("Age")
			Expect(a.Propagated).To(BeTrue())
		})

		It("modifies selected properties", func() {
			MustBeSuccessful(r.CreateClass("root", cim.NewClass("Employee", "Person").
				AddProperty(cim.NewProperty("Salary", cim.NewUint32(1000)))))
			p := Must(r.CreateInstance("root", cim.NewInstance("Employee").
				SetProperty("Name", cim.NewString("Bob")).
				SetProperty("Age", cim.NewUint32(30)).
				SetProperty("Salary", cim.NewUint32(2000))))

			mod := cim.NewInstance("Employee").SetProperty("Name", cim.NewString("Bob")).SetProperty("Age", cim.NewUint32(31))
			MustBeSuccessful(r.ModifyInstance("root", mod, []string{"Age", "Salary"}))
			i := Must(r.GetInstance("root", p))
			Expect(age(i)).To(Equal(cim.NewUint32(31)))
			salary, _ := i.GetValue("Salary")
			Expect(salary).To(Equal(cim.NewUint32(1000)))

			Expect(r.ModifyInstance("root", mod, []string{"Unknown"})).To(MatchError(cimerr.InvalidParameter))

			other := person("Alice", 1)
			other.ClassName = "Employee"
			other.Path = p
			Expect(r.ModifyInstance("root", other)).To(MatchError(cimerr.InvalidParameter))
			other.Path = cim.ObjectPath{}
			Expect(r.ModifyInstance("root", other)).To(MatchError(cimerr.NotFound))
		})

		It("writes back retrieved instances with defaulted properties", func() {
			p := Must(r.CreateInstance("root", cim.NewInstance("Person").SetProperty("Name", cim.NewString("Bob"))))
			i := Must(r.GetInstance("root", p))
			MustBeSuccessful(r.ModifyInstance("root", i.SetProperty("Age", cim.NewUint32(6))))
			i = Must(r.GetInstance("root", p))
			Expect(age(i)).To(Equal(cim.NewUint32(6)))
			a, _ := i.Properties.Get("Age")
			Expect(a.Propagated).To(BeFalse())

			Must(r.CreateInstance("root", cim.NewInstance("Person").SetProperty("Name", cim.NewString("Alice"))))
			i = Must(r.GetInstance("root", cim.MustParseObjectPath(`Person.Name="Alice"`)))
			a, _ = i.Properties.Get("Age")
			Expect(a.Propagated).To(BeTrue())
			a.Value = cim.NewUint32(7)
			MustBeSuccessful(r.ModifyInstance("root", i, []string{"Age"}))
			Expect(age(Must(r.GetInstance("root", i.Path)))).To(Equal(cim.NewUint32(7)))
		})

		It("keeps string keys looking like paths", func() {
			MustBeSuccessful(r.CreateClass("root", friendsClass()))
			p := Must(r.CreateInstance("root", person("X.y=1", 5)))
			alice := Must(r.CreateInstance("root", person("Alice", 1)))
			Must(r.CreateInstance("root", friends(p, alice)))

			parsed := cim.MustParseObjectPath(p.String())
			Expect(parsed.String()).To(Equal(p.String()))
			Expect(age(Must(r.GetInstance("root", parsed)))).To(Equal(cim.NewUint32(5)))
			Expect(r.GetProperty("root", parsed, "Age")).To(Equal(cim.NewUint32(5)))
			Expect(pathStrings(Must(r.AssociatorNames("root", parsed, me.AssociationFilter{})))).To(Equal([]string{
				`root:Person.Name="Alice"`,
			}))

			MustBeSuccessful(r.Close())
			r = openRepository(fs)
			Expect(age(Must(r.GetInstance("root", parsed)))).To(Equal(cim.NewUint32(5)))
			Expect(pathStrings(Must(r.AssociatorNames("root", alice, me.AssociationFilter{})))).To(Equal([]string{
				`root:Person.Name="X.y=1"`,
			}))
			list := Must(r.EnumerateInstanceNames("root", "Friends", false))
			Expect(list).To(HaveLen(1))
			MustBeSuccessful(r.DeleteInstance("root", cim.MustParseObjectPath(list[0].String())))
			MustBeSuccessful(r.DeleteInstance("root", parsed))
			Expect(r.GetInstance("root", parsed)).Error().To(MatchError(cimerr.NotFound))
		})

		It("gets and sets properties", func() {
			p := Must(r.CreateInstance("root", person("Bob", 5)))
			Expect(r.GetProperty("root", p, "age")).To(Equal(cim.NewUint32(5)))
			MustBeSuccessful(r.SetProperty("root", p, "Age", cim.NewUint32(8)))
			Expect(r.GetProperty("root", p, "Age")).To(Equal(cim.NewUint32(8)))

			Expect(r.SetProperty("root", p, "Name", cim.NewString("Alice"))).To(MatchError(cimerr.InvalidParameter))
			_, err := r.GetProperty("root", p, "Height")
			Expect(cimerr.IsNotFound(err, cimerr.OBJ_PROPERTY)).To(BeTrue())
			Expect(r.SetProperty("root", p, "Height", cim.NewUint32(1))).To(MatchError(cimerr.NotFound))
		})

		It("enumerates instances", func() {
			MustBeSuccessful(r.CreateClass("root", cim.NewClass("Employee", "Person")))
			Must(r.CreateInstance("root", person("Carol", 3)))
			Must(r.CreateInstance("root", person("Alice", 1)))
			e := person("Bob", 2)
			e.ClassName = "Employee"
			Must(r.CreateInstance("root", e))

			names := func(list []cim.ObjectPath) []string {
				var r []string
				for _, p := range list {
					r = append(r, p.String())
				}
				return r
			}
			Expect(names(Must(r.EnumerateInstanceNames("root", "Person", false)))).To(Equal([]string{
				`root:Person.Name="Alice"`,
				`root:Person.Name="Carol"`,
			}))
			Expect(names(Must(r.EnumerateInstanceNames("root", "Person", true)))).To(ConsistOf(
				`root:Employee.Name="Bob"`,
				`root:Person.Name="Alice"`,
				`root:Person.Name="Carol"`,
			))
			Expect(r.EnumerateInstanceNames("root", "None", true)).Error().To(MatchError(cimerr.NotFound))

			list := Must(r.EnumerateInstances("root", "Employee", true, me.Options{PropertyList: []string{"Name"}}))
			Expect(list).To(HaveLen(1))
			Expect(list[0].Properties.Names()).To(Equal([]string{"Name"}))
			Expect(list[0].Path.String()).To(Equal(`root:Employee.Name="Bob"`))
		})
	})
})
