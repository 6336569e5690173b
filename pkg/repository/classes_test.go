package repository_test

import (
	"github.com/go-test/deep"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/cimerr"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/repository"
)

var _ = Describe("classes", func() {
	var r *me.Repository

	description := func(s string) cim.Qualifier {
		return cim.NewQualifier(cim.QUALIFIER_DESCRIPTION, cim.NewString(s))
	}

	BeforeEach(func() {
		r, _ = newRepository()
	})

	AfterEach(func() {
		MustBeSuccessful(r.Close())
	})

	It("propagates and overrides qualifiers", func() {
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("A", "").AddQualifier(description("base"))))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("B", "A")))

		b := Must(r.GetClass("root", "b"))
		q, ok := b.Qualifiers.Get(cim.QUALIFIER_DESCRIPTION)
		Expect(ok).To(BeTrue())
		Expect(q.Value.GetString()).To(Equal("base"))
		Expect(q.Propagated).To(BeTrue())

		MustBeSuccessful(r.DeleteClass("root", "B"))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("B", "A").AddQualifier(description("derived"))))
		b = Must(r.GetClass("root", "B"))
		q, _ = b.Qualifiers.Get(cim.QUALIFIER_DESCRIPTION)
		Expect(q.Value.GetString()).To(Equal("derived"))
		Expect(q.Propagated).To(BeFalse())
	})

	It("rejects illegal overrides", func() {
		MustBeSuccessful(r.SetQualifierDecl("root", cim.NewQualifierDecl("Fixed", cim.NewString(""), cim.ScopeClass, cim.FlavorToSubclass|cim.FlavorDisableOverride)))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("A", "").AddQualifier(cim.NewQualifier("Fixed", cim.NewString("a")))))
		Expect(r.CreateClass("root", cim.NewClass("B", "A").AddQualifier(cim.NewQualifier("Fixed", cim.NewString("b"))))).
			To(MatchError(cimerr.InvalidClass))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("B", "A").AddQualifier(cim.NewQualifier("Fixed", cim.NewString("a")))))
	})

	It("requires a known superclass and unique names", func() {
		Expect(r.CreateClass("root", cim.NewClass("B", "A"))).To(MatchError(cimerr.InvalidClass))
		MustBeSuccessful(r.CreateClass("root", personClass()))
		Expect(r.CreateClass("root", personClass().AddProperty(cim.NewProperty("x", cim.NewString(""))))).
			To(MatchError(cimerr.AlreadyExists))
		Expect(r.GetClass("root", "none")).Error().To(MatchError(cimerr.NotFound))
		_, err := r.GetClass("root", "none")
		Expect(cimerr.IsNotFound(err, cimerr.OBJ_CLASS)).To(BeTrue())
	})

	It("enumerates subclasses", func() {
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("A", "")))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("C", "A")))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("B", "A")))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("D", "B")))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("X", "")))

		Expect(Must(r.EnumerateClassNames("root", "", false))).To(Equal([]string{"A", "X"}))
		Expect(Must(r.EnumerateClassNames("root", "a", false))).To(Equal([]string{"B", "C"}))
		Expect(Must(r.EnumerateClassNames("root", "A", true))).To(ConsistOf("B", "C", "D"))
		Expect(Must(r.EnumerateClassNames("root", "", true))).To(ConsistOf("A", "B", "C", "D", "X"))
		Expect(r.EnumerateClassNames("root", "none", true)).Error().To(MatchError(cimerr.NotFound))

		Expect(Must(r.GetSuperClassNames("root", "d"))).To(Equal([]string{"B", "A"}))
		Expect(Must(r.GetSuperClassNames("root", "A"))).To(BeEmpty())

		classes := Must(r.EnumerateClasses("root", "B", true))
		Expect(classes).To(HaveLen(1))
		Expect(classes[0].Name).To(Equal("D"))
	})

	It("refuses to modify or delete classes with subclasses", func() {
		MustBeSuccessful(r.CreateClass("root", personClass()))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("Employee", "Person")))

		Expect(r.ModifyClass("root", personClass())).To(MatchError(cimerr.ClassHasChildren))
		Expect(r.DeleteClass("root", "Person")).To(MatchError(cimerr.ClassHasChildren))
		Expect(r.ModifyClass("root", cim.NewClass("Employee", ""))).To(MatchError(cimerr.InvalidClass))
		Expect(r.ModifyClass("root", cim.NewClass("None", ""))).To(MatchError(cimerr.NotFound))

		MustBeSuccessful(r.ModifyClass("root", cim.NewClass("Employee", "Person").AddProperty(cim.NewProperty("Salary", cim.NewNull(cim.TypeUint32, false)))))
		e := Must(r.GetClass("root", "Employee"))
		Expect(e.Properties.Names()).To(Equal([]string{"Name", "Age", "Salary"}))

		MustBeSuccessful(r.DeleteClass("root", "Employee"))
		MustBeSuccessful(r.DeleteClass("root", "Person"))
		Expect(r.DeleteClass("root", "Person")).To(MatchError(cimerr.NotFound))
	})

	It("refuses to delete classes with instances", func() {
		MustBeSuccessful(r.CreateClass("root", personClass()))
		p := Must(r.CreateInstance("root", person("Bob", 5)))
		Expect(r.DeleteClass("root", "Person")).To(MatchError(cimerr.ClassHasInstances))
		MustBeSuccessful(r.DeleteInstance("root", p))
		MustBeSuccessful(r.DeleteClass("root", "Person"))
	})

	It("restricts modifications of classes with instances", func() {
		MustBeSuccessful(r.CreateClass("root", personClass()))
		p := Must(r.CreateInstance("root", person("Bob", 5)))

		retyped := personClass()
		retyped.Properties[1] = cim.NewProperty("Age", cim.NewNull(cim.TypeString, false))
		Expect(r.ModifyClass("root", retyped)).To(MatchError(cimerr.ClassHasInstances))

		rekeyed := personClass()
		rekeyed.Properties[1].Qualifiers = append(rekeyed.Properties[1].Qualifiers, key)
		Expect(r.ModifyClass("root", rekeyed)).To(MatchError(cimerr.ClassHasInstances))

		extended := personClass().AddProperty(cim.NewProperty("Height", cim.NewNull(cim.TypeUint32, false)))
		Expect(r.ModifyClass("root", extended)).To(MatchError(cimerr.ClassHasInstances))

		association := personClass().AddQualifier(assoc)
		Expect(r.ModifyClass("root", association)).To(MatchError(cimerr.ClassHasInstances))

		Expect(Must(r.GetClass("root", "Person")).Properties.Names()).To(Equal([]string{"Name", "Age"}))
		age, _ := Must(r.GetClass("root", "Person")).Properties.Get("Age")
		Expect(age.Type()).To(Equal(cim.TypeUint32))

		MustBeSuccessful(r.ModifyClass("root", personClass().AddQualifier(description("a person"))))
		_, ok := Must(r.GetClass("root", "Person")).Qualifiers.Get(cim.QUALIFIER_DESCRIPTION)
		Expect(ok).To(BeTrue())

		MustBeSuccessful(r.DeleteInstance("root", p))
		MustBeSuccessful(r.ModifyClass("root", retyped))
		age, _ = Must(r.GetClass("root", "Person")).Properties.Get("Age")
		Expect(age.Type()).To(Equal(cim.TypeString))
	})

	It("filters returned classes", func() {
		MustBeSuccessful(r.CreateClass("root", personClass().AddQualifier(description("a person"))))
		MustBeSuccessful(r.CreateClass("root", cim.NewClass("Employee", "Person").AddProperty(cim.NewProperty("Salary", cim.NewNull(cim.TypeUint32, false)))))

		full := Must(r.GetClass("root", "Employee"))
		Expect(full.Properties.Names()).To(Equal([]string{"Name", "Age", "Salary"}))
		name, _ := full.Properties.Get("Name")
		Expect(name.ClassOrigin).To(Equal("Person"))
		Expect(name.Propagated).To(BeTrue())

		local := Must(r.GetClass("root", "Employee", me.Options{LocalOnly: true}))
		Expect(local.Properties.Names()).To(Equal([]string{"Salary"}))
		Expect(local.Qualifiers).To(BeEmpty())

		bare := Must(r.GetClass("root", "Employee", me.Options{ExcludeQualifiers: true, ExcludeClassOrigin: true, PropertyList: []string{"name"}}))
		Expect(bare.Qualifiers).To(BeEmpty())
		Expect(bare.Properties).To(HaveLen(1))
		Expect(bare.Properties[0].ClassOrigin).To(BeEmpty())
		Expect(bare.Properties[0].Qualifiers).To(BeEmpty())

		Expect(deep.Equal(Must(r.GetClass("root", "Employee")), full)).To(BeNil())
	})

	Context("shared schema", func() {
		BeforeEach(func() {
			MustBeSuccessful(r.CreateNameSpace("root/A", me.NamespaceAttributes{Parent: "root", UpdatesAllowed: true}))
			MustBeSuccessful(r.CreateClass("root", personClass()))
		})

		It("resolves classes of the schema namespace", func() {
			MustBeSuccessful(r.CreateClass("root/A", cim.NewClass("Employee", "Person")))
			Expect(Must(r.GetClass("root/A", "Person")).Name).To(Equal("Person"))
			Expect(Must(r.EnumerateClassNames("root/A", "Person", false))).To(Equal([]string{"Employee"}))
			Expect(r.GetClass("root", "Employee")).Error().To(MatchError(cimerr.NotFound))

			Expect(r.DeleteClass("root", "Person")).To(MatchError(cimerr.ClassHasChildren))
			Expect(r.DeleteClass("root/A", "Person")).To(MatchError(cimerr.NotFound))
		})

		It("rejects duplicate names across the schema chain", func() {
			Expect(r.CreateClass("root/A", personClass())).To(MatchError(cimerr.AlreadyExists))
			MustBeSuccessful(r.CreateClass("root/A", cim.NewClass("Local", "")))
			Expect(r.CreateClass("root", cim.NewClass("Local", ""))).To(MatchError(cimerr.AlreadyExists))
		})

		It("counts instances of dependent namespaces", func() {
			Must(r.CreateInstance("root/A", person("Bob", 5)))
			Expect(Must(r.EnumerateInstanceNames("root", "Person", true))).To(BeEmpty())
			Expect(r.DeleteClass("root", "Person")).To(MatchError(cimerr.ClassHasInstances))
		})
	})

	Context("qualifier declarations", func() {
		It("manages declarations", func() {
			decl := cim.NewQualifierDecl("Color", cim.NewString("red"), cim.ScopeClass|cim.ScopeProperty, cim.FlavorDefaults)
			MustBeSuccessful(r.SetQualifierDecl("root", decl))
			Expect(Must(r.GetQualifierDecl("root", "COLOR"))).To(Equal(decl))

			MustBeSuccessful(r.CreateNameSpace("root/A", me.NamespaceAttributes{Parent: "root", UpdatesAllowed: true}))
			Expect(Must(r.GetQualifierDecl("root/A", "color")).Name).To(Equal("Color"))
			Expect(r.DeleteQualifierDecl("root/A", "color")).To(MatchError(cimerr.NotFound))

			names := []string{}
			for _, d := range Must(r.EnumerateQualifierDecls("root/A")) {
				names = append(names, d.Name)
			}
			Expect(names).To(ContainElements("Color", cim.QUALIFIER_KEY, cim.QUALIFIER_DESCRIPTION))
			Expect(names).To(HaveLen(len(cim.StandardQualifierDecls()) + 1))

			MustBeSuccessful(r.DeleteQualifierDecl("root", "Color"))
			Expect(r.GetQualifierDecl("root", "Color")).Error().To(MatchError(cimerr.NotFound))
		})

		It("rejects undeclared qualifiers", func() {
			Expect(r.CreateClass("root", cim.NewClass("A", "").AddQualifier(cim.NewQualifier("Unknown", cim.NewString("x"))))).
				To(MatchError(cimerr.InvalidParameter))
		})
	})
})
