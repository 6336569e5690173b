package cim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"

	me "github.com/mandelsoft/cimrepository/pkg/cim"
)

var _ = Describe("object paths", func() {
	Context("parsing", func() {
		It("parses all elements", func() {
			p, err := me.ParseObjectPath(`//myhost:5988/root/cimv2:Person.Name="Bob",Age=12,Active=TRUE`)
			Expect(err).To(Succeed())
			Expect(p.Host()).To(Equal("myhost:5988"))
			Expect(p.Namespace()).To(Equal("root/cimv2"))
			Expect(p.ClassName()).To(Equal("Person"))
			Expect(p.KeyBindings()).To(Equal([]me.KeyBinding{
				{"Name", me.KeyString, "Bob"},
				{"Age", me.KeyNumeric, "12"},
				{"Active", me.KeyBoolean, "TRUE"},
			}))
		})

		It("parses class paths", func() {
			p, err := me.ParseObjectPath("root:Person")
			Expect(err).To(Succeed())
			Expect(p.IsClassPath()).To(BeTrue())
			Expect(p.Namespace()).To(Equal("root"))
			Expect(p.String()).To(Equal("root:Person"))
		})

		It("unescapes strings and detects references", func() {
			p, err := me.ParseObjectPath(`Link.Text="say \"hi\" \\o/",Target="Person.Name=\"Bob\""`)
			Expect(err).To(Succeed())
			text, _ := p.KeyBinding("text")
			Expect(text.Value).To(Equal(`say "hi" \o/`))
			Expect(text.Type).To(Equal(me.KeyString))
			target, _ := p.KeyBinding("TARGET")
			Expect(target.Type).To(Equal(me.KeyReference))
			ref, err := target.Reference()
			Expect(err).To(Succeed())
			Expect(ref.String()).To(Equal(`Person.Name="Bob"`))
		})

		It("rejects malformed paths", func() {
			for _, s := range []string{
				``,
				`Person.`,
				`Person.Name`,
				`Person.Name="Bob`,
				`Person.Name=Bob`,
				`Person.Name="a",Name="b"`,
				`Person.Name="a",`,
				`1Person.Name="a"`,
				`Person.Name="a\x"`,
				`//host`,
			} {
				_, err := me.ParseObjectPath(s)
				Expect(cimerr.KindOf(err)).To(Equal(cimerr.InvalidParameter), s)
			}
		})
	})

	Context("canonical form", func() {
		It("round-trips", func() {
			for _, s := range []string{
				`Person.Name="Bob"`,
				`Person.Age=-12,Name="Bob"`,
				`root/A:Person.Name="Bob"`,
				`//host/root/A:Link.Source="Person.Name=\"Bob\"",Target="Person.Name=\"Alice\""`,
				`Person.Flag=FALSE,Id=18446744073709551615`,
			} {
				p, err := me.ParseObjectPath(s)
				Expect(err).To(Succeed())
				Expect(p.String()).To(Equal(s))
				q, err := me.ParseObjectPath(p.String())
				Expect(err).To(Succeed())
				Expect(q.Equal(p)).To(BeTrue())
			}
		})

		It("sorts key bindings case-insensitively", func() {
			p := me.MustParseObjectPath(`Person.name="Bob",Age=3`)
			Expect(p.String()).To(Equal(`Person.Age=3,name="Bob"`))
		})
	})

	Context("equality", func() {
		It("ignores case of names and order of keys", func() {
			a := me.MustParseObjectPath(`Person.Name="Bob",Age=12`)
			b := me.MustParseObjectPath(`person.age=12,NAME="Bob"`)
			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.Key()).To(Equal(b.Key()))
			Expect(a.Equal(me.MustParseObjectPath(`Person.Name="bob",Age=12`))).To(BeFalse())
		})

		It("compares numeric keys as integers", func() {
			a := me.MustParseObjectPath(`Disk.Id=0x10`)
			b := me.MustParseObjectPath(`Disk.Id=16`)
			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.Key()).To(Equal(b.Key()))
		})

		It("compares host and namespace only if both are given", func() {
			a := me.MustParseObjectPath(`//h1/root:Person.Name="Bob"`)
			Expect(a.Equal(me.MustParseObjectPath(`Person.Name="Bob"`))).To(BeTrue())
			Expect(a.Equal(me.MustParseObjectPath(`//h2/root:Person.Name="Bob"`))).To(BeFalse())
			Expect(a.Equal(me.MustParseObjectPath(`other:Person.Name="Bob"`))).To(BeFalse())
			Expect(a.Normalize("root").String()).To(Equal(`Person.Name="Bob"`))
			Expect(a.Normalize("other").String()).To(Equal(`root:Person.Name="Bob"`))
		})

		It("compares reference keys as paths", func() {
			a := me.MustParseObjectPath(`Link.Target="Person.Name=\"Bob\",Age=1"`)
			b := me.MustParseObjectPath(`Link.Target="person.age=1,name=\"Bob\""`)
			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.Key()).To(Equal(b.Key()))
		})
	})

	Context("building", func() {
		var class *me.Class

		BeforeEach(func() {
			class = me.NewClass("Person", "").AddProperty(
				me.NewProperty("Name", me.NewNull(me.TypeString, false), me.NewQualifier(me.QUALIFIER_KEY, me.NewBoolean(true))),
				me.NewProperty("Age", me.NewNull(me.TypeUint32, false)),
			)
		})

		It("builds paths from key values", func() {
			inst := me.NewInstance("Person").
				SetProperty("Name", me.NewString("Bob")).
				SetProperty("Age", me.NewUint32(5))
			p, err := inst.BuildPath(class)
			Expect(err).To(Succeed())
			Expect(p.String()).To(Equal(`Person.Name="Bob"`))

			other := me.NewInstance("Person").
				SetProperty("Name", me.NewString("Bob")).
				SetProperty("Age", me.NewUint32(7))
			q, err := other.BuildPath(class)
			Expect(err).To(Succeed())
			Expect(q.Equal(p)).To(BeTrue())
			Expect(q.WithNamespace("root/A").Equal(p.WithHost("h"))).To(BeTrue())
		})

		It("requires key values", func() {
			inst := me.NewInstance("Person").SetProperty("Age", me.NewUint32(5))
			_, err := inst.BuildPath(class)
			Expect(cimerr.KindOf(err)).To(Equal(cimerr.InvalidParameter))

			inst.SetProperty("Name", me.NewNull(me.TypeString, false))
			_, err = inst.BuildPath(class)
			Expect(cimerr.KindOf(err)).To(Equal(cimerr.InvalidParameter))
		})
	})
})
