package app_test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/mandelsoft/cimrepository/pkg/cim"
	"github.com/mandelsoft/cimrepository/pkg/ctxutil"
	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/impl/database/filesystem"
	"github.com/mandelsoft/cimrepository/pkg/repository"
	"github.com/mandelsoft/cimrepository/pkg/repository/service"
	"github.com/mandelsoft/cimrepository/pkg/server"
	svc "github.com/mandelsoft/cimrepository/pkg/service"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	"github.com/mandelsoft/cimrepository/cmds/cimctl/app"
)

const manifests = `
items:
  - kind: namespace
    spec:
      name: root
      shareable: true
      updatesAllowed: true
  - kind: qualifier
    namespace: root
    spec:
      name: Key
      value:
        type: boolean
        value: false
      scope: Property|Reference
      flavor: DisableOverride|ToSubclass
  - kind: class
    namespace: root
    spec:
      name: Person
      properties:
        - name: Name
          value:
            type: string
          qualifiers:
            - name: Key
              value:
                type: boolean
                value: true
        - name: Age
          value:
            type: uint32
  - kind: instance
    namespace: root
    spec:
      className: Person
      properties:
        - name: Name
          value:
            type: string
            value: Bob
        - name: Age
          value:
            type: uint32
            value: 5
`

var _ = Describe("client command", func() {
	var ctx context.Context
	var srv *server.Server
	var done svc.Syncher
	var repo *repository.Repository
	var fs vfs.FileSystem
	var address string

	var buf *bytes.Buffer

	execute := func(args ...string) error {
		var cmd *cobra.Command = app.New(fs)
		buf = bytes.NewBuffer(nil)
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(append([]string{"-s", address}, args...))
		return cmd.ExecuteContext(ctx)
	}

	BeforeEach(func() {
		ctx = ctxutil.TimeoutContext(context.Background(), 20*time.Second)
		fs = Must(NewMemoryFileSystem())
		MustBeSuccessful(vfs.WriteFile(fs, "/manifests.yaml", []byte(manifests), 0o600))
		repo = Must(repository.Open(filesystem.NewSpecification[database.Object]("/db", fs)))

		srv = server.NewServer(0, false, time.Second)
		service.New(repo, "/cim").RegisterHandler(srv)
		ready, d, err := srv.Start(ctx)
		MustBeSuccessful(err)
		MustBeSuccessful(ready.Wait())
		done = d
		address = fmt.Sprintf("localhost:%d", srv.Address().(*net.TCPAddr).Port)
	})

	AfterEach(func() {
		ctxutil.Cancel(ctx)
		MustBeSuccessful(done.Wait())
		MustBeSuccessful(repo.Close())
	})

	It("applies manifests", func() {
		MustBeSuccessful(execute("apply", "-f", "/manifests.yaml"))
		Expect("\n" + buf.String()).To(Equal(`
namespace root: created
qualifier root/Key: applied
class root/Person: created
instance root:Person.Name="Bob": created
`))
		Expect(repo.GetInstance("root", cim.MustParseObjectPath(`Person.Name="Bob"`))).NotTo(BeNil())

		MustBeSuccessful(execute("apply", "-f", "/manifests.yaml"))
		Expect("\n" + buf.String()).To(Equal(`
namespace root: updated
qualifier root/Key: applied
class root/Person: updated
instance of Person in root: updated
`))
	})

	Context("with content", func() {
		BeforeEach(func() {
			MustBeSuccessful(execute("apply", "-f", "/manifests.yaml"))
		})

		It("gets namespaces", func() {
			MustBeSuccessful(execute("get", "ns"))
			Expect("\n" + buf.String()).To(Equal(`
NAME PARENT SHAREABLE UPDATES
root        true      true
`))
		})

		It("gets classes", func() {
			MustBeSuccessful(execute("-n", "root", "get", "classes"))
			Expect("\n" + buf.String()).To(Equal(`
NAME   SUPERCLASS PROPERTIES METHODS
Person            2          0
`))
		})

		It("gets instances as yaml", func() {
			MustBeSuccessful(execute("-n", "root", "get", "instance", `Person.Name="Bob"`, "-o", "yaml", "-p", "Age"))
			Expect(buf.String()).To(MatchYAML(`
className: Person
path: root:Person.Name="Bob"
properties:
  - name: Age
    classOrigin: Person
    value:
      type: uint32
      value: 5
`))
		})

		It("requires a class to list instances", func() {
			Expect(execute("-n", "root", "get", "instances")).To(MatchError(ContainSubstring("class required")))
			MustBeSuccessful(execute("-n", "root", "get", "instances", "-c", "Person"))
			Expect("\n" + buf.String()).To(Equal(`
PATH
root:Person.Name="Bob"
`))
		})

		It("deletes elements", func() {
			Expect(execute("-n", "root", "delete", "class", "Person")).To(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("has instances"))
			MustBeSuccessful(execute("-n", "root", "delete", "instance", `Person.Name="Bob"`))
			MustBeSuccessful(execute("-n", "root", "delete", "class", "Person"))
			Expect(repo.EnumerateClassNames("root", "", true)).To(BeEmpty())
		})

		It("deletes manifests", func() {
			Expect(execute("delete", "-f", "/manifests.yaml")).To(MatchError("delete failed for some manifests"))
			out := buf.String()
			Expect(out).To(ContainSubstring(`delete failed for manifest 1 in "/manifests.yaml": namespace not empty`))
			Expect(out).To(ContainSubstring("Key: deleted\n"))
			Expect(out).To(ContainSubstring(`delete failed for manifest 3 in "/manifests.yaml": class has instances`))
			Expect(out).To(ContainSubstring(`Person.Name="Bob": deleted`))
			Expect(repo.EnumerateInstanceNames("root", "Person", true)).To(BeEmpty())
		})

		It("queries associations", func() {
			MustBeSuccessful(repo.CreateClass("root", cim.NewClass("Link", "").
				AddQualifier(cim.NewQualifier(cim.QUALIFIER_ASSOCIATION, cim.NewBoolean(true))).
				AddProperty(cim.NewReferenceProperty("A", "Person", cim.NewQualifier(cim.QUALIFIER_KEY, cim.NewBoolean(true))),
					cim.NewReferenceProperty("B", "Person", cim.NewQualifier(cim.QUALIFIER_KEY, cim.NewBoolean(true))))))
			alice := Must(repo.CreateInstance("root", cim.NewInstance("Person").SetProperty("Name", cim.NewString("Alice"))))
			bob := cim.MustParseObjectPath(`Person.Name="Bob"`)
			Must(repo.CreateInstance("root", cim.NewInstance("Link").SetProperty("A", cim.NewReference(bob)).SetProperty("B", cim.NewReference(alice))))

			MustBeSuccessful(execute("-n", "root", "associators", `Person.Name="Bob"`, "-N"))
			Expect("\n" + buf.String()).To(Equal(`
TYPE OBJECT
path root:Person.Name="Alice"
`))
			MustBeSuccessful(execute("-n", "root", "references", `Person.Name="Alice"`, "-R", "B"))
			Expect(buf.String()).To(ContainSubstring("instance root:Link.A="))
		})
	})
})
