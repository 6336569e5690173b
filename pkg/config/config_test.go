package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/cimrepository/pkg/database"
	"github.com/mandelsoft/cimrepository/pkg/impl/database/boltdb"
	"github.com/mandelsoft/cimrepository/pkg/impl/database/filesystem"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/config"
)

var _ = Describe("config", func() {
	var fs vfs.FileSystem

	BeforeEach(func() {
		fs = Must(NewMemoryFileSystem("/etc"))
		MustBeSuccessful(vfs.WriteFile(fs, "/etc/base.yaml", []byte(`
server:
  port: 9090
  shutdownTimeout: 5s
database:
  path: ${CIMTEST_DB:-/var/cim}
logging:
  realms:
    cim/repository: debug
namespaces:
- name: root
  shareable: true
  updatesAllowed: true
  standardQualifiers: true
`), 0o600))
		MustBeSuccessful(vfs.WriteFile(fs, "/etc/local.yaml", []byte(`
database:
  type: boltdb
logging:
  level: warn
  realms:
    cim/service: trace
namespaces:
- name: root/A
  parent: root
`), 0o600))
	})

	It("merges configuration files", func() {
		cfg := Must(me.GetConfig(fs, "/etc/base.yaml", "/etc/missing.yaml", "/etc/local.yaml"))
		Expect(*cfg.Server.Port).To(Equal(9090))
		Expect(*cfg.Server.Prefix).To(Equal("/cim"))
		Expect(time.Duration(*cfg.Server.ShutdownTimeout)).To(Equal(5 * time.Second))
		Expect(*cfg.Database.Type).To(Equal(me.DB_BOLT))
		Expect(*cfg.Database.Path).To(Equal("/var/cim"))
		Expect(*cfg.Logging.Level).To(Equal("warn"))
		Expect(cfg.Logging.Realms).To(Equal(map[string]string{"cim/repository": "debug", "cim/service": "trace"}))
		Expect(cfg.Namespaces).To(HaveLen(2))
		Expect(cfg.Namespaces[0].Shareable).To(BeTrue())
		Expect(cfg.Namespaces[0].StandardQualifiers).To(BeTrue())
		Expect(cfg.Namespaces[1].Parent).To(Equal("root"))

		spec := Must(cfg.DatabaseSpecification())
		Expect(spec).To(BeAssignableToTypeOf(&boltdb.Specification[database.Object]{}))
	})

	It("substitutes environment variables", func() {
		os.Setenv("CIMTEST_DB", "/data")
		defer os.Unsetenv("CIMTEST_DB")
		cfg := Must(me.ReadConfig("/etc/base.yaml", fs))
		Expect(*cfg.Database.Path).To(Equal("/data"))
	})

	It("provides the default store", func() {
		cfg := me.Default()
		spec := Must(cfg.DatabaseSpecification(fs))
		Expect(spec).To(BeAssignableToTypeOf(&filesystem.Specification[database.Object]{}))
	})

	It("rejects unknown fields and store types", func() {
		_, err := me.Parse([]byte("unknown: x\n"))
		Expect(err).To(HaveOccurred())
		cfg := me.Default()
		cfg.Database.Type = nil
		*cfg.Database.Path = ""
		Expect(cfg.DatabaseSpecification()).Error().To(HaveOccurred())
		cfg = me.Default()
		t := "other"
		cfg.Database.Type = &t
		Expect(cfg.DatabaseSpecification()).Error().To(MatchError(`unknown database type "other"`))
	})
})
