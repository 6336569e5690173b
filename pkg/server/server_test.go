package server_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/cimrepository/pkg/ctxutil"
	"github.com/mandelsoft/cimrepository/pkg/service"
	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	_ "github.com/mandelsoft/cimrepository/pkg/healthz"

	me "github.com/mandelsoft/cimrepository/pkg/server"
)

var _ = Describe("server", func() {
	var ctx context.Context
	var srv *me.Server
	var done service.Syncher
	var url string

	BeforeEach(func() {
		ctx = ctxutil.CancelContext(context.Background())
		srv = me.NewServer(0, true, time.Second)
		srv.Handle("/test", http.HandlerFunc(testHandler))
		ready, d, err := srv.Start(ctx)
		MustBeSuccessful(err)
		MustBeSuccessful(ready.Wait())
		done = d
		url = fmt.Sprintf("http://localhost:%d", srv.Address().(*net.TCPAddr).Port)
	})

	AfterEach(func() {
		ctxutil.Cancel(ctx)
		MustBeSuccessful(done.Wait())
	})

	It("serves handlers", func() {
		resp := Must(http.Get(url + "/test"))
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(io.ReadAll(resp.Body)).To(Equal([]byte("test handler\n")))
	})

	It("serves default handlers", func() {
		resp := Must(http.Get(url + "/healthz"))
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})
})

func testHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "test handler\n")
}
