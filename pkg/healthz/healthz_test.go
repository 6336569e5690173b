package healthz_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	me "github.com/mandelsoft/cimrepository/pkg/healthz"
)

var _ = Describe("health checks", func() {
	It("detects outdated checks", func() {
		me.Start("test", 10*time.Millisecond)
		defer me.End("test")
		Expect(me.IsHealthy()).To(BeTrue())
		Eventually(me.IsHealthy).Should(BeFalse())
		me.Tick("test")
		Expect(me.IsHealthy()).To(BeTrue())

		w := httptest.NewRecorder()
		me.Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(HavePrefix("test: "))
	})

	It("monitors probes", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var failing atomic.Bool
		me.Monitor(ctx, "probe", 10*time.Millisecond, func() error {
			if failing.Load() {
				return fmt.Errorf("down")
			}
			return nil
		})
		Consistently(me.IsHealthy, 100*time.Millisecond).Should(BeTrue())
		failing.Store(true)
		Eventually(me.IsHealthy).Should(BeFalse())
		cancel()
		Eventually(me.IsHealthy).Should(BeTrue())
	})
})
