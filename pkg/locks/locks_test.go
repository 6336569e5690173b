package locks_test

import (
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	me "github.com/mandelsoft/cimrepository/pkg/locks"
)

var _ = Describe("element locks", func() {
	var locks *me.ElementLocks

	BeforeEach(func() {
		locks = me.NewElementLocks()
	})

	It("shares read locks", func() {
		u1 := locks.RLock("A", "B")
		u2 := locks.RLock("B")
		Expect(locks.Size()).To(Equal(2))
		u2()
		u1()
		Expect(locks.Size()).To(Equal(0))
	})

	It("blocks readers while writing", func() {
		unlock := locks.Lock("A")

		var done atomic.Bool
		go func() {
			defer GinkgoRecover()
			u := locks.RLock("A", "B")
			done.Store(true)
			u()
		}()

		Consistently(done.Load, 100*time.Millisecond).Should(BeFalse())
		unlock()
		Eventually(done.Load, time.Second).Should(BeTrue())
		Eventually(locks.Size, time.Second).Should(Equal(0))
	})

	It("merges requests for the same element", func() {
		unlock := locks.Acquire(me.R("A"), me.W("A"), me.R("B"))

		var done atomic.Bool
		go func() {
			defer GinkgoRecover()
			u := locks.RLock("A")
			done.Store(true)
			u()
		}()
		Consistently(done.Load, 100*time.Millisecond).Should(BeFalse())
		unlock()
		Eventually(done.Load, time.Second).Should(BeTrue())
	})

	It("avoids deadlocks for crossing requests", func() {
		var count atomic.Int32
		for i := 0; i < 20; i++ {
			keys := []string{"A", "B"}
			if i%2 == 1 {
				keys = []string{"B", "A"}
			}
			go func() {
				defer GinkgoRecover()
				u := locks.Lock(keys...)
				time.Sleep(time.Millisecond)
				u()
				count.Add(1)
			}()
		}
		Eventually(count.Load, 5*time.Second).Should(Equal(int32(20)))
	})
})
