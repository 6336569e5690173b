package service_test

import (
	"context"
	"fmt"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/mandelsoft/cimrepository/pkg/testutils"

	me "github.com/mandelsoft/cimrepository/pkg/service"
)

type testService struct {
	started atomic.Bool
	err     error
}

func (s *testService) Start(ctx context.Context) (me.Syncher, me.Syncher, error) {
	ready := me.SyncTrigger()
	done := me.SyncTrigger()
	go func() {
		s.started.Store(true)
		ready.Trigger()
		<-ctx.Done()
		done.SetError(s.err)
		done.Trigger()
	}()
	return ready, done, nil
}

var _ = Describe("services", func() {
	It("starts and stops services", func() {
		a := &testService{}
		b := &testService{}
		s := me.New(context.Background())
		MustBeSuccessful(s.Add(a))
		Expect(a.started.Load()).To(BeFalse())

		MustBeSuccessful(s.Start())
		Expect(a.started.Load()).To(BeTrue())

		MustBeSuccessful(s.Add(b))
		Expect(b.started.Load()).To(BeTrue())

		s.Stop()
		MustBeSuccessful(s.Wait())
	})

	It("reports errors", func() {
		s := me.New(context.Background())
		MustBeSuccessful(s.Add(&testService{err: fmt.Errorf("broken")}))
		MustBeSuccessful(s.Start())
		s.Stop()
		Expect(s.Wait()).To(MatchError("broken"))
	})

	It("triggers once", func() {
		t := me.SyncTrigger()
		t.SetError(fmt.Errorf("failed"))
		t.Trigger()
		t.Trigger()
		Expect(t.Wait()).To(MatchError("failed"))
	})
})
